package models

import "encoding/json"

// AuthUser represents one entry from the auth provider's user registry,
// normalized to a flat shape before it is written to auth_users.json.
type AuthUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	ConfirmedAt string         `json:"email_confirmed_at,omitempty"` // Empty when the address was never verified
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	Metadata    map[string]any `json:"provider_metadata,omitempty"` // Provider-specific blob, carried verbatim
}

// Profile represents a row from the profiles table, one-to-one with an AuthUser.
type Profile struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SourceClient represents a row from the clients table.
//
// Every business field is optional upstream; the transform substitutes
// documented defaults rather than failing on a null.
type SourceClient struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Tier          string   `json:"tier"`
	Status        string   `json:"status"`
	CompanyName   string   `json:"company_name"`
	LoyaltyPoints *float64 `json:"loyalty_points"`
	ContactEmail  string   `json:"contact_email"`
	ContactPhone  string   `json:"contact_phone"`
	CreatedAt     string   `json:"created_at,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

// SourceTrip represents a row from the trips table.
//
// Destinations and Travelers may arrive either as structured arrays or as
// JSON-encoded strings, so they stay raw until normalization.
type SourceTrip struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Status       string          `json:"status"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Destinations json.RawMessage `json:"destinations,omitempty"`
	Travelers    json.RawMessage `json:"travelers,omitempty"`
	Budget       *float64        `json:"budget"`
	Currency     string          `json:"currency"`
	ClientID     string          `json:"client_id"`
	OrganizerID  string          `json:"organizer_id"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    string          `json:"created_at,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
}

// SourcePreference represents a row from the preferences table.
type SourcePreference struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Language      string          `json:"language"`
	Theme         string          `json:"theme"`
	Notifications json.RawMessage `json:"notifications,omitempty"` // String or object, see NormalizeNotifications
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

// TripDocument represents a row from the trip_documents table, one of the
// two source shapes unified into Media.
type TripDocument struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at,omitempty"`
}

// StorageObject describes one blob-storage object captured during export,
// the other source shape unified into Media.
type StorageObject struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	PublicURL   string `json:"public_url"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}
