package models

// Media provenance tags.
const (
	MediaSourceStorage      = "storage"
	MediaSourceTripDocument = "trip_document"
)

// User is the destination-shaped identity record: an auth registry entry
// merged with its profile row. A missing profile yields defaulted fields,
// never a missing user.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"` // Derived from presence of a confirmation timestamp
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role"`
	Avatar        string `json:"avatar,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Client is the destination-shaped business-relationship record.
type Client struct {
	ID            string  `json:"id"`
	User          string  `json:"user"` // Reference to a User id
	Tier          string  `json:"tier"`
	Status        string  `json:"status"`
	CompanyName   string  `json:"companyName,omitempty"`
	LoyaltyPoints float64 `json:"loyaltyPoints"`
	ContactEmail  string  `json:"contactEmail,omitempty"`
	ContactPhone  string  `json:"contactPhone,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// Preference is the destination-shaped per-user settings record.
type Preference struct {
	ID            string         `json:"id"`
	User          string         `json:"user"`
	Language      string         `json:"language"`
	Theme         string         `json:"theme"`
	Notifications map[string]any `json:"notifications"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

// Media is the unified destination shape for blob-storage objects and
// trip-attached documents, disambiguated by Source.
type Media struct {
	ID        string `json:"id"`
	Source    string `json:"source"` // MediaSourceStorage or MediaSourceTripDocument
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Bucket    string `json:"bucket,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Trip      string `json:"trip,omitempty"` // Reference to a Trip id for trip documents
	CreatedAt string `json:"createdAt"`
}

// Trip is the destination-shaped trip record. References are plain string
// ids; destinations keep their full structure.
type Trip struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Status       string           `json:"status"`
	StartDate    string           `json:"startDate"`
	EndDate      string           `json:"endDate"`
	Destinations []map[string]any `json:"destinations"`
	Travelers    []string         `json:"travelers"`
	Budget       float64          `json:"budget"`
	Currency     string           `json:"currency,omitempty"`
	Client       string           `json:"client,omitempty"`
	Organizer    string           `json:"organizer,omitempty"`
	CreatedBy    string           `json:"createdBy,omitempty"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
}
