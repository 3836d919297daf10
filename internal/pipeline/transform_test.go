package pipeline

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/wayfarerlabs/portage/internal/models"
	"github.com/wayfarerlabs/portage/internal/shared"
	th "github.com/wayfarerlabs/portage/internal/testing"
)

// writeExportFixture lays down a full export snapshot in dir.
func writeExportFixture(t *testing.T, dir string) {
	t.Helper()

	authUsers := []models.AuthUser{
		{ID: "user-1", Email: "ann@example.com", ConfirmedAt: "2024-01-01T00:00:00Z", CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-02T00:00:00Z"},
		{ID: "user-2", Email: "ben@example.com", CreatedAt: "2024-02-01T00:00:00Z"},
		{ID: "user-3", Email: "cho@example.com", ConfirmedAt: "2024-03-01T00:00:00Z", CreatedAt: "2024-03-01T00:00:00Z"},
	}
	profiles := []models.Profile{
		{ID: "prof-1", UserID: "user-1", FirstName: "Ann", LastName: "Ames", Role: "agent", AvatarURL: "https://cdn/ann.jpg"},
		{ID: "prof-2", UserID: "user-2", FirstName: "Ben", LastName: "Burns", Role: "admin"},
	}
	clients := []map[string]any{
		{"id": "client-1", "user_id": "user-1", "tier": "gold", "status": "active", "loyalty_points": 120.0},
		{"id": "client-2", "user_id": "user-2", "tier": nil, "status": nil, "loyalty_points": nil},
	}
	preferences := []map[string]any{
		{"id": "pref-1", "user_id": "user-1", "language": "en", "notifications": map[string]any{"email": true}},
		{"id": "pref-2", "user_id": "user-2", "language": "fr", "notifications": `{"sms":true}`},
	}
	trips := []map[string]any{
		{
			"id": "trip-1", "title": "Alps", "status": "planned",
			"start_date": "2024-06-01", "end_date": "2024-06-10",
			"destinations": `[{"city":"Zermatt"}]`,
			"travelers":    []any{"user-1", map[string]any{"id": "user-2"}},
			"budget":       5000.0, "currency": "EUR",
			"client_id": "client-1", "created_by": "user-1",
			"created_at": "2024-05-01T00:00:00Z",
		},
		{
			"id": "trip-2", "title": "Kyoto", "status": "archived",
			"client_id": "client-1", "created_by": "user-2",
		},
	}
	tripDocuments := []models.TripDocument{
		{ID: "doc-123", TripID: "trip-1", Filename: "itinerary.pdf", URL: "https://cdn/itinerary.pdf", CreatedAt: "2024-05-02T00:00:00Z"},
	}
	storageObjects := []models.StorageObject{
		{Bucket: "avatars", Name: "user-1/photo.jpg", Size: 1024, ContentType: "image/jpeg", PublicURL: "https://storage.googleapis.com/avatars/user-1/photo.jpg", CreatedAt: "2024-04-01T00:00:00Z"},
	}

	fixtures := map[string]any{
		SourceAuthUsers:     authUsers,
		SourceProfiles:      profiles,
		SourceClients:       clients,
		SourcePreferences:   preferences,
		SourceTrips:         trips,
		SourceTripDocuments: tripDocuments,
		SourceStorageFiles:  storageObjects,
	}
	for name, data := range fixtures {
		if err := shared.WriteJSONFile(filepath.Join(dir, name+".json"), data); err != nil {
			t.Fatalf("Failed to write fixture %s: %v", name, err)
		}
	}
}

func TestTransformerRun(t *testing.T) {
	exportDir := t.TempDir()
	outputDir := t.TempDir()
	writeExportFixture(t, exportDir)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	transformer := NewTransformer(nil)
	summary, err := transformer.Run(nil, TransformOpts{ExportDir: exportDir, OutputDir: outputDir, Now: now})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	t.Run("CountConservation", func(t *testing.T) {
		if len(summary.IntegrityIssues) != 0 {
			t.Errorf("Expected no integrity issues, got %v", summary.IntegrityIssues)
		}
		// 3 users + 2 clients + 2 preferences + 2 media + 2 trips
		if summary.TotalOriginal != 11 || summary.TotalTransformed != 11 {
			t.Errorf("Expected 11 original and transformed, got %d/%d", summary.TotalOriginal, summary.TotalTransformed)
		}
		for _, result := range summary.Results {
			if result.OriginalCount != result.TransformedCount {
				t.Errorf("Collection %s dropped records: %d vs %d", result.Collection, result.OriginalCount, result.TransformedCount)
			}
		}
	})

	t.Run("UsersMergeProfiles", func(t *testing.T) {
		var users []models.User
		if err := shared.ReadJSONFile(filepath.Join(outputDir, "users.json"), &users); err != nil {
			t.Fatalf("Failed to read users: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("Expected 3 users, got %d", len(users))
		}

		byID := make(map[string]models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		ann := byID["user-1"]
		if ann.FirstName != "Ann" || ann.Role != "organizer" {
			t.Errorf("Profile merge failed for user-1: %+v", ann)
		}
		if !ann.EmailVerified {
			t.Error("user-1 has a confirmation timestamp, should be verified")
		}

		ben := byID["user-2"]
		if ben.EmailVerified {
			t.Error("user-2 never confirmed, should not be verified")
		}
		if ben.Role != "admin" {
			t.Errorf("Expected admin role for user-2, got %s", ben.Role)
		}

		// user-3 has no profile row; fields default rather than dropping the user
		cho := byID["user-3"]
		if cho.ID == "" {
			t.Fatal("user-3 missing from output")
		}
		if cho.FirstName != "" || cho.Role != "client" {
			t.Errorf("Expected defaulted profile fields for user-3: %+v", cho)
		}
	})

	t.Run("ClientDefaults", func(t *testing.T) {
		var clients []models.Client
		if err := shared.ReadJSONFile(filepath.Join(outputDir, "clients.json"), &clients); err != nil {
			t.Fatalf("Failed to read clients: %v", err)
		}
		byID := make(map[string]models.Client, len(clients))
		for _, c := range clients {
			byID[c.ID] = c
		}

		if byID["client-1"].Tier != "premium" {
			t.Errorf("Expected gold mapped to premium, got %s", byID["client-1"].Tier)
		}
		second := byID["client-2"]
		if second.Tier != "standard" || second.Status != "active" || second.LoyaltyPoints != 0 {
			t.Errorf("Null business fields should default: %+v", second)
		}
	})

	t.Run("PreferenceNotifications", func(t *testing.T) {
		var prefs []models.Preference
		if err := shared.ReadJSONFile(filepath.Join(outputDir, "preferences.json"), &prefs); err != nil {
			t.Fatalf("Failed to read preferences: %v", err)
		}
		byID := make(map[string]models.Preference, len(prefs))
		for _, p := range prefs {
			byID[p.ID] = p
		}

		if byID["pref-1"].Notifications["email"] != true {
			t.Errorf("Structured notifications lost: %v", byID["pref-1"].Notifications)
		}
		if byID["pref-2"].Notifications["sms"] != true {
			t.Errorf("String-wrapped notifications not unwrapped: %v", byID["pref-2"].Notifications)
		}
	})

	t.Run("MediaUnification", func(t *testing.T) {
		var media []models.Media
		if err := shared.ReadJSONFile(filepath.Join(outputDir, "media.json"), &media); err != nil {
			t.Fatalf("Failed to read media: %v", err)
		}
		if len(media) != 2 {
			t.Fatalf("Expected 2 media records, got %d", len(media))
		}

		var storage, document models.Media
		for _, m := range media {
			switch m.Source {
			case models.MediaSourceStorage:
				storage = m
			case models.MediaSourceTripDocument:
				document = m
			}
		}

		if storage.ID != shared.DeriveID("avatars", "user-1/photo.jpg") {
			t.Errorf("Storage media id not derived from coordinates: %s", storage.ID)
		}
		if storage.Filename != "photo.jpg" {
			t.Errorf("Expected base filename, got %s", storage.Filename)
		}
		if document.ID != "doc-123" {
			t.Errorf("Trip document must keep its original id, got %s", document.ID)
		}
		if document.Trip != "trip-1" {
			t.Errorf("Trip document must keep its trip reference, got %s", document.Trip)
		}
	})

	t.Run("TripFlexFields", func(t *testing.T) {
		var trips []models.Trip
		if err := shared.ReadJSONFile(filepath.Join(outputDir, "trips.json"), &trips); err != nil {
			t.Fatalf("Failed to read trips: %v", err)
		}
		byID := make(map[string]models.Trip, len(trips))
		for _, tr := range trips {
			byID[tr.ID] = tr
		}

		alps := byID["trip-1"]
		if len(alps.Destinations) != 1 || alps.Destinations[0]["city"] != "Zermatt" {
			t.Errorf("String-wrapped destinations not unwrapped: %v", alps.Destinations)
		}
		if len(alps.Travelers) != 2 || alps.Travelers[0] != "user-1" || alps.Travelers[1] != "user-2" {
			t.Errorf("Travelers union not resolved: %v", alps.Travelers)
		}
		if alps.StartDate != "2024-06-01T00:00:00Z" {
			t.Errorf("Date not normalized to RFC 3339 UTC: %s", alps.StartDate)
		}

		kyoto := byID["trip-2"]
		if kyoto.Destinations == nil || len(kyoto.Destinations) != 0 {
			t.Errorf("Missing destinations should become empty array: %v", kyoto.Destinations)
		}
		if kyoto.CreatedAt != "2025-06-01T12:00:00Z" {
			t.Errorf("Missing date should fall back to the run timestamp, got %s", kyoto.CreatedAt)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		secondDir := t.TempDir()
		second, err := NewTransformer(nil).Run(nil, TransformOpts{ExportDir: exportDir, OutputDir: secondDir, Now: now})
		if err != nil {
			t.Fatalf("Second run failed: %v", err)
		}
		if second.TotalTransformed != summary.TotalTransformed {
			t.Errorf("Re-run produced different totals: %d vs %d", second.TotalTransformed, summary.TotalTransformed)
		}

		for _, collection := range DestinationOrder {
			first := th.MustReadFile(t, filepath.Join(outputDir, collection+".json"))
			again := th.MustReadFile(t, filepath.Join(secondDir, collection+".json"))
			if first != again {
				t.Errorf("Collection %s differs between identical runs", collection)
			}
		}
	})
}

func TestTransformerMissingExport(t *testing.T) {
	exportDir := t.TempDir()
	outputDir := t.TempDir()

	// Only trips present; every other snapshot is missing.
	trips := []map[string]any{{"id": "trip-1", "title": "Solo"}}
	if err := shared.WriteJSONFile(filepath.Join(exportDir, SourceTrips+".json"), trips); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	summary, err := NewTransformer(nil).Run(nil, TransformOpts{ExportDir: exportDir, OutputDir: outputDir})
	if err != nil {
		t.Fatalf("Run should tolerate missing snapshots: %v", err)
	}

	if summary.TotalTransformed != 1 {
		t.Errorf("Expected only the trip to survive, got %d", summary.TotalTransformed)
	}
	for _, result := range summary.Results {
		if result.Collection == CollectionTrips {
			continue
		}
		if len(result.Issues) == 0 {
			t.Errorf("Collection %s should record a read issue", result.Collection)
		}
	}
}

func TestTransformerMalformedFlexField(t *testing.T) {
	exportDir := t.TempDir()
	outputDir := t.TempDir()

	trips := []map[string]any{
		{"id": "trip-1", "title": "Good", "destinations": []any{map[string]any{"city": "Rome"}}},
		{"id": "trip-2", "title": "Bad", "destinations": json.RawMessage(`{"city":"Oslo"}`)},
	}
	if err := shared.WriteJSONFile(filepath.Join(exportDir, SourceTrips+".json"), trips); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	summary, err := NewTransformer(nil).Run(nil, TransformOpts{ExportDir: exportDir, OutputDir: outputDir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var trips2 []models.Trip
	if err := shared.ReadJSONFile(filepath.Join(outputDir, "trips.json"), &trips2); err != nil {
		t.Fatalf("Failed to read trips: %v", err)
	}
	if len(trips2) != 2 {
		t.Fatalf("Malformed flex field must not drop the trip, got %d trips", len(trips2))
	}

	var issues []string
	for _, result := range summary.Results {
		if result.Collection == CollectionTrips {
			issues = result.Issues
		}
	}
	if len(issues) == 0 {
		t.Error("Malformed destinations should be recorded as an issue")
	}
}
