package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wayfarerlabs/portage/internal/models"
	"github.com/wayfarerlabs/portage/internal/shared"
	th "github.com/wayfarerlabs/portage/internal/testing"
)

func testSourceStore() *th.MockSourceStore {
	return &th.MockSourceStore{
		Collections: map[string][]map[string]any{
			SourceProfiles: {
				{"id": "prof-1", "user_id": "user-1", "first_name": "Ann"},
			},
			SourceClients: {
				{"id": "client-1", "user_id": "user-1", "tier": "gold"},
			},
			SourceTrips: {
				{"id": "trip-1", "title": "Alps", "client_id": "client-1"},
				{"id": "trip-2", "title": "Kyoto", "client_id": "client-1"},
			},
			SourcePreferences: {
				{"id": "pref-1", "user_id": "user-1", "language": "en"},
			},
			SourceTripDocuments: {
				{"id": "doc-1", "trip_id": "trip-1", "filename": "itinerary.pdf", "url": "https://cdn/itinerary.pdf"},
			},
		},
	}
}

func testIdentityProvider() *th.MockIdentityProvider {
	return &th.MockIdentityProvider{
		Users: []models.AuthUser{
			{ID: "user-1", Email: "ann@example.com", ConfirmedAt: "2024-01-01T00:00:00Z"},
			{ID: "user-2", Email: "ben@example.com"},
		},
	}
}

func testBlobStore() *th.MockBlobStore {
	return &th.MockBlobStore{
		Buckets: map[string][]models.StorageObject{
			"avatars": {
				{Bucket: "avatars", Name: "user-1/photo.jpg", Size: 1024, ContentType: "image/jpeg", PublicURL: "https://storage.googleapis.com/avatars/user-1/photo.jpg"},
			},
			"trip-documents": {
				{Bucket: "trip-documents", Name: "trip-1/map.pdf", Size: 2048, ContentType: "application/pdf", PublicURL: "https://storage.googleapis.com/trip-documents/trip-1/map.pdf"},
			},
		},
	}
}

func TestExporterRun(t *testing.T) {
	t.Run("FullExport", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewExporter(testSourceStore(), testIdentityProvider(), testBlobStore(), nil)

		summary, err := exporter.Run(context.Background(), nil, ExportOpts{
			OutputDir: dir,
			Buckets:   []string{"avatars", "trip-documents"},
			Now:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if summary.TotalCollections != 7 {
			t.Errorf("Expected 7 collections, got %d", summary.TotalCollections)
		}
		if summary.SuccessfulCollections != 7 {
			t.Errorf("Expected 7 successful collections, got %d", summary.SuccessfulCollections)
		}
		// 6 relational rows + 2 auth users + 2 storage objects
		if summary.TotalRecords != 10 {
			t.Errorf("Expected 10 records, got %d", summary.TotalRecords)
		}

		for _, name := range []string{"profiles", "clients", "trips", "preferences", "trip_documents", "auth_users", "storage_files", "export_summary"} {
			th.AssertFileExists(t, filepath.Join(dir, name+".json"))
		}

		var users []models.AuthUser
		if err := shared.ReadJSONFile(filepath.Join(dir, "auth_users.json"), &users); err != nil {
			t.Fatalf("Failed to read auth_users snapshot: %v", err)
		}
		if len(users) != 2 || users[0].ID != "user-1" {
			t.Errorf("Unexpected auth_users snapshot: %v", users)
		}
	})

	t.Run("CollectionFailureIsolated", func(t *testing.T) {
		dir := t.TempDir()
		source := testSourceStore()
		source.FailOn = map[string]error{SourceTrips: errors.New("connection reset")}
		exporter := NewExporter(source, testIdentityProvider(), testBlobStore(), nil)

		summary, err := exporter.Run(context.Background(), nil, ExportOpts{
			OutputDir: dir,
			Buckets:   []string{"avatars"},
		})
		if err != nil {
			t.Fatalf("Run should not fail for a single collection: %v", err)
		}

		failed := 0
		for _, result := range summary.Results {
			if !result.Success {
				failed++
				if result.Collection != SourceTrips {
					t.Errorf("Unexpected failed collection %s", result.Collection)
				}
				if result.Error == "" {
					t.Error("Failed collection should carry an error message")
				}
			}
		}
		if failed != 1 {
			t.Errorf("Expected exactly 1 failed collection, got %d", failed)
		}
		if summary.SuccessfulCollections != summary.TotalCollections-1 {
			t.Errorf("Expected %d successes, got %d", summary.TotalCollections-1, summary.SuccessfulCollections)
		}
	})

	t.Run("BucketFailureDegradesToWarning", func(t *testing.T) {
		dir := t.TempDir()
		blobs := testBlobStore()
		blobs.FailOn = map[string]error{"avatars": errors.New("permission denied")}
		exporter := NewExporter(testSourceStore(), testIdentityProvider(), blobs, nil)

		summary, err := exporter.Run(context.Background(), nil, ExportOpts{
			OutputDir: dir,
			Buckets:   []string{"avatars", "trip-documents"},
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		var storage CollectionExport
		for _, result := range summary.Results {
			if result.Collection == SourceStorageFiles {
				storage = result
			}
		}
		if !storage.Success {
			t.Error("Storage export should succeed when one of two buckets fails")
		}
		if len(storage.Warnings) != 1 {
			t.Errorf("Expected 1 warning, got %v", storage.Warnings)
		}
		if storage.Count != 1 {
			t.Errorf("Expected 1 object from the surviving bucket, got %d", storage.Count)
		}
	})

	t.Run("AllBucketsFail", func(t *testing.T) {
		dir := t.TempDir()
		blobs := testBlobStore()
		blobs.FailOn = map[string]error{
			"avatars":        errors.New("permission denied"),
			"trip-documents": errors.New("permission denied"),
		}
		exporter := NewExporter(testSourceStore(), testIdentityProvider(), blobs, nil)

		summary, err := exporter.Run(context.Background(), nil, ExportOpts{
			OutputDir: dir,
			Buckets:   []string{"avatars", "trip-documents"},
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for _, result := range summary.Results {
			if result.Collection == SourceStorageFiles && result.Success {
				t.Error("Storage export should fail when every bucket fails")
			}
		}
	})

	t.Run("RegistryFailureIsolated", func(t *testing.T) {
		dir := t.TempDir()
		identity := testIdentityProvider()
		identity.Err = errors.New("token expired")
		exporter := NewExporter(testSourceStore(), identity, testBlobStore(), nil)

		summary, err := exporter.Run(context.Background(), nil, ExportOpts{OutputDir: dir})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for _, result := range summary.Results {
			if result.Collection == SourceAuthUsers {
				if result.Success {
					t.Error("Registry export should fail when listing fails")
				}
			} else if !result.Success {
				t.Errorf("Collection %s should not be affected by registry failure", result.Collection)
			}
		}
	})

	t.Run("ProgressUpdates", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewExporter(testSourceStore(), testIdentityProvider(), testBlobStore(), nil)

		progress := make(chan ProgressUpdate, 64)
		_, err := exporter.Run(context.Background(), progress, ExportOpts{
			OutputDir: dir,
			Buckets:   []string{"avatars"},
		})
		close(progress)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		count := 0
		for update := range progress {
			if update.Message == "" {
				t.Error("Progress update should carry a message")
			}
			count++
		}
		// 5 tables + registry + 1 bucket
		if count != 7 {
			t.Errorf("Expected 7 progress updates, got %d", count)
		}
	})
}
