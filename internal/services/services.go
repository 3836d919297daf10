package services

import (
	"context"

	"github.com/wayfarerlabs/portage/internal/models"
)

// SourceStore reads collections from the source relational store.
type SourceStore interface {
	// FetchCollection returns every record of the named collection as flat
	// maps, ordered by creation time ascending so downstream diffing and
	// sampling are reproducible.
	FetchCollection(ctx context.Context, name string) ([]map[string]any, error)

	// Close releases the underlying connection pool.
	Close()
}

// IdentityProvider enumerates the source auth provider's user registry.
type IdentityProvider interface {
	// ListUsers pages through the full registry and returns every entry
	// normalized to the pipeline's flat auth-user shape.
	ListUsers(ctx context.Context) ([]models.AuthUser, error)
}

// BlobStore enumerates blob-storage buckets.
type BlobStore interface {
	// ListBucket returns descriptors for every object in the bucket,
	// including a computed public-access URL.
	ListBucket(ctx context.Context, bucket string) ([]models.StorageObject, error)
}

// Document is one record fetched back from the destination store.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is the destination document store's write and read-back surface.
type DocumentStore interface {
	// Create persists a new document under the preserved source identifier.
	// An already-existing identifier is an error.
	Create(ctx context.Context, collection, id string, data any) error

	// Upsert persists the document under the preserved source identifier,
	// overwriting any prior run's record with the same id.
	Upsert(ctx context.Context, collection, id string, data any) error

	// FetchAll returns up to limit documents from the collection.
	FetchAll(ctx context.Context, collection string, limit int) ([]Document, error)
}
