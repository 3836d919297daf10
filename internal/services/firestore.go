package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wayfarerlabs/portage/internal/shared"
)

// FirestoreStore implements [DocumentStore] over the destination Firestore database.
type FirestoreStore struct {
	client *firestore.Client
}

var _ DocumentStore = (*FirestoreStore)(nil)

// NewFirestoreStore obtains the Firestore client from an initialized app.
// A failure here is a fatal initialization error.
func NewFirestoreStore(ctx context.Context, app *firebase.App) (*FirestoreStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDestinationUnavailable, err)
	}
	return &FirestoreStore{client: client}, nil
}

// Create persists a new document keyed by the preserved source identifier.
// An already-existing id is reported distinctly so the importer's error
// list makes re-run collisions recognizable.
func (s *FirestoreStore) Create(ctx context.Context, collection, id string, data any) error {
	_, err := s.client.Collection(collection).Doc(id).Create(ctx, data)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("document %s/%s already exists: %w", collection, id, err)
		}
		return fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
	}
	return nil
}

// Upsert persists the document keyed by the preserved source identifier,
// overwriting any prior run's record with the same id.
func (s *FirestoreStore) Upsert(ctx context.Context, collection, id string, data any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

// FetchAll returns up to limit documents from the collection, with each
// document's id taken from its reference.
func (s *FirestoreStore) FetchAll(ctx context.Context, collection string, limit int) ([]Document, error) {
	docs := make([]Document, 0)

	iter := s.client.Collection(collection).Limit(limit).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
