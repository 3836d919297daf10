// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/wayfarerlabs/portage/internal/models"
	"github.com/wayfarerlabs/portage/internal/services"
)

// MockSourceStore is a test double for [services.SourceStore] backed by
// canned collections, with optional per-collection failures.
type MockSourceStore struct {
	Collections map[string][]map[string]any
	FailOn      map[string]error
}

func (m *MockSourceStore) FetchCollection(ctx context.Context, name string) ([]map[string]any, error) {
	if err, ok := m.FailOn[name]; ok {
		return nil, err
	}
	return m.Collections[name], nil
}

func (m *MockSourceStore) Close() {}

// MockIdentityProvider is a test double for [services.IdentityProvider].
type MockIdentityProvider struct {
	Users []models.AuthUser
	Err   error
}

func (m *MockIdentityProvider) ListUsers(ctx context.Context) ([]models.AuthUser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Users, nil
}

// MockBlobStore is a test double for [services.BlobStore] with optional
// per-bucket failures.
type MockBlobStore struct {
	Buckets map[string][]models.StorageObject
	FailOn  map[string]error
}

func (m *MockBlobStore) ListBucket(ctx context.Context, bucket string) ([]models.StorageObject, error) {
	if err, ok := m.FailOn[bucket]; ok {
		return nil, err
	}
	return m.Buckets[bucket], nil
}

// MockDocumentStore is a test double for [services.DocumentStore] that
// records writes in memory. FailIDs makes specific record creates fail,
// for exercising best-effort import semantics.
type MockDocumentStore struct {
	mu       sync.Mutex
	Docs     map[string]map[string]map[string]any // collection -> id -> data
	FailIDs  map[string]error
	Creates  int
	Upserts  int
	FetchErr error
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		Docs:    make(map[string]map[string]map[string]any),
		FailIDs: make(map[string]error),
	}
}

func (m *MockDocumentStore) Create(ctx context.Context, collection, id string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	if err, ok := m.FailIDs[id]; ok {
		return err
	}
	if m.Docs[collection] == nil {
		m.Docs[collection] = make(map[string]map[string]any)
	}
	if _, exists := m.Docs[collection][id]; exists {
		return errors.New("document " + collection + "/" + id + " already exists")
	}
	m.Docs[collection][id] = toMap(data)
	return nil
}

func (m *MockDocumentStore) Upsert(ctx context.Context, collection, id string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++
	if err, ok := m.FailIDs[id]; ok {
		return err
	}
	if m.Docs[collection] == nil {
		m.Docs[collection] = make(map[string]map[string]any)
	}
	m.Docs[collection][id] = toMap(data)
	return nil
}

func (m *MockDocumentStore) FetchAll(ctx context.Context, collection string, limit int) ([]services.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	docs := make([]services.Document, 0, len(m.Docs[collection]))
	for id, data := range m.Docs[collection] {
		if len(docs) >= limit {
			break
		}
		docs = append(docs, services.Document{ID: id, Data: data})
	}
	return docs, nil
}

func toMap(data any) map[string]any {
	if m, ok := data.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

var _ io.Writer = (*FWriter)(nil)
