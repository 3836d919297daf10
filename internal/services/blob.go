package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/wayfarerlabs/portage/internal/models"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// CloudBlobStore implements [BlobStore] over Google Cloud Storage.
type CloudBlobStore struct {
	client *storage.Client
}

var _ BlobStore = (*CloudBlobStore)(nil)

// NewCloudBlobStore creates a storage client. A credential failure here is
// a fatal initialization error.
func NewCloudBlobStore(ctx context.Context, credentialsFile string) (*CloudBlobStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	return &CloudBlobStore{client: client}, nil
}

// ListBucket enumerates every object in the bucket, capturing name, size,
// MIME type, timestamps, and the computed public-access URL.
func (b *CloudBlobStore) ListBucket(ctx context.Context, bucket string) ([]models.StorageObject, error) {
	objects := make([]models.StorageObject, 0)

	iter := b.client.Bucket(bucket).Objects(ctx, nil)
	for {
		attrs, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, err)
		}
		objects = append(objects, models.StorageObject{
			Bucket:      bucket,
			Name:        attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			PublicURL:   PublicObjectURL(bucket, attrs.Name),
			CreatedAt:   formatObjectTime(attrs.Created),
			UpdatedAt:   formatObjectTime(attrs.Updated),
		})
	}
	return objects, nil
}

// PublicObjectURL computes the public-access URL for a storage object.
func PublicObjectURL(bucket, name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, url.PathEscape(name))
}

func formatObjectTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
