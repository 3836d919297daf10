package services

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/wayfarerlabs/portage/internal/models"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// NewFirebaseApp initializes the Firebase Admin SDK app used for both the
// identity registry and the destination document store.
func NewFirebaseApp(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return app, nil
}

// FirebaseIdentity implements [IdentityProvider] over the Firebase Auth admin client.
type FirebaseIdentity struct {
	client *auth.Client
}

var _ IdentityProvider = (*FirebaseIdentity)(nil)

// NewFirebaseIdentity obtains the auth client from an initialized app.
func NewFirebaseIdentity(ctx context.Context, app *firebase.App) (*FirebaseIdentity, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrIdentityUnavailable, err)
	}
	return &FirebaseIdentity{client: client}, nil
}

// ListUsers pages through the full user registry via the provider's
// enumeration API and flattens each entry into the pipeline's auth-user shape.
func (f *FirebaseIdentity) ListUsers(ctx context.Context) ([]models.AuthUser, error) {
	users := make([]models.AuthUser, 0)

	iter := f.client.Users(ctx, "")
	for {
		record, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate users: %w", err)
		}
		users = append(users, flattenUser(record))
	}
	return users, nil
}

// flattenUser normalizes one registry entry into the same flat collection
// shape as relational rows. The provider reports verification as a boolean,
// so the account creation instant stands in as the confirmation timestamp
// to keep the exported shape uniform.
func flattenUser(record *auth.ExportedUserRecord) models.AuthUser {
	user := models.AuthUser{
		ID:        record.UID,
		Email:     record.Email,
		CreatedAt: millisToRFC3339(record.UserMetadata.CreationTimestamp),
		UpdatedAt: millisToRFC3339(record.UserMetadata.LastLogInTimestamp),
	}
	if record.EmailVerified {
		user.ConfirmedAt = user.CreatedAt
	}

	metadata := make(map[string]any)
	if len(record.CustomClaims) > 0 {
		metadata["custom_claims"] = record.CustomClaims
	}
	providers := make([]string, 0, len(record.ProviderUserInfo))
	for _, info := range record.ProviderUserInfo {
		providers = append(providers, info.ProviderID)
	}
	if len(providers) > 0 {
		metadata["providers"] = providers
	}
	if record.DisplayName != "" {
		metadata["display_name"] = record.DisplayName
	}
	if len(metadata) > 0 {
		user.Metadata = metadata
	}
	return user
}

func millisToRFC3339(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
