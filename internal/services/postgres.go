package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfarerlabs/portage/internal/shared"
)

// sourceTables is the allowlist of collections the exporter may query.
// Table names are interpolated into SQL, so anything outside this set is rejected.
var sourceTables = map[string]bool{
	"profiles":       true,
	"clients":        true,
	"trips":          true,
	"preferences":    true,
	"trip_documents": true,
}

// PostgresStore implements [SourceStore] over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ SourceStore = (*PostgresStore)(nil)

// NewPostgresStore connects to the source store and verifies the connection.
// A connection failure here is a fatal initialization error.
func NewPostgresStore(ctx context.Context, databaseURL, serviceKey string) (*PostgresStore, error) {
	config, err := poolConfig(databaseURL, serviceKey)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping failed: %v", shared.ErrSourceUnavailable, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// poolConfig parses the database URL and, when a privileged service key is
// supplied, uses it as the connection password so the secret stays out of
// the DSN and config files.
func poolConfig(databaseURL, serviceKey string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	if serviceKey != "" {
		config.ConnConfig.Password = serviceKey
	}
	return config, nil
}

// FetchCollection reads every row of the named table ordered by created_at ascending.
func (s *PostgresStore) FetchCollection(ctx context.Context, name string) ([]map[string]any, error) {
	if !sourceTables[name] {
		return nil, fmt.Errorf("%w: unknown source collection %q", shared.ErrInvalidInput, name)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY created_at ASC", name))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := make([]map[string]any, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", name, err)
		}
		record := make(map[string]any, len(fields))
		for i, field := range fields {
			record[string(field.Name)] = normalizeDriverValue(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", name, err)
	}
	return records, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// normalizeDriverValue converts pgx driver values into JSON-friendly shapes
// so snapshots serialize losslessly and identically across runs.
func normalizeDriverValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	default:
		return v
	}
}
