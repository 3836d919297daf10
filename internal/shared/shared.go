// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// mediaNamespace is the fixed UUID namespace for identifiers synthesized
// from blob-storage coordinates. Changing it changes every derived id.
var mediaNamespace = uuid.MustParse("9c1f3a52-7a0e-4b8f-9f1d-2e4c6a8b0d3e")

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// DeriveID synthesizes a deterministic identifier from blob-storage
// coordinates. The same bucket and object name always yield the same id,
// which keeps re-running the transform stage idempotent.
func DeriveID(bucket, name string) string {
	return uuid.NewSHA1(mediaNamespace, []byte(bucket+"/"+name)).String()
}

// MarshalJSON marshals data as JSON, optionally pretty-printed.
func MarshalJSON(data any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// WriteJSONFile marshals data and writes it to path, creating parent directories as needed.
//
// All pipeline artifacts (collection snapshots, stage summaries) go through
// this helper so every file on disk is pretty-printed UTF-8.
func WriteJSONFile(path string, data any) error {
	out, err := MarshalJSON(data, true)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON for %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSONFile reads path and unmarshals its contents into v. Stage
// engines depend on the sentinel wrapping to distinguish a missing
// artifact from a corrupt one.
func ReadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMissingArtifact, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}
	return nil
}

// Truncate shortens s to at most n bytes, appending an ellipsis when cut.
// Import error messages are truncated before they land in summaries.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
