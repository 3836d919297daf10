package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every value carrying a credential or path can additionally be supplied
// through the environment (see [Config.ApplyEnv]), which takes precedence
// over the file so runbooks never need secrets committed to disk.
type Config struct {
	Source      SourceConfig      `toml:"source"`
	Identity    IdentityConfig    `toml:"identity"`
	Storage     StorageConfig     `toml:"storage"`
	Destination DestinationConfig `toml:"destination"`
	Migration   MigrationConfig   `toml:"migration"`
}

// SourceConfig contains connection settings for the source relational store.
type SourceConfig struct {
	DatabaseURL string `toml:"database_url"`
	ServiceKey  string `toml:"service_key"`
}

// IdentityConfig contains settings for the source auth provider registry.
type IdentityConfig struct {
	ProjectID       string `toml:"project_id"`
	CredentialsFile string `toml:"credentials_file"`
}

// StorageConfig contains blob-storage enumeration settings.
type StorageConfig struct {
	Buckets         []string `toml:"buckets"`
	CredentialsFile string   `toml:"credentials_file"`
}

// StorageCredentials returns the credentials file for the blob store,
// falling back to the identity service account when storage does not
// carry its own.
func (c *Config) StorageCredentials() string {
	if c.Storage.CredentialsFile != "" {
		return c.Storage.CredentialsFile
	}
	return c.Identity.CredentialsFile
}

// DestinationConfig contains settings for the destination document store.
type DestinationConfig struct {
	ProjectID       string `toml:"project_id"`
	CredentialsFile string `toml:"credentials_file"`
}

// MigrationConfig contains pipeline run settings.
type MigrationConfig struct {
	ExportDir  string  `toml:"export_dir"`  // Exporter output, Transformer input
	OutputDir  string  `toml:"output_dir"`  // Transformer output, Importer/Validator input
	BatchSize  int     `toml:"batch_size"`  // Records per import batch
	DryRun     bool    `toml:"dry_run"`     // Import without writing
	Upsert     bool    `toml:"upsert"`      // Set-by-id instead of create on import
	RateLimit  float64 `toml:"rate_limit"`  // Destination writes per second
	SampleSize int     `toml:"sample_size"` // Spot-check sample per collection
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays recognized environment variables onto the configuration.
func (c *Config) ApplyEnv() {
	setString(&c.Source.DatabaseURL, "PORTAGE_SOURCE_DATABASE_URL")
	setString(&c.Source.ServiceKey, "PORTAGE_SOURCE_SERVICE_KEY")
	setString(&c.Identity.ProjectID, "PORTAGE_IDENTITY_PROJECT_ID")
	setString(&c.Identity.CredentialsFile, "PORTAGE_IDENTITY_CREDENTIALS")
	setString(&c.Storage.CredentialsFile, "PORTAGE_STORAGE_CREDENTIALS")
	setString(&c.Destination.ProjectID, "PORTAGE_DESTINATION_PROJECT_ID")
	setString(&c.Destination.CredentialsFile, "PORTAGE_DESTINATION_CREDENTIALS")
	setString(&c.Migration.ExportDir, "PORTAGE_EXPORT_DIR")
	setString(&c.Migration.OutputDir, "PORTAGE_OUTPUT_DIR")

	if v := os.Getenv("PORTAGE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Migration.BatchSize = n
		}
	}
	if v := os.Getenv("PORTAGE_DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Migration.DryRun = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the settings a stage depends on are present.
// A missing setting here is a fatal initialization error, not a finding.
func (c *Config) Validate(needSource, needDestination bool) error {
	if needSource {
		if c.Source.DatabaseURL == "" {
			return fmt.Errorf("%w: source.database_url", ErrMissingCredentials)
		}
		if c.Identity.ProjectID == "" && c.Identity.CredentialsFile == "" {
			return fmt.Errorf("%w: identity.project_id or identity.credentials_file", ErrMissingCredentials)
		}
	}
	if needDestination {
		if c.Destination.ProjectID == "" && c.Destination.CredentialsFile == "" {
			return fmt.Errorf("%w: destination.project_id or destination.credentials_file", ErrMissingCredentials)
		}
	}
	if c.Migration.BatchSize < 0 {
		return fmt.Errorf("%w: migration.batch_size must not be negative", ErrInvalidConfig)
	}
	return nil
}
