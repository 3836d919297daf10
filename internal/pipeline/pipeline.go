package pipeline

import "time"

// Source collection snapshot files written by the Exporter.
const (
	SourceAuthUsers     = "auth_users"
	SourceProfiles      = "profiles"
	SourceClients       = "clients"
	SourceTrips         = "trips"
	SourcePreferences   = "preferences"
	SourceTripDocuments = "trip_documents"
	SourceStorageFiles  = "storage_files"
)

// Destination collections written by the Transformer and persisted by the Importer.
const (
	CollectionUsers       = "users"
	CollectionClients     = "clients"
	CollectionPreferences = "preferences"
	CollectionMedia       = "media"
	CollectionTrips       = "trips"
)

// RelationalCollections are the source tables exported via the relational
// store, in export order.
var RelationalCollections = []string{
	SourceProfiles,
	SourceClients,
	SourceTrips,
	SourcePreferences,
	SourceTripDocuments,
}

// DestinationOrder is the fixed dependency order for transform and import:
// identities before anything referencing them, trips last because trips
// reference users and clients.
var DestinationOrder = []string{
	CollectionUsers,
	CollectionClients,
	CollectionPreferences,
	CollectionMedia,
	CollectionTrips,
}

// CollectionExport is the per-collection outcome of an export run.
type CollectionExport struct {
	Collection string   `json:"collection"`
	Success    bool     `json:"success"`
	Count      int      `json:"count"`
	Error      string   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"` // Partial failures, e.g. one bucket of several
}

// ExportSummary aggregates an export run.
type ExportSummary struct {
	ExportDate            string             `json:"export_date"`
	TotalCollections      int                `json:"total_collections"`
	SuccessfulCollections int                `json:"successful_collections"`
	TotalRecords          int                `json:"total_records"`
	Results               []CollectionExport `json:"results"`
	Environment           map[string]string  `json:"environment"`
}

// CollectionTransform is the per-collection outcome of a transform run.
type CollectionTransform struct {
	Collection       string   `json:"collection"`
	OriginalCount    int      `json:"original_count"`
	TransformedCount int      `json:"transformed_count"`
	Issues           []string `json:"issues,omitempty"` // Malformed fields, count mismatches
}

// TransformSummary aggregates a transform run.
type TransformSummary struct {
	TransformDate    string                `json:"transform_date"`
	TotalOriginal    int                   `json:"total_original"`
	TotalTransformed int                   `json:"total_transformed"`
	Results          []CollectionTransform `json:"results"`
	IntegrityIssues  []string              `json:"integrity_issues,omitempty"`
	Environment      map[string]string     `json:"environment"`
}

// CollectionImport is the per-collection outcome of an import run.
// Success is strict: any failed record marks the collection failed, even
// though the run continued through every record.
type CollectionImport struct {
	Collection        string   `json:"collection"`
	TotalRecords      int      `json:"total_records"`
	SuccessfulImports int      `json:"successful_imports"`
	FailedImports     int      `json:"failed_imports"`
	FilteredRecords   int      `json:"filtered_records"`
	Errors            []string `json:"errors,omitempty"`
	Success           bool     `json:"success"`
}

// ImportSummary aggregates an import run.
type ImportSummary struct {
	ImportDate      string             `json:"import_date"`
	DryRun          bool               `json:"dry_run"`
	TotalRecords    int                `json:"total_records"`
	TotalImported   int                `json:"total_imported"`
	TotalFailed     int                `json:"total_failed"`
	TotalFiltered   int                `json:"total_filtered"`
	Results         []CollectionImport `json:"results"`
	RequiredActions []string           `json:"required_actions,omitempty"`
	Environment     map[string]string  `json:"environment"`
}

// Finding severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Finding is a single validation observation.
type Finding struct {
	Severity   string `json:"severity"`
	Collection string `json:"collection"`
	RecordID   string `json:"record_id,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

// CollectionValidation is the per-collection outcome of a validation run.
type CollectionValidation struct {
	Collection         string `json:"collection"`
	ExportedCount      int    `json:"exported_count"`
	TransformedCount   int    `json:"transformed_count"`
	DestinationCount   int    `json:"destination_count"`
	MissingRecords     int    `json:"missing_records"`
	ExtraRecords       int    `json:"extra_records"`
	FieldMismatches    int    `json:"field_mismatches"`
	RelationshipIssues int    `json:"relationship_issues"`
}

// ValidationReport aggregates a validation run. Passed requires zero
// critical findings and zero missing or extra records anywhere.
type ValidationReport struct {
	ValidationDate string                 `json:"validation_date"`
	Passed         bool                   `json:"passed"`
	Results        []CollectionValidation `json:"results"`
	CriticalIssues []Finding              `json:"critical_issues,omitempty"`
	Warnings       []Finding              `json:"warnings,omitempty"`
	Environment    map[string]string      `json:"environment"`
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
