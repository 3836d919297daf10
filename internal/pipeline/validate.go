package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wayfarerlabs/portage/internal/services"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// DefaultSampleSize bounds field spot-checks per collection.
const DefaultSampleSize = 10

// defaultPageLimit is the floor for destination fetches; the actual limit
// never cuts off below the expected total.
const defaultPageLimit = 1000

// spotField is one identity-bearing field compared between the transformed
// intermediate and the live destination record.
type spotField struct {
	name     string
	critical bool // Identity fields make a mismatch critical
}

// spotFields lists the fixed per-collection spot-check fields.
var spotFields = map[string][]spotField{
	CollectionUsers:       {{"email", true}, {"role", false}},
	CollectionClients:     {{"user", true}, {"tier", false}},
	CollectionPreferences: {{"user", true}, {"language", false}},
	CollectionMedia:       {{"filename", false}, {"url", false}, {"source", false}},
	CollectionTrips:       {{"client", true}, {"createdBy", true}, {"title", false}, {"status", false}},
}

// exportSources maps each destination collection to the export snapshots
// that fed it, for the three-way count comparison.
var exportSources = map[string][]string{
	CollectionUsers:       {SourceAuthUsers},
	CollectionClients:     {SourceClients},
	CollectionPreferences: {SourcePreferences},
	CollectionMedia:       {SourceStorageFiles, SourceTripDocuments},
	CollectionTrips:       {SourceTrips},
}

// Validator independently confirms that what Import claims happened matches
// reality, comparing the original export, the transformed intermediate, and
// the live destination store.
type Validator struct {
	store  services.DocumentStore
	logger *log.Logger
}

// ValidateOpts contains configuration for a validation run.
type ValidateOpts struct {
	ExportDir  string    // Exporter output
	OutputDir  string    // Transformer output; the report is written here
	SampleSize int       // Spot-check sample per collection; <= 0 means DefaultSampleSize
	Now        time.Time // Run timestamp; zero means time.Now
}

// NewValidator creates a Validator over the destination store.
func NewValidator(store services.DocumentStore, logger *log.Logger) *Validator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Validator{store: store, logger: logger}
}

// Run validates every destination collection and writes
// validation_report.json. Shortfalls and surpluses are always reported,
// never silently tolerated.
func (v *Validator) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ValidateOpts) (*ValidationReport, error) {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	report := &ValidationReport{
		ValidationDate: stamp(opts.Now),
		Results:        make([]CollectionValidation, 0, len(DestinationOrder)),
		Environment: map[string]string{
			"export_dir":  opts.ExportDir,
			"output_dir":  opts.OutputDir,
			"destination": "firestore",
		},
	}

	// Transformed id sets come first so relationship references in any
	// collection can be resolved regardless of validation order.
	transformed := make(map[string][]map[string]any, len(DestinationOrder))
	ids := make(map[string]map[string]bool, len(DestinationOrder))
	for _, collection := range DestinationOrder {
		var records []map[string]any
		if err := shared.ReadJSONFile(filepath.Join(opts.OutputDir, collection+".json"), &records); err != nil {
			report.CriticalIssues = append(report.CriticalIssues, Finding{
				Severity:   SeverityCritical,
				Collection: collection,
				Message:    fmt.Sprintf("transformed snapshot unreadable: %v", err),
			})
		}
		transformed[collection] = records
		set := make(map[string]bool, len(records))
		for _, record := range records {
			if id, ok := record["id"].(string); ok {
				set[id] = true
			}
		}
		ids[collection] = set
	}

	countsClean := true
	for i, collection := range DestinationOrder {
		sendProgress(progress, validateCollectionUpdate(i+1, len(DestinationOrder), collection))
		result := v.validateCollection(ctx, collection, transformed, ids, opts, report)
		report.Results = append(report.Results, result)
		if result.MissingRecords > 0 || result.ExtraRecords > 0 {
			countsClean = false
		}
	}

	report.Passed = len(report.CriticalIssues) == 0 && countsClean

	path := filepath.Join(opts.OutputDir, "validation_report.json")
	if err := shared.WriteJSONFile(path, report); err != nil {
		return report, err
	}

	v.logger.Info("validation complete",
		"passed", report.Passed,
		"critical", len(report.CriticalIssues),
		"warnings", len(report.Warnings))
	return report, nil
}

// validateCollection runs the three-way count comparison, the bounded field
// spot-check, and the relationship checks for one collection.
func (v *Validator) validateCollection(ctx context.Context, collection string, transformed map[string][]map[string]any, ids map[string]map[string]bool, opts ValidateOpts, report *ValidationReport) CollectionValidation {
	result := CollectionValidation{Collection: collection}

	for _, source := range exportSources[collection] {
		result.ExportedCount += countExported(opts.ExportDir, source)
	}
	records := transformed[collection]
	result.TransformedCount = len(records)

	limit := defaultPageLimit
	if want := len(records) * 2; want > limit {
		limit = want
	}
	docs, err := v.store.FetchAll(ctx, collection, limit)
	if err != nil {
		report.CriticalIssues = append(report.CriticalIssues, Finding{
			Severity:   SeverityCritical,
			Collection: collection,
			Message:    fmt.Sprintf("destination fetch failed: %v", err),
		})
		return result
	}
	result.DestinationCount = len(docs)

	// The destination must account for every record the export captured,
	// not just what the transform passed along: a transform that drops
	// records is caught here, decisively, as a shortfall.
	expected := result.TransformedCount
	if result.ExportedCount > expected {
		expected = result.ExportedCount
	}
	if result.DestinationCount < expected {
		result.MissingRecords = expected - result.DestinationCount
		report.CriticalIssues = append(report.CriticalIssues, Finding{
			Severity:   SeverityCritical,
			Collection: collection,
			Message:    fmt.Sprintf("%d records missing from destination (%d exported, %d transformed, %d present)", result.MissingRecords, result.ExportedCount, result.TransformedCount, result.DestinationCount),
		})
	}
	if result.DestinationCount > result.TransformedCount {
		result.ExtraRecords = result.DestinationCount - result.TransformedCount
		report.CriticalIssues = append(report.CriticalIssues, Finding{
			Severity:   SeverityCritical,
			Collection: collection,
			Message:    fmt.Sprintf("%d extra records in destination (%d transformed, %d present)", result.ExtraRecords, result.TransformedCount, result.DestinationCount),
		})
	}
	if result.ExportedCount < result.TransformedCount {
		report.Warnings = append(report.Warnings, Finding{
			Severity:   SeverityWarning,
			Collection: collection,
			Message:    fmt.Sprintf("export/transform count drift: %d exported vs %d transformed", result.ExportedCount, result.TransformedCount),
		})
	}

	byID := make(map[string]services.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	result.FieldMismatches = v.spotCheck(collection, records, byID, opts.SampleSize, report)
	result.RelationshipIssues = v.checkRelationships(collection, docs, ids, report)

	v.logger.Info("validated collection",
		"collection", collection,
		"exported", result.ExportedCount,
		"transformed", result.TransformedCount,
		"destination", result.DestinationCount,
		"missing", result.MissingRecords,
		"extra", result.ExtraRecords)
	return result
}

// spotCheck compares identity-bearing fields between the transformed
// intermediate and the live destination for a bounded, deterministic sample
// (the first records in file order).
func (v *Validator) spotCheck(collection string, records []map[string]any, byID map[string]services.Document, sampleSize int, report *ValidationReport) int {
	mismatches := 0
	sample := records
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	for _, record := range sample {
		id, _ := record["id"].(string)
		if id == "" {
			continue
		}
		doc, ok := byID[id]
		if !ok {
			// Counted already by the missing-records comparison; the spot
			// check only reports field drift on records that exist.
			continue
		}
		for _, field := range spotFields[collection] {
			want, wantOK := record[field.name]
			got, gotOK := doc.Data[field.name]
			if !wantOK && !gotOK {
				continue
			}
			if fmt.Sprintf("%v", want) == fmt.Sprintf("%v", got) {
				continue
			}
			mismatches++
			finding := Finding{
				Severity:   SeverityWarning,
				Collection: collection,
				RecordID:   id,
				Field:      field.name,
				Message:    fmt.Sprintf("field %q differs: transformed %v, destination %v", field.name, want, got),
			}
			if field.critical {
				finding.Severity = SeverityCritical
				report.CriticalIssues = append(report.CriticalIssues, finding)
			} else {
				report.Warnings = append(report.Warnings, finding)
			}
		}
	}
	return mismatches
}

// checkRelationships verifies that every foreign-key-shaped field on the
// live destination records is a non-empty reference of the expected shape
// and resolves against the transformed id sets. Type-shape violations are
// relationship findings distinct from count findings.
func (v *Validator) checkRelationships(collection string, docs []services.Document, ids map[string]map[string]bool, report *ValidationReport) int {
	issues := 0
	addIssue := func(id, field, msg string) {
		issues++
		report.CriticalIssues = append(report.CriticalIssues, Finding{
			Severity:   SeverityCritical,
			Collection: collection,
			RecordID:   id,
			Field:      field,
			Message:    msg,
		})
	}

	for _, doc := range docs {
		switch collection {
		case CollectionClients, CollectionPreferences:
			checkReference(doc, "user", true, ids[CollectionUsers], addIssue)
		case CollectionMedia:
			if source, _ := doc.Data["source"].(string); source == "trip_document" {
				checkReference(doc, "trip", true, ids[CollectionTrips], addIssue)
			}
		case CollectionTrips:
			checkReference(doc, "client", false, ids[CollectionClients], addIssue)
			checkReference(doc, "createdBy", false, ids[CollectionUsers], addIssue)
			checkReference(doc, "organizer", false, ids[CollectionUsers], addIssue)
			checkTravelers(doc, ids[CollectionUsers], addIssue, report)
		}
	}
	return issues
}

// checkReference validates one reference field: present when required,
// a plain string rather than an embedded object, and resolvable.
func checkReference(doc services.Document, field string, required bool, valid map[string]bool, addIssue func(id, field, msg string)) {
	value, ok := doc.Data[field]
	if !ok || value == nil || value == "" {
		if required {
			addIssue(doc.ID, field, fmt.Sprintf("required reference %q is empty", field))
		}
		return
	}
	ref, isString := value.(string)
	if !isString {
		addIssue(doc.ID, field, fmt.Sprintf("reference %q is not a plain identifier (got %T)", field, value))
		return
	}
	if len(valid) > 0 && !valid[ref] {
		addIssue(doc.ID, field, fmt.Sprintf("reference %q points to unknown id %s", field, ref))
	}
}

// checkTravelers verifies each traveler entry is an identifier string.
// Unresolvable travelers are warnings: the list is advisory in the CMS,
// unlike the client/creator references trips are keyed by.
func checkTravelers(doc services.Document, users map[string]bool, addIssue func(id, field, msg string), report *ValidationReport) {
	travelers, ok := doc.Data["travelers"].([]any)
	if !ok {
		return
	}
	for i, entry := range travelers {
		ref, isString := entry.(string)
		if !isString {
			addIssue(doc.ID, "travelers", fmt.Sprintf("traveler %d is not a plain identifier (got %T)", i, entry))
			continue
		}
		if len(users) > 0 && !users[ref] {
			report.Warnings = append(report.Warnings, Finding{
				Severity:   SeverityWarning,
				Collection: CollectionTrips,
				RecordID:   doc.ID,
				Field:      "travelers",
				Message:    fmt.Sprintf("traveler %s not found among migrated users", ref),
			})
		}
	}
}

// countExported returns the record count of one export snapshot without
// decoding full records. A missing snapshot counts as zero; the count
// comparison downstream surfaces the gap.
func countExported(dir, name string) int {
	var records []json.RawMessage
	if err := shared.ReadJSONFile(filepath.Join(dir, name+".json"), &records); err != nil {
		return 0
	}
	return len(records)
}
