package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/wayfarerlabs/portage/internal/services"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// DefaultBatchSize bounds memory per write batch when none is configured.
const DefaultBatchSize = 100

// maxErrorLength truncates captured per-record error messages in summaries.
const maxErrorLength = 200

// Importer persists transformed records into the destination store in
// fixed dependency order, in batches, with best-effort semantics: a failed
// record is counted and the run continues, never all-or-nothing.
type Importer struct {
	store  services.DocumentStore
	logger *log.Logger
}

// ImportOpts contains configuration for an import run.
type ImportOpts struct {
	InputDir  string        // Transformer output to read
	BatchSize int           // Records per batch; <= 0 means DefaultBatchSize
	DryRun    bool          // Perform all iteration and counting without writing
	Upsert    bool          // Overwrite-by-preserved-id instead of create
	Limiter   *rate.Limiter // Optional cap on destination writes per second
	Now       time.Time     // Run timestamp; zero means time.Now
}

// NewImporter creates an Importer over the destination store.
func NewImporter(store services.DocumentStore, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{store: store, logger: logger}
}

// Run imports every destination collection in dependency order and writes
// import_summary.json. Batches bound memory and provide progress
// checkpoints; they carry no transactional meaning.
func (im *Importer) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ImportOpts) (*ImportSummary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	summary := &ImportSummary{
		ImportDate: stamp(opts.Now),
		DryRun:     opts.DryRun,
		Results:    make([]CollectionImport, 0, len(DestinationOrder)),
		Environment: map[string]string{
			"input_dir":   opts.InputDir,
			"destination": "firestore",
			"mode":        importMode(opts),
		},
	}

	for i, collection := range DestinationOrder {
		result := im.importCollection(ctx, progress, i+1, len(DestinationOrder), collection, opts)
		summary.Results = append(summary.Results, result)
		summary.TotalRecords += result.TotalRecords
		summary.TotalImported += result.SuccessfulImports
		summary.TotalFailed += result.FailedImports
		summary.TotalFiltered += result.FilteredRecords
	}

	summary.RequiredActions = []string{
		"All migrated users carry placeholder credentials and must reset their passwords before first sign-in.",
		"Re-verify client and trip relationships in the CMS admin before cutover.",
	}

	path := filepath.Join(opts.InputDir, "import_summary.json")
	if err := shared.WriteJSONFile(path, summary); err != nil {
		return summary, err
	}

	im.logger.Info("import complete",
		"dry_run", opts.DryRun,
		"records", summary.TotalRecords,
		"imported", summary.TotalImported,
		"failed", summary.TotalFailed,
		"filtered", summary.TotalFiltered)
	return summary, nil
}

// importCollection processes one collection in batches. Every record is
// attempted independently; a failure is counted, its message truncated and
// captured, and processing continues with the next record.
func (im *Importer) importCollection(ctx context.Context, progress chan<- ProgressUpdate, step, totalSteps int, collection string, opts ImportOpts) CollectionImport {
	result := CollectionImport{Collection: collection}

	var records []map[string]any
	if err := shared.ReadJSONFile(filepath.Join(opts.InputDir, collection+".json"), &records); err != nil {
		im.logger.Error("transformed collection unreadable", "collection", collection, "err", err)
		result.Errors = append(result.Errors, shared.Truncate(err.Error(), maxErrorLength))
		return result
	}

	result.TotalRecords = len(records)
	batches := (len(records) + opts.BatchSize - 1) / opts.BatchSize

	for start := 0; start < len(records); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(records))
		batch := records[start:end]
		batchNum := start/opts.BatchSize + 1

		sendProgress(progress, importBatchUpdate(step, totalSteps, collection, batchNum, batches))
		im.logger.Info("importing batch",
			"collection", collection,
			"batch", batchNum,
			"of", batches,
			"records", len(batch))

		for _, record := range batch {
			if err := ctx.Err(); err != nil {
				result.Errors = append(result.Errors, shared.Truncate(err.Error(), maxErrorLength))
				return result
			}
			im.importRecord(ctx, collection, record, opts, &result)
		}
	}

	result.Success = result.FailedImports == 0
	im.logger.Info("collection import finished",
		"collection", collection,
		"total", result.TotalRecords,
		"imported", result.SuccessfulImports,
		"failed", result.FailedImports,
		"filtered", result.FilteredRecords)
	return result
}

// importRecord validates and persists a single record. Dry-run performs the
// same validation and counting with no write, so its counts are directly
// comparable to a live run.
func (im *Importer) importRecord(ctx context.Context, collection string, record map[string]any, opts ImportOpts, result *CollectionImport) {
	id, _ := record["id"].(string)
	if id == "" {
		result.FailedImports++
		result.Errors = append(result.Errors, "record missing id")
		return
	}

	if collection == CollectionMedia && !mediaResolvable(record) {
		// Filtered, never silently absent: the count is reported.
		im.logger.Warn("media record filtered", "id", id, "reason", "no resolvable url or filename")
		result.FilteredRecords++
		return
	}

	if collection == CollectionUsers {
		// Original credentials are never migrated or re-derived; every
		// identity gets a placeholder and a forced reset.
		record["passwordHash"] = shared.DeriveID("placeholder-credential", id)
		record["passwordResetRequired"] = true
	}

	if opts.DryRun {
		result.SuccessfulImports++
		return
	}

	if opts.Limiter != nil {
		if err := opts.Limiter.Wait(ctx); err != nil {
			result.FailedImports++
			result.Errors = append(result.Errors, shared.Truncate(err.Error(), maxErrorLength))
			return
		}
	}

	write := im.store.Create
	if opts.Upsert {
		write = im.store.Upsert
	}
	if err := write(ctx, collection, id, record); err != nil {
		result.FailedImports++
		result.Errors = append(result.Errors, shared.Truncate(err.Error(), maxErrorLength))
		return
	}
	result.SuccessfulImports++
}

// mediaResolvable reports whether a media record carries enough to be
// reachable in the CMS: a URL and a filename.
func mediaResolvable(record map[string]any) bool {
	url, _ := record["url"].(string)
	filename, _ := record["filename"].(string)
	return url != "" && filename != ""
}

func importMode(opts ImportOpts) string {
	switch {
	case opts.DryRun:
		return "dry-run"
	case opts.Upsert:
		return "upsert"
	default:
		return "create"
	}
}
