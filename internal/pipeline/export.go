package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wayfarerlabs/portage/internal/services"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// Exporter snapshots every source collection into one JSON array file per
// collection. It performs no transformation; extraction is lossless.
type Exporter struct {
	source   services.SourceStore
	identity services.IdentityProvider
	blobs    services.BlobStore
	logger   *log.Logger
}

// ExportOpts contains configuration for an export run.
type ExportOpts struct {
	OutputDir string    // Destination for <collection>.json files and the summary
	Buckets   []string  // Blob-storage buckets to enumerate
	Now       time.Time // Run timestamp; zero means time.Now
}

// NewExporter creates an Exporter over the three source systems.
func NewExporter(source services.SourceStore, identity services.IdentityProvider, blobs services.BlobStore, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{source: source, identity: identity, blobs: blobs, logger: logger}
}

// Run exports every configured collection, the auth registry, and the
// blob-storage index, then writes export_summary.json.
//
// A single collection's failure is recorded in the summary and never aborts
// the run; the returned error covers only summary persistence itself.
func (e *Exporter) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportSummary, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	totalSteps := len(RelationalCollections) + 1 + len(opts.Buckets)
	summary := &ExportSummary{
		ExportDate: stamp(opts.Now),
		Results:    make([]CollectionExport, 0, len(RelationalCollections)+2),
		Environment: map[string]string{
			"output_dir": opts.OutputDir,
			"source":     "postgres",
			"identity":   "firebase-auth",
			"storage":    "gcs",
		},
	}

	step := 0
	for _, name := range RelationalCollections {
		step++
		sendProgress(progress, exportingCollectionUpdate(step, totalSteps, name))
		summary.Results = append(summary.Results, e.exportTable(ctx, name, opts.OutputDir))
	}

	step++
	sendProgress(progress, exportRegistryUpdate(step, totalSteps))
	summary.Results = append(summary.Results, e.exportRegistry(ctx, opts.OutputDir))

	summary.Results = append(summary.Results, e.exportStorage(ctx, progress, step, totalSteps, opts))

	summary.TotalCollections = len(summary.Results)
	for _, res := range summary.Results {
		if res.Success {
			summary.SuccessfulCollections++
			summary.TotalRecords += res.Count
		}
	}

	path := filepath.Join(opts.OutputDir, "export_summary.json")
	if err := shared.WriteJSONFile(path, summary); err != nil {
		return summary, err
	}

	e.logger.Info("export complete",
		"collections", summary.TotalCollections,
		"successful", summary.SuccessfulCollections,
		"records", summary.TotalRecords)
	return summary, nil
}

// exportTable snapshots one relational collection. Failures are caught and
// recorded so the run always attempts every configured collection.
func (e *Exporter) exportTable(ctx context.Context, name, outputDir string) CollectionExport {
	result := CollectionExport{Collection: name}

	records, err := e.source.FetchCollection(ctx, name)
	if err != nil {
		e.logger.Error("collection export failed", "collection", name, "err", err)
		result.Error = err.Error()
		return result
	}

	if err := shared.WriteJSONFile(filepath.Join(outputDir, name+".json"), records); err != nil {
		e.logger.Error("collection snapshot write failed", "collection", name, "err", err)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Count = len(records)
	e.logger.Info("exported collection", "collection", name, "count", result.Count)
	return result
}

// exportRegistry enumerates the auth provider's user registry through its
// paged listing API and writes it in the same flat collection shape.
func (e *Exporter) exportRegistry(ctx context.Context, outputDir string) CollectionExport {
	result := CollectionExport{Collection: SourceAuthUsers}

	users, err := e.identity.ListUsers(ctx)
	if err != nil {
		e.logger.Error("registry export failed", "err", err)
		result.Error = err.Error()
		return result
	}

	if err := shared.WriteJSONFile(filepath.Join(outputDir, SourceAuthUsers+".json"), users); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Count = len(users)
	e.logger.Info("exported collection", "collection", SourceAuthUsers, "count", result.Count)
	return result
}

// exportStorage enumerates each configured bucket. One bucket's failure
// degrades to a warning so the remaining buckets still make it into the
// snapshot.
func (e *Exporter) exportStorage(ctx context.Context, progress chan<- ProgressUpdate, step, totalSteps int, opts ExportOpts) CollectionExport {
	result := CollectionExport{Collection: SourceStorageFiles}

	objects := make([]any, 0)
	for i, bucket := range opts.Buckets {
		sendProgress(progress, exportStorageUpdate(step+i+1, totalSteps, bucket))

		listed, err := e.blobs.ListBucket(ctx, bucket)
		if err != nil {
			e.logger.Warn("bucket enumeration failed", "bucket", bucket, "err", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("bucket %s: %v", bucket, err))
			continue
		}
		for _, obj := range listed {
			objects = append(objects, obj)
		}
	}

	if len(opts.Buckets) > 0 && len(result.Warnings) == len(opts.Buckets) {
		result.Error = "all bucket enumerations failed"
		return result
	}

	if err := shared.WriteJSONFile(filepath.Join(opts.OutputDir, SourceStorageFiles+".json"), objects); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Count = len(objects)
	e.logger.Info("exported collection", "collection", SourceStorageFiles, "count", result.Count, "buckets", len(opts.Buckets))
	return result
}
