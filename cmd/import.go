package main

import (
	"context"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/wayfarerlabs/portage/internal/pipeline"
	"github.com/wayfarerlabs/portage/internal/report"
	"github.com/wayfarerlabs/portage/internal/services"
)

// Import persists transformed collections into the destination store.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if dir := cmd.String("input"); dir != "" {
		config.Migration.OutputDir = dir
	}
	if size := cmd.Int("batch-size"); size > 0 {
		config.Migration.BatchSize = int(size)
	}
	if cmd.Bool("dry-run") {
		config.Migration.DryRun = true
	}
	if cmd.Bool("upsert") {
		config.Migration.Upsert = true
	}

	var store services.DocumentStore
	if !config.Migration.DryRun {
		if err := config.Validate(false, true); err != nil {
			return err
		}
		app, err := services.NewFirebaseApp(ctx, config.Destination.ProjectID, config.Destination.CredentialsFile)
		if err != nil {
			return err
		}
		firestore, err := services.NewFirestoreStore(ctx, app)
		if err != nil {
			return err
		}
		defer firestore.Close()
		store = firestore
	}

	var limiter *rate.Limiter
	if config.Migration.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Migration.RateLimit), 1)
	}

	r.logger.Info("starting import",
		"input", config.Migration.OutputDir,
		"batch_size", config.Migration.BatchSize,
		"dry_run", config.Migration.DryRun,
		"upsert", config.Migration.Upsert)
	if config.Migration.DryRun {
		r.writePlain("Dry run: counting importable records, no writes will be issued\n")
	} else {
		r.writePlain("Importing transformed collections from %s\n", config.Migration.OutputDir)
	}

	progress := make(chan pipeline.ProgressUpdate, 50)
	done := r.watchProgress(progress)

	engine := pipeline.NewImporter(store, r.logger)
	summary, err := engine.Run(ctx, progress, pipeline.ImportOpts{
		InputDir:  config.Migration.OutputDir,
		BatchSize: config.Migration.BatchSize,
		DryRun:    config.Migration.DryRun,
		Upsert:    config.Migration.Upsert,
		Limiter:   limiter,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n")
	report.RenderImport(r.output, summary)
	return nil
}
