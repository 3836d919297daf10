package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/wayfarerlabs/portage/internal/pipeline"
	"github.com/wayfarerlabs/portage/internal/report"
	"github.com/wayfarerlabs/portage/internal/services"
)

// Export snapshots every source collection into the export directory.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if dir := cmd.String("output"); dir != "" {
		config.Migration.ExportDir = dir
	}
	if err := config.Validate(true, false); err != nil {
		return err
	}

	source, err := services.NewPostgresStore(ctx, config.Source.DatabaseURL, config.Source.ServiceKey)
	if err != nil {
		return err
	}
	defer source.Close()

	app, err := services.NewFirebaseApp(ctx, config.Identity.ProjectID, config.Identity.CredentialsFile)
	if err != nil {
		return err
	}
	identity, err := services.NewFirebaseIdentity(ctx, app)
	if err != nil {
		return err
	}
	blobs, err := services.NewCloudBlobStore(ctx, config.StorageCredentials())
	if err != nil {
		return err
	}

	r.logger.Info("starting export", "output", config.Migration.ExportDir, "buckets", len(config.Storage.Buckets))
	r.writePlain("Exporting source data to %s\n", config.Migration.ExportDir)

	progress := make(chan pipeline.ProgressUpdate, 50)
	done := r.watchProgress(progress)

	engine := pipeline.NewExporter(source, identity, blobs, r.logger)
	summary, err := engine.Run(ctx, progress, pipeline.ExportOpts{
		OutputDir: config.Migration.ExportDir,
		Buckets:   config.Storage.Buckets,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n")
	report.RenderExport(r.output, summary)
	return nil
}
