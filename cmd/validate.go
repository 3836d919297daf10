package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wayfarerlabs/portage/internal/pipeline"
	"github.com/wayfarerlabs/portage/internal/report"
	"github.com/wayfarerlabs/portage/internal/services"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// Validate compares the destination store against the export and
// transform artifacts. A failed validation exits non-zero so scripted
// runs can gate the cutover on it.
func (r *Runner) Validate(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if dir := cmd.String("export-dir"); dir != "" {
		config.Migration.ExportDir = dir
	}
	if dir := cmd.String("output"); dir != "" {
		config.Migration.OutputDir = dir
	}
	if sample := cmd.Int("sample"); sample > 0 {
		config.Migration.SampleSize = int(sample)
	}

	if err := config.Validate(false, true); err != nil {
		return err
	}

	app, err := services.NewFirebaseApp(ctx, config.Destination.ProjectID, config.Destination.CredentialsFile)
	if err != nil {
		return err
	}
	store, err := services.NewFirestoreStore(ctx, app)
	if err != nil {
		return err
	}
	defer store.Close()

	r.logger.Info("starting validation",
		"export_dir", config.Migration.ExportDir,
		"output_dir", config.Migration.OutputDir,
		"sample_size", config.Migration.SampleSize)
	r.writePlain("Validating destination collections against migration artifacts\n")

	progress := make(chan pipeline.ProgressUpdate, 50)
	done := r.watchProgress(progress)

	engine := pipeline.NewValidator(store, r.logger)
	result, err := engine.Run(ctx, progress, pipeline.ValidateOpts{
		ExportDir:  config.Migration.ExportDir,
		OutputDir:  config.Migration.OutputDir,
		SampleSize: config.Migration.SampleSize,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n")
	report.RenderValidation(r.output, result)

	if !result.Passed {
		return fmt.Errorf("%w: %d critical issue(s) found", shared.ErrValidationFailed, len(result.CriticalIssues))
	}
	return nil
}
