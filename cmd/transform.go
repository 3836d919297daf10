package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/wayfarerlabs/portage/internal/pipeline"
	"github.com/wayfarerlabs/portage/internal/report"
)

// Transform reshapes exported snapshots into destination collections.
func (r *Runner) Transform(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if dir := cmd.String("export-dir"); dir != "" {
		config.Migration.ExportDir = dir
	}
	if dir := cmd.String("output"); dir != "" {
		config.Migration.OutputDir = dir
	}

	r.logger.Info("starting transform",
		"export_dir", config.Migration.ExportDir,
		"output_dir", config.Migration.OutputDir)
	r.writePlain("Transforming %s → %s\n", config.Migration.ExportDir, config.Migration.OutputDir)

	progress := make(chan pipeline.ProgressUpdate, 50)
	done := r.watchProgress(progress)

	engine := pipeline.NewTransformer(r.logger)
	summary, err := engine.Run(progress, pipeline.TransformOpts{
		ExportDir: config.Migration.ExportDir,
		OutputDir: config.Migration.OutputDir,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n")
	report.RenderTransform(r.output, summary)
	return nil
}
