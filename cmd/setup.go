package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/wayfarerlabs/portage/internal/shared"
)

// Setup writes the starter configuration file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.writePlain("Wrote starter configuration to %s\n", path)
	r.writePlain("Fill in source and destination credentials before running a stage.\n")
	return nil
}
