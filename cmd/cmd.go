// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand writes a starter configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Where to write the config file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// exportCommand snapshots the source systems
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all source collections, the auth registry, and blob storage to JSON snapshots",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for snapshots (overrides config)",
			},
		},
		Action: r.Export,
	}
}

// transformCommand reshapes exported snapshots
func transformCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transform",
		Usage: "Transform exported snapshots into destination-shaped collections",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "Directory holding export snapshots (overrides config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for transformed collections (overrides config)",
			},
		},
		Action: r.Transform,
	}
}

// importCommand persists transformed collections
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import transformed collections into the destination store",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Directory holding transformed collections (overrides config)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Records per write batch",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Iterate and count without issuing writes",
			},
			&cli.BoolFlag{
				Name:  "upsert",
				Usage: "Overwrite existing documents by preserved identifier instead of failing on them",
			},
		},
		Action: r.Import,
	}
}

// validateCommand compares export, transformed, and live destination data
func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate counts, fields, and relationships across all three data sources",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "Directory holding export snapshots (overrides config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory holding transformed collections (overrides config)",
			},
			&cli.IntFlag{
				Name:  "sample",
				Usage: "Spot-check sample size per collection",
			},
		},
		Action: r.Validate,
	}
}
