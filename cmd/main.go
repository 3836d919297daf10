package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wayfarerlabs/portage/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	// Credentials commonly live in a local .env during migration rehearsals.
	_ = godotenv.Load()

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "portage",
		Usage:    "Migrate the travel-concierge dataset into the document CMS",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrValidationFailed) {
			logger.Error("validation failed", "err", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
