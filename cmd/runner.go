package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/wayfarerlabs/portage/internal/pipeline"
	"github.com/wayfarerlabs/portage/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stage clients (source pool, identity, storage, destination store) are
// initialized inside each action, because every stage runs as its own
// process and owns its clients for the process lifetime.
type Runner struct {
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{logger: opts.Logger, output: opts.Output}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, exportCommand, transformCommand, importCommand, validateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration for a command: the file named by
// the --config flag, overlaid with environment variables. A missing file
// falls back to embedded defaults plus the environment.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if config, err := shared.LoadConfig(path); err == nil {
		return config
	}
	r.logger.Debug("config file not loaded, using defaults with environment overlay", "path", path)
	config := shared.DefaultConfig()
	config.ApplyEnv()
	return config
}

// watchProgress prints engine progress updates until the channel closes.
// The returned channel closes once every update has been written, so
// callers can close the progress channel and wait before rendering the
// final summary to the same writer.
func (r *Runner) watchProgress(progress <-chan pipeline.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("  %s\n", update.Message)
		}
	}()
	return done
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
