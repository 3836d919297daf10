package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wayfarerlabs/portage/internal/shared"
	tu "github.com/wayfarerlabs/portage/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{Logger: logger, Output: output})

			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		commands := runner.register()

		if len(commands) != 5 {
			t.Fatalf("expected 5 commands, got %d", len(commands))
		}

		names := make(map[string]bool, len(commands))
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "export", "transform", "import", "validate"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s\n", "world"); err != nil {
				t.Fatalf("writePlain failed: %v", err)
			}
			if output.String() != "hello world\n" {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("propagates write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("hello\n"); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	app := setupCommand(runner)
	if err := app.Run(context.Background(), []string{"setup", "--path", path}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tu.AssertFileExists(t, path)
	if !strings.Contains(output.String(), path) {
		t.Errorf("output should name the written file, got %q", output.String())
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config should load: %v", err)
	}
	if config.Migration.BatchSize != 100 {
		t.Errorf("generated config should carry defaults, got batch_size %d", config.Migration.BatchSize)
	}

	// Running setup again must refuse to clobber the existing file.
	if err := app.Run(context.Background(), []string{"setup", "--path", path}); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestTransformCommand(t *testing.T) {
	exportDir := t.TempDir()
	outputDir := t.TempDir()

	trips := []map[string]any{{"id": "trip-1", "title": "Alps"}}
	if err := shared.WriteJSONFile(filepath.Join(exportDir, "trips.json"), trips); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	app := transformCommand(runner)
	err := app.Run(context.Background(), []string{
		"transform",
		"--config", filepath.Join(t.TempDir(), "absent.toml"),
		"--export-dir", exportDir,
		"--output", outputDir,
	})
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	tu.AssertFileExists(t, filepath.Join(outputDir, "trips.json"))
	tu.AssertFileExists(t, filepath.Join(outputDir, "transform_summary.json"))
	if !strings.Contains(output.String(), "Transform Summary") {
		t.Errorf("output should include the rendered summary, got %q", output.String())
	}
}
