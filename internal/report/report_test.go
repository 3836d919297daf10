package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wayfarerlabs/portage/internal/pipeline"
)

func TestRenderExport(t *testing.T) {
	var buf bytes.Buffer
	RenderExport(&buf, &pipeline.ExportSummary{
		TotalCollections:      2,
		SuccessfulCollections: 1,
		TotalRecords:          5,
		Results: []pipeline.CollectionExport{
			{Collection: "trips", Success: true, Count: 5},
			{Collection: "profiles", Error: "connection reset"},
		},
	})

	output := buf.String()
	if !strings.Contains(output, "Export Summary") {
		t.Error("Output missing title")
	}
	if !strings.Contains(output, "trips") || !strings.Contains(output, "5 records") {
		t.Errorf("Output missing collection line: %s", output)
	}
	if !strings.Contains(output, "connection reset") {
		t.Error("Output missing error detail")
	}
	if !strings.Contains(output, "1/2 collections exported") {
		t.Errorf("Output missing totals: %s", output)
	}
}

func TestRenderImport(t *testing.T) {
	t.Run("LiveRun", func(t *testing.T) {
		var buf bytes.Buffer
		RenderImport(&buf, &pipeline.ImportSummary{
			TotalRecords:  10,
			TotalImported: 8,
			TotalFailed:   1,
			TotalFiltered: 1,
			Results: []pipeline.CollectionImport{
				{Collection: "users", TotalRecords: 10, SuccessfulImports: 8, FailedImports: 1, FilteredRecords: 1, Errors: []string{"deadline exceeded"}},
			},
			RequiredActions: []string{"Force password resets before cutover."},
		})

		output := buf.String()
		if !strings.Contains(output, "8/10 imported") {
			t.Errorf("Output missing per-collection counts: %s", output)
		}
		if !strings.Contains(output, "1 failed") || !strings.Contains(output, "1 filtered") {
			t.Errorf("Output missing failure and filter counts: %s", output)
		}
		if !strings.Contains(output, "deadline exceeded") {
			t.Error("Output missing record error")
		}
		if !strings.Contains(output, "Required manual actions") {
			t.Error("Output missing required actions section")
		}
	})

	t.Run("DryRun", func(t *testing.T) {
		var buf bytes.Buffer
		RenderImport(&buf, &pipeline.ImportSummary{DryRun: true})
		if !strings.Contains(buf.String(), "dry run") {
			t.Error("Dry-run output should be labelled")
		}
	})
}

func TestRenderValidation(t *testing.T) {
	t.Run("Passed", func(t *testing.T) {
		var buf bytes.Buffer
		RenderValidation(&buf, &pipeline.ValidationReport{
			Passed: true,
			Results: []pipeline.CollectionValidation{
				{Collection: "users", ExportedCount: 2, TransformedCount: 2, DestinationCount: 2},
			},
		})
		if !strings.Contains(buf.String(), "VALIDATION PASSED") {
			t.Errorf("Output missing pass verdict: %s", buf.String())
		}
	})

	t.Run("Failed", func(t *testing.T) {
		var buf bytes.Buffer
		RenderValidation(&buf, &pipeline.ValidationReport{
			Results: []pipeline.CollectionValidation{
				{Collection: "trips", TransformedCount: 50, DestinationCount: 48, MissingRecords: 2},
			},
			CriticalIssues: []pipeline.Finding{
				{Severity: pipeline.SeverityCritical, Collection: "trips", Message: "2 records missing from destination"},
			},
		})

		output := buf.String()
		if !strings.Contains(output, "VALIDATION FAILED") {
			t.Error("Output missing fail verdict")
		}
		if !strings.Contains(output, "missing=2") {
			t.Errorf("Output missing shortfall marker: %s", output)
		}
		if !strings.Contains(output, "2 records missing from destination") {
			t.Error("Output missing critical finding")
		}
	})
}
