// package report renders stage summaries for interactive operators.
//
// Every stage also persists the same facts as a JSON file; this package
// only covers the human-readable console side.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/wayfarerlabs/portage/internal/pipeline"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func mark(ok bool) string {
	if ok {
		return styles.ok.Render("✓")
	}
	return styles.err.Render("✗")
}

// RenderExport writes the human-readable export summary.
func RenderExport(w io.Writer, s *pipeline.ExportSummary) {
	fmt.Fprintln(w, styles.title.Render("Export Summary"))
	for _, res := range s.Results {
		fmt.Fprintf(w, "  %s %-16s %d records\n", mark(res.Success), res.Collection, res.Count)
		if res.Error != "" {
			fmt.Fprintf(w, "      %s\n", styles.err.Render(res.Error))
		}
		for _, warning := range res.Warnings {
			fmt.Fprintf(w, "      %s\n", styles.warn.Render(warning))
		}
	}
	fmt.Fprintf(w, "\n%d/%d collections exported, %d records total\n",
		s.SuccessfulCollections, s.TotalCollections, s.TotalRecords)
}

// RenderTransform writes the human-readable transform summary.
func RenderTransform(w io.Writer, s *pipeline.TransformSummary) {
	fmt.Fprintln(w, styles.title.Render("Transform Summary"))
	for _, res := range s.Results {
		fmt.Fprintf(w, "  %s %-16s %d → %d records\n",
			mark(res.OriginalCount == res.TransformedCount && len(res.Issues) == 0),
			res.Collection, res.OriginalCount, res.TransformedCount)
		for _, issue := range res.Issues {
			fmt.Fprintf(w, "      %s\n", styles.warn.Render(issue))
		}
	}
	fmt.Fprintf(w, "\n%d records in, %d records out\n", s.TotalOriginal, s.TotalTransformed)
	if len(s.IntegrityIssues) > 0 {
		fmt.Fprintf(w, "%s\n", styles.warn.Render(fmt.Sprintf("%d integrity issues recorded for validation", len(s.IntegrityIssues))))
	}
}

// RenderImport writes the human-readable import summary.
func RenderImport(w io.Writer, s *pipeline.ImportSummary) {
	title := "Import Summary"
	if s.DryRun {
		title = "Import Summary (dry run, no writes issued)"
	}
	fmt.Fprintln(w, styles.title.Render(title))
	for _, res := range s.Results {
		fmt.Fprintf(w, "  %s %-16s %d/%d imported", mark(res.Success), res.Collection, res.SuccessfulImports, res.TotalRecords)
		if res.FilteredRecords > 0 {
			fmt.Fprintf(w, ", %d filtered", res.FilteredRecords)
		}
		if res.FailedImports > 0 {
			fmt.Fprintf(w, ", %s", styles.err.Render(fmt.Sprintf("%d failed", res.FailedImports)))
		}
		fmt.Fprintln(w)
		for _, e := range res.Errors {
			fmt.Fprintf(w, "      %s\n", styles.err.Render(e))
		}
	}
	fmt.Fprintf(w, "\n%d imported, %d failed, %d filtered of %d records\n",
		s.TotalImported, s.TotalFailed, s.TotalFiltered, s.TotalRecords)
	if len(s.RequiredActions) > 0 {
		fmt.Fprintln(w, styles.warn.Render("Required manual actions:"))
		for _, action := range s.RequiredActions {
			fmt.Fprintf(w, "  - %s\n", action)
		}
	}
}

// RenderValidation writes the human-readable validation report.
func RenderValidation(w io.Writer, r *pipeline.ValidationReport) {
	fmt.Fprintln(w, styles.title.Render("Validation Report"))
	for _, res := range r.Results {
		fmt.Fprintf(w, "  %s %-16s exported=%d transformed=%d destination=%d",
			mark(res.MissingRecords == 0 && res.ExtraRecords == 0 && res.FieldMismatches == 0 && res.RelationshipIssues == 0),
			res.Collection, res.ExportedCount, res.TransformedCount, res.DestinationCount)
		if res.MissingRecords > 0 {
			fmt.Fprintf(w, " %s", styles.err.Render(fmt.Sprintf("missing=%d", res.MissingRecords)))
		}
		if res.ExtraRecords > 0 {
			fmt.Fprintf(w, " %s", styles.err.Render(fmt.Sprintf("extra=%d", res.ExtraRecords)))
		}
		fmt.Fprintln(w)
	}

	if len(r.CriticalIssues) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.err.Render(fmt.Sprintf("%d critical issues", len(r.CriticalIssues))))
		for _, finding := range r.CriticalIssues {
			fmt.Fprintf(w, "  - [%s] %s\n", finding.Collection, finding.Message)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.warn.Render(fmt.Sprintf("%d warnings", len(r.Warnings))))
		for _, finding := range r.Warnings {
			fmt.Fprintf(w, "  - [%s] %s\n", finding.Collection, finding.Message)
		}
	}

	fmt.Fprintln(w)
	if r.Passed {
		fmt.Fprintln(w, styles.ok.Render("VALIDATION PASSED"))
	} else {
		fmt.Fprintln(w, styles.err.Render("VALIDATION FAILED"))
	}
	fmt.Fprintln(w, styles.help.Render("Full report written to validation_report.json"))
}
