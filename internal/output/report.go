package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/driftscan/internal/scan"
)

// Renderer streams scan reports as styled status lines. It is pure
// presentation: the severity of every finding is decided by the scanner.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Marker returns the styled severity indicator for a finding.
func Marker(sev scan.Severity) string {
	switch sev {
	case scan.SeveritySuccess:
		return StyleSuccess.Render("✓")
	case scan.SeverityWarning:
		return StyleWarning.Render("!")
	case scan.SeverityError:
		return StyleError.Render("✗")
	default:
		return StyleMuted.Render("•")
	}
}

// WriteReport prints one repository block: a styled path header followed by
// one marker line per finding, then a blank line for scanability.
func (r *Renderer) WriteReport(report scan.RepoReport) {
	fmt.Fprintln(r.w, StyleHeader.Render(report.Path))
	for _, f := range report.Findings {
		fmt.Fprintf(r.w, "  %s %s\n", Marker(f.Severity), f.Message)
	}
	fmt.Fprintln(r.w)
}

// WriteSummary prints the end-of-run aggregate.
func (r *Renderer) WriteSummary(sum scan.Summary) {
	fmt.Fprintln(r.w, Section("Summary"))
	fmt.Fprintln(r.w)
	r.summaryLine("Repositories:", sum.Repos)
	r.summaryLine("Clean:", sum.Clean)
	r.summaryLine("Need attention:", sum.Attention)
	r.summaryLine("Errors:", sum.Errors)
	fmt.Fprintln(r.w)
}

// WriteNoRepos prints the informational zero-result message.
func (r *Renderer) WriteNoRepos(root string, depth int) {
	fmt.Fprintln(r.w, StyleMuted.Render(
		fmt.Sprintf("no git repositories found under %s (depth %d)", root, depth)))
}

func (r *Renderer) summaryLine(label string, value int) {
	fmt.Fprintf(r.w, " %s %s\n",
		StyleLabel.Render(label),
		StyleValue.Render(fmt.Sprintf("%d", value)))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
