// Package scan evaluates discovered repositories and produces the run report:
// remote reachability, per-branch divergence from upstream, and working-tree
// cleanliness.
package scan

import "fmt"

// Severity ranks a finding for presentation.
type Severity int

const (
	// SeverityInfo is neutral information, e.g. branches without an upstream.
	SeverityInfo Severity = iota

	// SeveritySuccess marks a healthy state: up to date, clean tree.
	SeveritySuccess

	// SeverityWarning marks something worth a look but not broken.
	SeverityWarning

	// SeverityError marks an unreachable remote, a diverged branch, or an
	// unexpected failure inspecting the repository.
	SeverityError
)

// Finding is a single classified observation about a repository.
type Finding struct {
	Severity Severity
	Message  string
}

// RepoReport collects all findings for one repository, in emission order.
type RepoReport struct {
	Path     string
	Findings []Finding
}

// add appends a finding.
func (r *RepoReport) add(sev Severity, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// MaxSeverity returns the highest severity among the findings, treating
// success as lower than warning. Reports with no findings rank as info.
func (r *RepoReport) MaxSeverity() Severity {
	highest := SeverityInfo
	for _, f := range r.Findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest
}

// Summary aggregates one run across repositories.
type Summary struct {
	// Repos is the number of repositories evaluated.
	Repos int

	// Clean is the number whose worst finding was success or info.
	Clean int

	// Attention is the number whose worst finding was a warning.
	Attention int

	// Errors is the number with at least one error finding.
	Errors int
}

// Classification is the divergence relationship of a branch to its upstream.
type Classification int

const (
	// UpToDate: ahead=0, behind=0.
	UpToDate Classification = iota

	// BehindOnly: behind>0, ahead=0 — nothing local to push.
	BehindOnly

	// AheadOnly: ahead>0, behind=0 — needs push.
	AheadOnly

	// Diverged: both positive — histories have split.
	Diverged
)

// Divergence holds symmetric ahead/behind commit counts between a local
// branch tip and its upstream tip.
type Divergence struct {
	Ahead  int
	Behind int
}

// Classify maps the counts to exactly one Classification.
func (d Divergence) Classify() Classification {
	switch {
	case d.Ahead == 0 && d.Behind == 0:
		return UpToDate
	case d.Ahead == 0:
		return BehindOnly
	case d.Behind == 0:
		return AheadOnly
	default:
		return Diverged
	}
}
