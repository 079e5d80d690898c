package scan

import (
	"context"
	"sort"
	"strings"

	"github.com/blackwell-systems/driftscan/internal/gitx"
)

// Options configures a Scanner.
type Options struct {
	// Fetch controls whether remotes are fetched (with pruning) before
	// branches are evaluated. When false, evaluation runs against the local
	// remote-tracking refs as-is.
	Fetch bool

	// ListNoUpstream enumerates the names of branches lacking an upstream
	// in addition to the count, which is always reported.
	ListNoUpstream bool
}

// RunnerFactory builds a git runner bound to one repository directory.
// Injected so the scanner is testable without a git binary.
type RunnerFactory func(dir string) gitx.Runner

// Scanner walks a list of repositories and produces one RepoReport each.
type Scanner struct {
	opts      Options
	newRunner RunnerFactory
}

// New creates a Scanner.
func New(opts Options, newRunner RunnerFactory) *Scanner {
	return &Scanner{opts: opts, newRunner: newRunner}
}

// Run evaluates each repository in order, emitting its report as soon as it
// is complete, and returns the aggregated summary. Processing is strictly
// sequential: one repository is fully evaluated before the next begins, and
// a failure in one never aborts the run.
func (s *Scanner) Run(ctx context.Context, repos []string, emit func(RepoReport)) Summary {
	var sum Summary
	for _, dir := range repos {
		report := s.scanRepo(ctx, dir)
		sum.Repos++
		switch report.MaxSeverity() {
		case SeverityError:
			sum.Errors++
		case SeverityWarning:
			sum.Attention++
		default:
			sum.Clean++
		}
		if emit != nil {
			emit(report)
		}
	}
	return sum
}

// scanRepo evaluates one repository: remote probe, branch loop, working tree.
// Every failure is contained here as a finding; nothing escapes to abort the
// run.
func (s *Scanner) scanRepo(ctx context.Context, dir string) RepoReport {
	report := RepoReport{Path: dir}
	r := s.newRunner(dir)

	// Remote probe gates everything else for this repository.
	remotes, err := r.Remotes(ctx)
	if err != nil {
		report.add(SeverityError, "inspecting remotes: %v", err)
		return report
	}
	if len(remotes) == 0 {
		report.add(SeverityWarning, "no remote configured")
		return report
	}

	if s.opts.Fetch {
		switch res := r.Fetch(ctx); res.Status {
		case gitx.FetchOK:
		case gitx.FetchNotFound:
			report.add(SeverityError, "remote inaccessible: %s", res.Detail)
			return report
		case gitx.FetchTimeout:
			report.add(SeverityError, "fetch timed out")
			return report
		default:
			report.add(SeverityError, "fetch failed: %s", res.Detail)
			return report
		}
	}

	s.evaluateBranches(ctx, r, &report)
	s.evaluateWorkingTree(ctx, r, &report)
	return report
}

// evaluateBranches emits exactly one classification finding per branch with
// an upstream, plus a single count of branches lacking one.
func (s *Scanner) evaluateBranches(ctx context.Context, r gitx.Runner, report *RepoReport) {
	branches, err := r.Branches(ctx)
	if err != nil {
		report.add(SeverityError, "listing branches: %v", err)
		return
	}

	var noUpstream []string
	for _, b := range branches {
		if b.Upstream == "" {
			noUpstream = append(noUpstream, b.Name)
			continue
		}
		s.evaluateBranch(ctx, r, report, b)
	}

	if len(noUpstream) > 0 {
		sort.Strings(noUpstream)
		if s.opts.ListNoUpstream {
			report.add(SeverityInfo, "%d branch(es) without upstream: %s",
				len(noUpstream), strings.Join(noUpstream, ", "))
		} else {
			report.add(SeverityInfo, "%d branch(es) without upstream", len(noUpstream))
		}
	}
}

// evaluateBranch classifies one branch against its upstream. Failures are
// per-branch: the loop in evaluateBranches always moves on.
func (s *Scanner) evaluateBranch(ctx context.Context, r gitx.Runner, report *RepoReport, b gitx.Branch) {
	if !r.HasRemoteRef(ctx, b.Upstream) {
		report.add(SeverityWarning, "branch %s: upstream ref %s missing", b.Name, b.Upstream)
		return
	}

	ahead, behind, err := r.AheadBehind(ctx, b.Name, b.Upstream)
	if err != nil {
		report.add(SeverityError, "branch %s: %v", b.Name, err)
		return
	}

	d := Divergence{Ahead: ahead, Behind: behind}
	switch d.Classify() {
	case UpToDate:
		report.add(SeveritySuccess, "branch %s: up to date with %s", b.Name, b.Upstream)
	case BehindOnly:
		// Push-centric framing: nothing local to push, so this counts as up
		// to date even though the branch trails its upstream.
		report.add(SeveritySuccess, "branch %s: up to date (%d behind %s, nothing to push)",
			b.Name, behind, b.Upstream)
	case AheadOnly:
		report.add(SeverityWarning, "branch %s: needs push, ahead of %s by %d commit(s)",
			b.Name, b.Upstream, ahead)
	case Diverged:
		report.add(SeverityError, "branch %s: diverged from %s (%d ahead, %d behind)",
			b.Name, b.Upstream, ahead, behind)
	}
}

// evaluateWorkingTree reports clean vs. dirty for the checked-out branch,
// considering tracked files only.
func (s *Scanner) evaluateWorkingTree(ctx context.Context, r gitx.Runner, report *RepoReport) {
	current, err := r.CurrentBranch(ctx)
	if err != nil {
		report.add(SeverityError, "resolving current branch: %v", err)
		return
	}
	if current == "HEAD" {
		report.add(SeverityInfo, "detached HEAD, working tree not evaluated")
		return
	}

	dirty, err := r.HasUncommittedChanges(ctx)
	if err != nil {
		report.add(SeverityError, "querying working tree: %v", err)
		return
	}
	if dirty {
		report.add(SeverityWarning, "uncommitted changes on branch %s", current)
	} else {
		report.add(SeveritySuccess, "working tree clean on branch %s", current)
	}
}
