package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/driftscan/internal/gitx"
)

// stubRunner is a canned-response gitx.Runner for driving the scanner
// without a git binary.
type stubRunner struct {
	remotes     []string
	remotesErr  error
	fetch       gitx.FetchResult
	branches    []gitx.Branch
	branchesErr error
	remoteRefs  map[string]bool
	aheadBehind map[string][2]int
	current     string
	currentErr  error
	dirty       bool
	dirtyErr    error
}

func (s *stubRunner) Remotes(ctx context.Context) ([]string, error) {
	return s.remotes, s.remotesErr
}

func (s *stubRunner) Fetch(ctx context.Context) gitx.FetchResult {
	return s.fetch
}

func (s *stubRunner) Branches(ctx context.Context) ([]gitx.Branch, error) {
	return s.branches, s.branchesErr
}

func (s *stubRunner) HasRemoteRef(ctx context.Context, upstream string) bool {
	return s.remoteRefs[upstream]
}

func (s *stubRunner) AheadBehind(ctx context.Context, branch, upstream string) (int, int, error) {
	counts, ok := s.aheadBehind[branch]
	if !ok {
		return 0, 0, errors.New("no such branch")
	}
	return counts[0], counts[1], nil
}

func (s *stubRunner) CurrentBranch(ctx context.Context) (string, error) {
	return s.current, s.currentErr
}

func (s *stubRunner) HasUncommittedChanges(ctx context.Context) (bool, error) {
	return s.dirty, s.dirtyErr
}

// runOne scans a single repository backed by the given stub and returns its
// report plus the run summary.
func runOne(t *testing.T, opts Options, stub *stubRunner) (RepoReport, Summary) {
	t.Helper()
	s := New(opts, func(dir string) gitx.Runner { return stub })
	var reports []RepoReport
	sum := s.Run(context.Background(), []string{"/tmp/repo"}, func(r RepoReport) {
		reports = append(reports, r)
	})
	require.Len(t, reports, 1)
	return reports[0], sum
}

func messages(r RepoReport) []string {
	var msgs []string
	for _, f := range r.Findings {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

func TestScan_NoRemoteConfigured(t *testing.T) {
	report, sum := runOne(t, Options{Fetch: true}, &stubRunner{})

	require.Len(t, report.Findings, 1)
	assert.Equal(t, SeverityWarning, report.Findings[0].Severity)
	assert.Equal(t, "no remote configured", report.Findings[0].Message)
	assert.Equal(t, Summary{Repos: 1, Attention: 1}, sum)
}

func TestScan_RemoteInaccessible(t *testing.T) {
	stub := &stubRunner{
		remotes: []string{"origin"},
		fetch: gitx.FetchResult{
			Status: gitx.FetchNotFound,
			Detail: "fatal: repository 'https://example.com/gone.git' not found",
		},
		// Branch data present to prove evaluation stops at the probe.
		branches: []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
	}
	report, sum := runOne(t, Options{Fetch: true}, stub)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, SeverityError, report.Findings[0].Severity)
	assert.Contains(t, report.Findings[0].Message, "remote inaccessible")
	assert.Equal(t, Summary{Repos: 1, Errors: 1}, sum)
}

func TestScan_FetchTimeoutIsDistinctFromFailure(t *testing.T) {
	report, _ := runOne(t, Options{Fetch: true}, &stubRunner{
		remotes: []string{"origin"},
		fetch:   gitx.FetchResult{Status: gitx.FetchTimeout},
	})
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "fetch timed out", report.Findings[0].Message)

	report, _ = runOne(t, Options{Fetch: true}, &stubRunner{
		remotes: []string{"origin"},
		fetch:   gitx.FetchResult{Status: gitx.FetchFailed, Detail: "fatal: unable to access"},
	})
	require.Len(t, report.Findings, 1)
	assert.Contains(t, report.Findings[0].Message, "fetch failed")
}

func TestScan_AheadOnlyNeedsPush(t *testing.T) {
	stub := &stubRunner{
		remotes:     []string{"origin"},
		branches:    []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {3, 0}},
		current:     "main",
	}
	report, _ := runOne(t, Options{Fetch: true}, stub)

	msgs := messages(report)
	require.Len(t, msgs, 2)
	assert.Equal(t, "branch main: needs push, ahead of origin/main by 3 commit(s)", msgs[0])
	assert.Equal(t, SeverityWarning, report.Findings[0].Severity)
	assert.Equal(t, "working tree clean on branch main", msgs[1])
}

func TestScan_BehindOnlyRendersAsSuccess(t *testing.T) {
	// Push-centric framing: behind-only still counts as up to date.
	stub := &stubRunner{
		remotes:     []string{"origin"},
		branches:    []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {0, 4}},
		current:     "main",
	}
	report, sum := runOne(t, Options{Fetch: true}, stub)

	assert.Equal(t, SeveritySuccess, report.Findings[0].Severity)
	assert.Equal(t, "branch main: up to date (4 behind origin/main, nothing to push)",
		report.Findings[0].Message)
	assert.Equal(t, Summary{Repos: 1, Clean: 1}, sum)
}

func TestScan_DivergedBranch(t *testing.T) {
	stub := &stubRunner{
		remotes:     []string{"origin"},
		branches:    []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {2, 5}},
		current:     "main",
	}
	report, _ := runOne(t, Options{Fetch: true}, stub)

	assert.Equal(t, SeverityError, report.Findings[0].Severity)
	assert.Equal(t, "branch main: diverged from origin/main (2 ahead, 5 behind)",
		report.Findings[0].Message)
}

func TestScan_MissingUpstreamRefIsPerBranch(t *testing.T) {
	stub := &stubRunner{
		remotes: []string{"origin"},
		branches: []gitx.Branch{
			{Name: "gone", Upstream: "origin/gone"},
			{Name: "main", Upstream: "origin/main"},
		},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {0, 0}},
		current:     "main",
	}
	report, _ := runOne(t, Options{Fetch: true}, stub)

	msgs := messages(report)
	require.Len(t, msgs, 3)
	assert.Equal(t, "branch gone: upstream ref origin/gone missing", msgs[0])
	assert.Equal(t, SeverityWarning, report.Findings[0].Severity)
	// The next branch was still evaluated.
	assert.Equal(t, "branch main: up to date with origin/main", msgs[1])
}

func TestScan_BranchesWithoutUpstreamCountedOnce(t *testing.T) {
	stub := &stubRunner{
		remotes: []string{"origin"},
		branches: []gitx.Branch{
			{Name: "spike-b"},
			{Name: "spike-a"},
			{Name: "main", Upstream: "origin/main"},
		},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {0, 0}},
		current:     "main",
	}

	report, _ := runOne(t, Options{Fetch: true}, stub)
	assert.Contains(t, messages(report), "2 branch(es) without upstream")

	report, _ = runOne(t, Options{Fetch: true, ListNoUpstream: true}, stub)
	assert.Contains(t, messages(report), "2 branch(es) without upstream: spike-a, spike-b")
}

func TestScan_DirtyWorkingTreeNamesBranch(t *testing.T) {
	stub := &stubRunner{
		remotes:     []string{"origin"},
		branches:    []gitx.Branch{{Name: "feature-x", Upstream: "origin/feature-x"}},
		remoteRefs:  map[string]bool{"origin/feature-x": true},
		aheadBehind: map[string][2]int{"feature-x": {0, 0}},
		current:     "feature-x",
		dirty:       true,
	}
	report, _ := runOne(t, Options{Fetch: true}, stub)

	msgs := messages(report)
	require.Len(t, msgs, 2)
	assert.Equal(t, "uncommitted changes on branch feature-x", msgs[1])
	assert.Equal(t, SeverityWarning, report.Findings[1].Severity)
}

func TestScan_DetachedHead(t *testing.T) {
	stub := &stubRunner{
		remotes: []string{"origin"},
		current: "HEAD",
	}
	report, _ := runOne(t, Options{Fetch: false}, stub)

	msgs := messages(report)
	require.NotEmpty(t, msgs)
	assert.Equal(t, "detached HEAD, working tree not evaluated", msgs[len(msgs)-1])
}

func TestScan_NoFetchSkipsProbeButEvaluates(t *testing.T) {
	stub := &stubRunner{
		remotes: []string{"origin"},
		// A fetch would fail loudly; with Fetch disabled it must never run.
		fetch:       gitx.FetchResult{Status: gitx.FetchNotFound, Detail: "boom"},
		branches:    []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {0, 0}},
		current:     "main",
	}
	report, sum := runOne(t, Options{Fetch: false}, stub)

	assert.Equal(t, "branch main: up to date with origin/main", report.Findings[0].Message)
	assert.Equal(t, Summary{Repos: 1, Clean: 1}, sum)
}

func TestScan_RepoFailureDoesNotAbortRun(t *testing.T) {
	stubs := map[string]*stubRunner{
		"/tmp/broken": {remotesErr: errors.New("permission denied")},
		"/tmp/fine": {
			remotes:     []string{"origin"},
			branches:    []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
			remoteRefs:  map[string]bool{"origin/main": true},
			aheadBehind: map[string][2]int{"main": {0, 0}},
			current:     "main",
		},
	}
	s := New(Options{Fetch: true}, func(dir string) gitx.Runner { return stubs[dir] })

	var reports []RepoReport
	sum := s.Run(context.Background(), []string{"/tmp/broken", "/tmp/fine"}, func(r RepoReport) {
		reports = append(reports, r)
	})

	require.Len(t, reports, 2)
	assert.Equal(t, SeverityError, reports[0].MaxSeverity())
	assert.Contains(t, reports[0].Findings[0].Message, "permission denied")
	assert.Equal(t, SeveritySuccess, reports[1].MaxSeverity())
	assert.Equal(t, Summary{Repos: 2, Clean: 1, Errors: 1}, sum)
}

func TestScan_Idempotent(t *testing.T) {
	stub := &stubRunner{
		remotes:     []string{"origin"},
		branches:    []gitx.Branch{{Name: "main", Upstream: "origin/main"}},
		remoteRefs:  map[string]bool{"origin/main": true},
		aheadBehind: map[string][2]int{"main": {1, 2}},
		current:     "main",
	}
	first, _ := runOne(t, Options{Fetch: true}, stub)
	second, _ := runOne(t, Options{Fetch: true}, stub)
	assert.Equal(t, first, second)
}
