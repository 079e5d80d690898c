// Package gitx wraps the git binary for the repository inspections driftscan
// performs. Every operation is bound to a single repository directory and a
// context; the process working directory is never changed, so no repository
// can leak directory state into the next one scanned.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Branch is a local branch and its configured upstream, if any.
type Branch struct {
	// Name is the short branch name, e.g. "main".
	Name string

	// Upstream is the configured upstream in "remote/branch" form,
	// empty when the branch has no upstream.
	Upstream string
}

// Runner defines the git operations the scanner needs against one repository.
// All operations use context for cancellation.
type Runner interface {
	// Remotes returns the names of configured remotes.
	Remotes(ctx context.Context) ([]string, error)

	// Fetch fetches all remotes with pruning and classifies the outcome.
	Fetch(ctx context.Context) FetchResult

	// Branches lists local branches with their configured upstream short names.
	Branches(ctx context.Context) ([]Branch, error)

	// HasRemoteRef reports whether the remote-tracking ref for the given
	// "remote/branch" upstream exists locally.
	HasRemoteRef(ctx context.Context, upstream string) bool

	// AheadBehind returns the commit counts reachable only from the branch
	// tip (ahead) and only from the upstream tip (behind).
	AheadBehind(ctx context.Context, branch, upstream string) (ahead, behind int, err error)

	// CurrentBranch returns the currently checked-out branch name, or "HEAD"
	// when the repository is in detached HEAD state.
	CurrentBranch(ctx context.Context) (string, error)

	// HasUncommittedChanges reports whether tracked files differ from the
	// last commit. Untracked files are ignored.
	HasUncommittedChanges(ctx context.Context) (bool, error)
}

// Options configures a Git runner.
type Options struct {
	// FetchTimeout bounds the Fetch operation. Zero means no bound.
	FetchTimeout time.Duration

	// CommandTimeout bounds every other operation. Zero means no bound.
	CommandTimeout time.Duration
}

// Git runs the git binary against one repository directory.
type Git struct {
	dir  string
	opts Options
}

// New returns a Git runner bound to the repository at dir.
func New(dir string, opts Options) *Git {
	return &Git{dir: dir, opts: opts}
}

// run executes git with the given arguments in the repository directory,
// returning combined stdout+stderr. The timeout, if positive, is layered on
// top of the caller's context.
func (g *Git) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return string(out), ctx.Err()
	}
	return string(out), err
}

// Remotes implements Runner.
func (g *Git) Remotes(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, g.opts.CommandTimeout, "remote")
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// Fetch implements Runner. The raw git outcome is folded through
// ClassifyFetch so callers only ever see the classified result.
func (g *Git) Fetch(ctx context.Context) FetchResult {
	out, err := g.run(ctx, g.opts.FetchTimeout, "fetch", "--all", "--prune", "--quiet")
	return ClassifyFetch(out, err)
}

// Branches implements Runner.
func (g *Git) Branches(ctx context.Context) ([]Branch, error) {
	out, err := g.run(ctx, g.opts.CommandTimeout,
		"for-each-ref", "refs/heads", "--format=%(refname:short)\t%(upstream:short)")
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	return parseBranches(out), nil
}

// HasRemoteRef implements Runner.
func (g *Git) HasRemoteRef(ctx context.Context, upstream string) bool {
	_, err := g.run(ctx, g.opts.CommandTimeout,
		"rev-parse", "--verify", "--quiet", "refs/remotes/"+upstream)
	return err == nil
}

// AheadBehind implements Runner.
func (g *Git) AheadBehind(ctx context.Context, branch, upstream string) (int, int, error) {
	out, err := g.run(ctx, g.opts.CommandTimeout,
		"rev-list", "--left-right", "--count", branch+"..."+upstream)
	if err != nil {
		return 0, 0, fmt.Errorf("counting %s...%s: %w", branch, upstream, err)
	}
	return parseAheadBehind(out)
}

// CurrentBranch implements Runner.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, g.opts.CommandTimeout, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolving current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HasUncommittedChanges implements Runner.
func (g *Git) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, g.opts.CommandTimeout,
		"status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, fmt.Errorf("querying working tree status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// parseBranches parses for-each-ref output in "<name>\t<upstream>" form.
func parseBranches(out string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, upstream, _ := strings.Cut(line, "\t")
		if name == "" {
			continue
		}
		branches = append(branches, Branch{Name: name, Upstream: upstream})
	}
	return branches
}

// parseAheadBehind parses rev-list --left-right --count output: "<ahead>\t<behind>".
func parseAheadBehind(out string) (int, int, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", strings.TrimSpace(out))
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing ahead count: %w", err)
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing behind count: %w", err)
	}
	return ahead, behind, nil
}
