// Package discover locates git working trees below a root directory.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// gitDirName is the metadata directory that marks a working-tree root.
const gitDirName = ".git"

// Options configures a discovery walk.
type Options struct {
	// MaxDepth bounds recursion below the root. Depth 0 means only the root
	// itself is checked for a .git directory.
	MaxDepth int

	// SkipDirs are directory names never descended into. The root itself is
	// always checked even if its name matches.
	SkipDirs []string
}

// Repos walks root up to opts.MaxDepth levels deep and returns the absolute
// paths of all git working-tree roots found, deduplicated and sorted
// lexicographically. An unreadable root is an error; finding nothing is not.
// Repositories are not searched for nested repositories beneath them.
func Repos(root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, name := range opts.SkipDirs {
		skip[name] = true
	}

	seen := make(map[string]bool)
	var repos []string
	walk(absRoot, 0, opts.MaxDepth, skip, seen, &repos)

	sort.Strings(repos)
	return repos, nil
}

// walk checks dir for a .git directory and, below the depth bound, recurses
// into its subdirectories. Unreadable subdirectories are skipped; only the
// root is allowed to fail the whole discovery.
func walk(dir string, depth, maxDepth int, skip, seen map[string]bool, repos *[]string) {
	if isRepo(dir) {
		if !seen[dir] {
			seen[dir] = true
			*repos = append(*repos, dir)
		}
		// Nested working trees (e.g. vendored checkouts) are the inner
		// repository's own problem.
		return
	}

	if depth >= maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || skip[name] {
			continue
		}
		walk(filepath.Join(dir, name), depth+1, maxDepth, skip, seen, repos)
	}
}

// isRepo reports whether dir contains a .git metadata directory.
func isRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, gitDirName))
	return err == nil && info.IsDir()
}
