package gitx

import (
	"context"
	"errors"
	"strings"
)

// FetchStatus classifies the outcome of fetching all remotes.
type FetchStatus int

const (
	// FetchOK means the fetch completed without error.
	FetchOK FetchStatus = iota

	// FetchNotFound means the remote reported that the repository does not
	// exist or could not be read.
	FetchNotFound

	// FetchTimeout means the fetch exceeded its time bound.
	FetchTimeout

	// FetchFailed covers every other non-zero fetch outcome.
	FetchFailed
)

// FetchResult is the classified outcome of a fetch, with a short detail line
// suitable for a report.
type FetchResult struct {
	Status FetchStatus
	Detail string
}

// notFoundPatterns are the diagnostics git emits when the remote repository
// itself is gone or unreadable. Matching is case-insensitive; the exact
// phrasing varies by hosting provider and transport.
var notFoundPatterns = []string{
	"repository not found",
	"could not read from remote repository",
	"does not appear to be a git repository",
}

// ClassifyFetch maps raw `git fetch` output and its error to a FetchResult.
// This is the single place the textual-diagnostic heuristic lives; it is a
// heuristic because git gives no structured failure signal.
func ClassifyFetch(output string, err error) FetchResult {
	if err == nil {
		return FetchResult{Status: FetchOK}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchResult{Status: FetchTimeout, Detail: "fetch timed out"}
	}

	lower := strings.ToLower(output)
	for _, pat := range notFoundPatterns {
		if strings.Contains(lower, pat) {
			return FetchResult{Status: FetchNotFound, Detail: firstDiagnosticLine(output)}
		}
	}
	return FetchResult{Status: FetchFailed, Detail: firstDiagnosticLine(output)}
}

// firstDiagnosticLine extracts the most useful single line from fetch output:
// the first fatal:/error: line if present, otherwise the first non-empty line.
func firstDiagnosticLine(output string) string {
	var fallback string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if fallback == "" {
			fallback = line
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "fatal:") || strings.HasPrefix(lower, "error:") {
			return line
		}
	}
	return fallback
}
