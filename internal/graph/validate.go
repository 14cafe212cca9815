package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Issue is one validation failure, attributed to the offending node.
type Issue struct {
	NodeID string
	Kind   string
	Err    error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s (%s): %v", i.NodeID, i.Kind, i.Err)
}

// ValidationError aggregates every issue found in one validation pass.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	sorted := append([]Issue(nil), e.Issues...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].NodeID < sorted[b].NodeID })
	parts := make([]string, len(sorted))
	for i, is := range sorted {
		parts[i] = is.String()
	}
	return fmt.Sprintf("graph validation failed: %s", strings.Join(parts, "; "))
}
