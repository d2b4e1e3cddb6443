package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// DefaultSearchLimit bounds search matches when the client gives no limit.
const DefaultSearchLimit = 100

// MaxSearchLimit is the hard cap on search matches.
const MaxSearchLimit = 1000

// SearchCodeInput defines input for the search_code tool.
type SearchCodeInput struct {
	Pattern    string `json:"pattern" jsonschema:"regular expression to search for"`
	Path       string `json:"path,omitempty" jsonschema:"directory or file to search; defaults to the workspace root"`
	IgnoreCase bool   `json:"ignore_case,omitempty" jsonschema:"case-insensitive matching"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum matches to return (default 100, max 1000)"`
}

// SearchTools provides code search backed by a ripgrep-compatible binary.
// The binary path comes from startup configuration so deployments can point
// at a pinned rg.
type SearchTools struct {
	run    *runner.Runner
	binary string
	logger log.Logger
}

// NewSearchTools creates the search toolset.
func NewSearchTools(run *runner.Runner, binary string, logger log.Logger) (*SearchTools, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if strings.TrimSpace(binary) == "" {
		return nil, fmt.Errorf("search binary is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &SearchTools{run: run, binary: binary, logger: logger}, nil
}

// Tools returns the search tools.
func (st *SearchTools) Tools() ([]*toolkit.Tool, error) {
	searchCode, err := toolkit.New("search_code", "Search code",
		"Search the workspace with a regular expression (ripgrep). Returns matching lines with file and line number.",
		st.SearchCode)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{searchCode}, nil
}

// SearchCode handles search_code. ripgrep exits 1 on "no matches", which is
// a successful empty result, not a failure.
func (st *SearchTools) SearchCode(ctx context.Context, in SearchCodeInput) (toolkit.Result, error) {
	limit := in.MaxResults
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	// --max-count only bounds matches per file; it caps the work ripgrep
	// does, while the total cap is enforced by truncation below.
	args := []string{"--line-number", "--no-heading", "--max-count", strconv.Itoa(limit)}
	if in.IgnoreCase {
		args = append(args, "--ignore-case")
	}
	args = append(args, "--", in.Pattern)
	if in.Path != "" {
		args = append(args, in.Path)
	}

	st.logger.Debug("search_code", "pattern", in.Pattern, "path", in.Path)
	res := st.run.Run(ctx, runner.Spec{Name: st.binary, Args: args})

	if res.ExitCode == 1 && res.Err == "" {
		return toolkit.Success("no matches", map[string]any{
			"pattern": in.Pattern,
			"matches": []string{},
			"count":   0,
		}), nil
	}
	if res.ExitCode != 0 {
		return commandResult("search", res, ""), nil
	}

	lines := splitLines(res.Stdout)
	truncated := false
	if len(lines) > limit {
		lines = lines[:limit]
		truncated = true
	}
	return toolkit.Success(fmt.Sprintf("%d matching lines", len(lines)), map[string]any{
		"pattern":   in.Pattern,
		"matches":   lines,
		"count":     len(lines),
		"truncated": truncated,
	}), nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
