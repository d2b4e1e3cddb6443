package tools

import (
	"context"
	"fmt"
	"strconv"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// DefaultLogLimit bounds git_log output when the client gives no limit.
const DefaultLogLimit = 20

// MaxLogLimit is the hard cap on git_log entries.
const MaxLogLimit = 200

// GitLogInput defines input for the git_log tool.
type GitLogInput struct {
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of commits to return (default 20, max 200)"`
	Path  string `json:"path,omitempty" jsonschema:"restrict history to this path"`
}

// GitShowInput defines input for the git_show tool.
type GitShowInput struct {
	Ref string `json:"ref,omitempty" jsonschema:"commit ref to show; defaults to HEAD"`
}

// GitDiffInput defines input for the git_diff tool.
type GitDiffInput struct {
	Ref  string `json:"ref,omitempty" jsonschema:"diff against this ref; defaults to the working tree vs HEAD"`
	Path string `json:"path,omitempty" jsonschema:"restrict the diff to this path"`
}

// GitBlameInput defines input for the git_blame tool.
type GitBlameInput struct {
	Path      string `json:"path" jsonschema:"file to annotate"`
	StartLine int    `json:"start_line,omitempty" jsonschema:"first line of the range to annotate"`
	EndLine   int    `json:"end_line,omitempty" jsonschema:"last line of the range to annotate"`
}

// GitTools provides read-only git inspection handlers backed by the git CLI.
// The handlers construct argv themselves; nothing client-controlled is ever
// interpreted by a shell.
type GitTools struct {
	run    *runner.Runner
	logger log.Logger
}

// NewGitTools creates the git toolset.
func NewGitTools(run *runner.Runner, logger log.Logger) (*GitTools, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &GitTools{run: run, logger: logger}, nil
}

// Tools returns the git inspection tools.
func (gt *GitTools) Tools() ([]*toolkit.Tool, error) {
	gitLog, err := toolkit.New("git_log", "Git log",
		"Show recent commit history of the workspace repository.",
		gt.Log)
	if err != nil {
		return nil, err
	}
	gitShow, err := toolkit.New("git_show", "Git show",
		"Show a commit (message and patch). Defaults to HEAD.",
		gt.Show)
	if err != nil {
		return nil, err
	}
	gitDiff, err := toolkit.New("git_diff", "Git diff",
		"Show uncommitted changes, or changes against a given ref.",
		gt.Diff)
	if err != nil {
		return nil, err
	}
	gitBlame, err := toolkit.New("git_blame", "Git blame",
		"Annotate a file with the commit last touching each line.",
		gt.Blame)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{gitLog, gitShow, gitDiff, gitBlame}, nil
}

// Log handles git_log.
func (gt *GitTools) Log(ctx context.Context, in GitLogInput) (toolkit.Result, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	args := []string{"log", "--oneline", "--decorate", "-n", strconv.Itoa(limit)}
	if in.Path != "" {
		args = append(args, "--", in.Path)
	}

	gt.logger.Debug("git_log", "limit", limit, "path", in.Path)
	res := gt.run.Run(ctx, runner.Spec{Name: "git", Args: args})
	return commandResult("git log", res, fmt.Sprintf("last %d commits", limit)), nil
}

// Show handles git_show.
func (gt *GitTools) Show(ctx context.Context, in GitShowInput) (toolkit.Result, error) {
	ref := in.Ref
	if ref == "" {
		ref = "HEAD"
	}

	gt.logger.Debug("git_show", "ref", ref)
	res := gt.run.Run(ctx, runner.Spec{Name: "git", Args: []string{"show", "--stat", "--patch", ref}})
	return commandResult("git show", res, "commit "+ref), nil
}

// Diff handles git_diff.
func (gt *GitTools) Diff(ctx context.Context, in GitDiffInput) (toolkit.Result, error) {
	args := []string{"diff"}
	if in.Ref != "" {
		args = append(args, in.Ref)
	}
	if in.Path != "" {
		args = append(args, "--", in.Path)
	}

	gt.logger.Debug("git_diff", "ref", in.Ref, "path", in.Path)
	res := gt.run.Run(ctx, runner.Spec{Name: "git", Args: args})
	return commandResult("git diff", res, "diff computed"), nil
}

// Blame handles git_blame.
func (gt *GitTools) Blame(ctx context.Context, in GitBlameInput) (toolkit.Result, error) {
	args := []string{"blame"}
	if in.StartLine > 0 {
		end := in.EndLine
		if end < in.StartLine {
			end = in.StartLine
		}
		args = append(args, "-L", fmt.Sprintf("%d,%d", in.StartLine, end))
	}
	args = append(args, "--", in.Path)

	gt.logger.Debug("git_blame", "path", in.Path)
	res := gt.run.Run(ctx, runner.Spec{Name: "git", Args: args})
	return commandResult("git blame", res, "blame for "+in.Path), nil
}
