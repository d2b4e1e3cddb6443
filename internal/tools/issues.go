package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// DefaultIssueLimit bounds issue_list output when the client gives no limit.
const DefaultIssueLimit = 30

// IssueListInput defines input for the issue_list tool.
type IssueListInput struct {
	State string `json:"state,omitempty" jsonschema:"issue state: open, closed or all (default open)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of issues to return (default 30)"`
}

// IssueViewInput defines input for the issue_view tool.
type IssueViewInput struct {
	Number int `json:"number" jsonschema:"issue number to view"`
}

// IssueTools provides issue tracking access via the GitHub CLI (gh). The gh
// binary handles authentication itself; this toolset only shapes requests
// and parses the JSON it returns.
type IssueTools struct {
	run      *runner.Runner
	ghBinary string
	logger   log.Logger
}

// NewIssueTools creates the issue tracking toolset.
func NewIssueTools(run *runner.Runner, logger log.Logger) (*IssueTools, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &IssueTools{run: run, ghBinary: "gh", logger: logger}, nil
}

// Tools returns the issue tracking tools.
func (it *IssueTools) Tools() ([]*toolkit.Tool, error) {
	issueList, err := toolkit.New("issue_list", "List issues",
		"List issues of the workspace repository via the GitHub CLI.",
		it.List)
	if err != nil {
		return nil, err
	}
	issueView, err := toolkit.New("issue_view", "View issue",
		"Show one issue (title, state, body, labels) via the GitHub CLI.",
		it.View)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{issueList, issueView}, nil
}

// List handles issue_list.
func (it *IssueTools) List(ctx context.Context, in IssueListInput) (toolkit.Result, error) {
	state := in.State
	switch state {
	case "":
		state = "open"
	case "open", "closed", "all":
	default:
		return toolkit.Errorf(toolkit.ErrCodeValidation,
			"invalid state %q (must be open, closed or all)", in.State), nil
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultIssueLimit
	}

	args := []string{
		"issue", "list",
		"--state", state,
		"--limit", strconv.Itoa(limit),
		"--json", "number,title,state,labels,updatedAt",
	}

	it.logger.Debug("issue_list", "state", state, "limit", limit)
	res := it.run.Run(ctx, runner.Spec{Name: it.ghBinary, Args: args})
	if res.ExitCode != 0 {
		return commandResult("gh issue list", res, ""), nil
	}

	var issues []map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &issues); err != nil {
		it.logger.Warn("issue_list: unparseable gh output", "head", firstLine(res.Stdout), "error", err)
		return toolkit.Errorf(toolkit.ErrCodeExecution, "could not parse gh output: %v", err), nil
	}

	return toolkit.Success(fmt.Sprintf("%d %s issues", len(issues), state), map[string]any{
		"state":  state,
		"issues": issues,
		"count":  len(issues),
	}), nil
}

// View handles issue_view.
func (it *IssueTools) View(ctx context.Context, in IssueViewInput) (toolkit.Result, error) {
	if in.Number <= 0 {
		return toolkit.Errorf(toolkit.ErrCodeValidation, "issue number must be positive, got %d", in.Number), nil
	}

	args := []string{
		"issue", "view", strconv.Itoa(in.Number),
		"--json", "number,title,state,body,labels,comments,updatedAt",
	}

	it.logger.Debug("issue_view", "number", in.Number)
	res := it.run.Run(ctx, runner.Spec{Name: it.ghBinary, Args: args})
	if res.ExitCode != 0 {
		return commandResult("gh issue view", res, ""), nil
	}

	var issue map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &issue); err != nil {
		it.logger.Warn("issue_view: unparseable gh output", "head", firstLine(res.Stdout), "error", err)
		return toolkit.Errorf(toolkit.ErrCodeExecution, "could not parse gh output: %v", err), nil
	}

	return toolkit.Success(fmt.Sprintf("issue #%d", in.Number), issue), nil
}
