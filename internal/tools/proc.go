package tools

import (
	"context"
	"fmt"
	"strings"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// ListProcessesInput defines input for the list_processes tool.
type ListProcessesInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"case-insensitive substring to filter the process list by"`
}

// ProcTools provides runtime inspection via the system process table.
type ProcTools struct {
	run    *runner.Runner
	logger log.Logger
}

// NewProcTools creates the process inspection toolset.
func NewProcTools(run *runner.Runner, logger log.Logger) (*ProcTools, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &ProcTools{run: run, logger: logger}, nil
}

// Tools returns the process inspection tools.
func (pt *ProcTools) Tools() ([]*toolkit.Tool, error) {
	listProcesses, err := toolkit.New("list_processes", "List processes",
		"List running processes (ps), optionally filtered by a substring.",
		pt.List)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{listProcesses}, nil
}

// List handles list_processes. Filtering happens here rather than via a
// shell pipeline; the runner never invokes a shell.
func (pt *ProcTools) List(ctx context.Context, in ListProcessesInput) (toolkit.Result, error) {
	pt.logger.Debug("list_processes", "filter", in.Filter)

	res := pt.run.Run(ctx, runner.Spec{Name: "ps", Args: []string{"aux"}})
	if res.ExitCode != 0 {
		return commandResult("ps", res, ""), nil
	}

	lines := splitLines(res.Stdout)
	if in.Filter != "" && len(lines) > 0 {
		needle := strings.ToLower(in.Filter)
		filtered := lines[:1] // keep the header row
		for _, line := range lines[1:] {
			if strings.Contains(strings.ToLower(line), needle) {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
	}

	return toolkit.Success(fmt.Sprintf("%d processes", max(len(lines)-1, 0)), map[string]any{
		"processes": lines,
		"count":     max(len(lines)-1, 0),
	}), nil
}
