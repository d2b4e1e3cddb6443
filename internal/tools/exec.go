package tools

import (
	"context"
	"fmt"
	"time"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/security"
	"devkit-mcp/internal/toolkit"
)

// RunCommandInput defines input for the run_command tool.
type RunCommandInput struct {
	Command        string   `json:"command" jsonschema:"the command to execute (must be on the allowlist)"`
	Args           []string `json:"args,omitempty" jsonschema:"command arguments as separate array elements"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" jsonschema:"per-call timeout override in seconds"`
}

// ExecTools provides allowlisted command execution. This is the only tool
// where the client chooses the binary, so everything goes through the
// security validator first.
type ExecTools struct {
	run       *runner.Runner
	validator *security.Command
	logger    log.Logger
}

// NewExecTools creates the command execution toolset.
func NewExecTools(run *runner.Runner, validator *security.Command, logger log.Logger) (*ExecTools, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("command validator is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &ExecTools{run: run, validator: validator, logger: logger}, nil
}

// Tools returns the command execution tools.
func (et *ExecTools) Tools() ([]*toolkit.Tool, error) {
	runCommand, err := toolkit.New("run_command", "Run command",
		"Execute an allowlisted read-only command in the workspace. Commands that can execute arbitrary code are rejected.",
		et.Run)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{runCommand}, nil
}

// Run handles run_command. Allowlist rejections are SECURITY errors and the
// process is never spawned.
func (et *ExecTools) Run(ctx context.Context, in RunCommandInput) (toolkit.Result, error) {
	if err := et.validator.Validate(in.Command, in.Args); err != nil {
		et.logger.Warn("run_command rejected", "command", in.Command, "error", err)
		return toolkit.Errorf(toolkit.ErrCodeSecurity, "command not permitted: %v", err), nil
	}

	spec := runner.Spec{Name: in.Command, Args: in.Args}
	if in.TimeoutSeconds > 0 {
		spec.Timeout = time.Duration(in.TimeoutSeconds) * time.Second
	}

	et.logger.Debug("run_command", "command", in.Command, "args", in.Args)
	res := et.run.Run(ctx, spec)
	return commandResult(in.Command, res, "command completed"), nil
}
