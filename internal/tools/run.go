package tools

import (
	"strings"

	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// commandResult maps a runner Result onto the tool Result taxonomy. Runner
// failure classes (spawn failure, timeout) become EXECUTION errors; a plain
// non-zero exit is also surfaced as an error but keeps the captured output
// so the model can read the command's own diagnostics.
func commandResult(name string, res runner.Result, successMessage string) toolkit.Result {
	switch {
	case res.ExitCode == runner.CodeSpawnFailure:
		return toolkit.ErrorWithDetails(toolkit.ErrCodeExecution,
			name+" could not be started: "+res.Err,
			map[string]any{"exit_code": res.ExitCode})
	case res.TimedOut():
		return toolkit.ErrorWithDetails(toolkit.ErrCodeExecution,
			name+" "+res.Err,
			map[string]any{
				"exit_code": res.ExitCode,
				"stdout":    res.Stdout,
				"stderr":    res.Stderr,
			})
	case res.ExitCode == runner.CodeWaitFailure:
		return toolkit.ErrorWithDetails(toolkit.ErrCodeExecution,
			name+" failed after starting: "+res.Err,
			map[string]any{
				"exit_code": res.ExitCode,
				"stdout":    res.Stdout,
				"stderr":    res.Stderr,
			})
	case res.ExitCode != 0:
		return toolkit.ErrorWithDetails(toolkit.ErrCodeExecution,
			name+" exited with a non-zero status",
			map[string]any{
				"exit_code": res.ExitCode,
				"stdout":    res.Stdout,
				"stderr":    res.Stderr,
			})
	}

	return toolkit.Success(successMessage, map[string]any{
		"output":      res.Stdout,
		"stderr":      res.Stderr,
		"exit_code":   res.ExitCode,
		"duration_ms": res.Duration.Milliseconds(),
	})
}

// firstLine returns s up to the first newline, for compact log fields.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
