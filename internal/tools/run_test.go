package tools

import (
	"strings"
	"testing"
	"time"

	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

func TestCommandResult_Success(t *testing.T) {
	res := commandResult("git log", runner.Result{
		ExitCode: 0,
		Stdout:   "abc123 first\n",
		Duration: 10 * time.Millisecond,
	}, "done")

	if res.Status != toolkit.StatusSuccess {
		t.Fatalf("commandResult() = %+v, want success", res)
	}
	data := res.Data.(map[string]any)
	if data["output"] != "abc123 first\n" {
		t.Errorf("output = %q, want captured stdout", data["output"])
	}
	if data["exit_code"] != 0 {
		t.Errorf("exit_code = %v, want 0", data["exit_code"])
	}
}

func TestCommandResult_NonZeroKeepsOutput(t *testing.T) {
	res := commandResult("git diff", runner.Result{
		ExitCode: 128,
		Stderr:   "fatal: not a git repository\n",
	}, "")

	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("commandResult() = %+v, want EXECUTION error", res)
	}
	if res.Error.Details["stderr"] != "fatal: not a git repository\n" {
		t.Errorf("details stderr = %v, want the captured diagnostics", res.Error.Details["stderr"])
	}
	if res.Error.Details["exit_code"] != 128 {
		t.Errorf("details exit_code = %v, want 128", res.Error.Details["exit_code"])
	}
}

func TestCommandResult_SpawnFailure(t *testing.T) {
	res := commandResult("frobnicate", runner.Result{
		ExitCode: runner.CodeSpawnFailure,
		Err:      "executable file not found",
	}, "")

	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("commandResult() = %+v, want EXECUTION error", res)
	}
}

func TestCommandResult_WaitFailureKeepsDescription(t *testing.T) {
	res := commandResult("git log", runner.Result{
		ExitCode: runner.CodeWaitFailure,
		Err:      "spawn error: signal: killed",
	}, "")

	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("commandResult() = %+v, want EXECUTION error", res)
	}
	if !strings.Contains(res.Error.Message, "signal: killed") {
		t.Errorf("message = %q, want the runner's failure description", res.Error.Message)
	}
	if res.Error.Details["exit_code"] != runner.CodeWaitFailure {
		t.Errorf("details exit_code = %v, want %d", res.Error.Details["exit_code"], runner.CodeWaitFailure)
	}
}

func TestCommandResult_TimeoutKeepsPartialOutput(t *testing.T) {
	res := commandResult("sleep", runner.Result{
		ExitCode: runner.CodeTimeout,
		Stdout:   "partial\n",
		Err:      "timed out after 100ms",
	}, "")

	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("commandResult() = %+v, want EXECUTION error", res)
	}
	if res.Error.Details["stdout"] != "partial\n" {
		t.Errorf("details stdout = %v, want partial output preserved", res.Error.Details["stdout"])
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "single with newline", input: "one\n", want: 1},
		{name: "multiple", input: "one\ntwo\nthree\n", want: 3},
		{name: "no trailing newline", input: "one\ntwo", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitLines(tt.input); len(got) != tt.want {
				t.Errorf("splitLines(%q) = %v, want %d lines", tt.input, got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("head\ntail"); got != "head" {
		t.Errorf("firstLine() = %q, want %q", got, "head")
	}
	if got := firstLine("whole"); got != "whole" {
		t.Errorf("firstLine() = %q, want %q", got, "whole")
	}
}
