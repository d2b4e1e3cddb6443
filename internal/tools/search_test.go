package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// fakeSearch writes a shell script that mimics a ripgrep invocation: it
// prints the given stdout and exits with the given code, so the tests do not
// depend on rg being installed.
func fakeSearch(t *testing.T, stdout string, exitCode int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakerg")
	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s' '%s'\nexit %d\n", stdout, exitCode)
	if err := os.WriteFile(path, []byte(script), 0o700); err != nil {
		t.Fatalf("writing fake search binary: %v", err)
	}
	return path
}

func newTestSearchTools(t *testing.T, binary string) *SearchTools {
	t.Helper()
	run, err := runner.New(t.TempDir(), 10*time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("creating runner: %v", err)
	}
	st, err := NewSearchTools(run, binary, log.NewNop())
	if err != nil {
		t.Fatalf("NewSearchTools() unexpected error: %v", err)
	}
	return st
}

func TestNewSearchTools_RequiresBinary(t *testing.T) {
	run, err := runner.New(t.TempDir(), time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("creating runner: %v", err)
	}
	if _, err := NewSearchTools(run, "  ", log.NewNop()); err == nil {
		t.Error("NewSearchTools() accepted blank binary, want error")
	}
}

func TestSearchCode_Matches(t *testing.T) {
	bin := fakeSearch(t, "main.go:10:func main() {\nmain.go:22:\tmain loop\n", 0)
	st := newTestSearchTools(t, bin)

	res, err := st.SearchCode(context.Background(), SearchCodeInput{Pattern: "main"})
	if err != nil {
		t.Fatalf("SearchCode() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusSuccess {
		t.Fatalf("SearchCode() = %+v, want success", res)
	}
	data := res.Data.(map[string]any)
	if data["count"] != 2 {
		t.Errorf("count = %v, want 2", data["count"])
	}
}

func TestSearchCode_TotalLimitTruncates(t *testing.T) {
	// Matches spread across many files can exceed the per-file bound passed
	// to ripgrep; the total cap must still hold.
	bin := fakeSearch(t, "a.go:1:x\nb.go:1:x\nc.go:1:x\n", 0)
	st := newTestSearchTools(t, bin)

	res, err := st.SearchCode(context.Background(), SearchCodeInput{Pattern: "x", MaxResults: 2})
	if err != nil {
		t.Fatalf("SearchCode() unexpected error: %v", err)
	}
	data := res.Data.(map[string]any)
	if data["count"] != 2 {
		t.Errorf("count = %v, want 2", data["count"])
	}
	if len(data["matches"].([]string)) != 2 {
		t.Errorf("matches = %v, want 2 lines", data["matches"])
	}
	if data["truncated"] != true {
		t.Errorf("truncated = %v, want true", data["truncated"])
	}
}

func TestSearchCode_NoMatchesIsSuccess(t *testing.T) {
	// ripgrep exits 1 when nothing matched; that must not surface as an
	// execution failure.
	bin := fakeSearch(t, "", 1)
	st := newTestSearchTools(t, bin)

	res, err := st.SearchCode(context.Background(), SearchCodeInput{Pattern: "nomatch"})
	if err != nil {
		t.Fatalf("SearchCode() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusSuccess {
		t.Fatalf("SearchCode(no matches) = %+v, want success", res)
	}
	data := res.Data.(map[string]any)
	if data["count"] != 0 {
		t.Errorf("count = %v, want 0", data["count"])
	}
}

func TestSearchCode_ToolFailure(t *testing.T) {
	bin := fakeSearch(t, "", 2)
	st := newTestSearchTools(t, bin)

	res, err := st.SearchCode(context.Background(), SearchCodeInput{Pattern: "("})
	if err != nil {
		t.Fatalf("SearchCode() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("SearchCode(exit 2) = %+v, want EXECUTION error", res)
	}
}

func TestSearchCode_MissingBinary(t *testing.T) {
	st := newTestSearchTools(t, filepath.Join(t.TempDir(), "does-not-exist"))

	res, err := st.SearchCode(context.Background(), SearchCodeInput{Pattern: "x"})
	if err != nil {
		t.Fatalf("SearchCode() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("SearchCode(missing binary) = %+v, want EXECUTION error", res)
	}
}
