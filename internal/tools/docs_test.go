package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

func newTestDocTools(t *testing.T, binary string) *DocTools {
	t.Helper()
	run, err := runner.New(t.TempDir(), 10*time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("creating runner: %v", err)
	}
	dt, err := NewDocTools(run, log.NewNop())
	if err != nil {
		t.Fatalf("NewDocTools() unexpected error: %v", err)
	}
	if binary != "" {
		dt.goBinary = binary
	}
	return dt
}

func TestDocLookup_EmptySymbol(t *testing.T) {
	dt := newTestDocTools(t, "")

	res, err := dt.Lookup(context.Background(), DocLookupInput{Symbol: "  "})
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeValidation {
		t.Fatalf("Lookup(blank) = %+v, want VALIDATION error", res)
	}
}

func TestDocLookup_Success(t *testing.T) {
	bin := fakeSearch(t, "type Reader interface { Read(p []byte) (n int, err error) }\n", 0)
	dt := newTestDocTools(t, bin)

	res, err := dt.Lookup(context.Background(), DocLookupInput{Symbol: "io.Reader"})
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusSuccess {
		t.Fatalf("Lookup() = %+v, want success", res)
	}
	out := res.Data.(map[string]any)["output"].(string)
	if !strings.Contains(out, "Reader") {
		t.Errorf("output = %q, want the documentation text", out)
	}
}

func TestDocLookup_UnknownSymbol(t *testing.T) {
	bin := fakeSearch(t, "", 1)
	dt := newTestDocTools(t, bin)

	res, err := dt.Lookup(context.Background(), DocLookupInput{Symbol: "no.Such"})
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeExecution {
		t.Fatalf("Lookup(unknown) = %+v, want EXECUTION error", res)
	}
}
