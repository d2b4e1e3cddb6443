package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/sandbox"
	"devkit-mcp/internal/toolkit"
)

func newTestFileTools(t *testing.T) (*FileTools, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	box, err := sandbox.New(root, 1024, log.NewNop())
	if err != nil {
		t.Fatalf("creating sandbox: %v", err)
	}
	ft, err := NewFileTools(box, log.NewNop())
	if err != nil {
		t.Fatalf("NewFileTools() unexpected error: %v", err)
	}
	return ft, root
}

func TestNewFileTools_Validation(t *testing.T) {
	if _, err := NewFileTools(nil, log.NewNop()); err == nil {
		t.Error("NewFileTools() accepted nil sandbox, want error")
	}
}

func TestReadFile_Success(t *testing.T) {
	ft, root := newTestFileTools(t)
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	res, err := ft.ReadFile(context.Background(), ReadFileInput{Path: "a.txt"})
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusSuccess {
		t.Fatalf("ReadFile() = %+v, want success", res)
	}
	data := res.Data.(map[string]any)
	if data["content"] != "alpha" {
		t.Errorf("content = %q, want %q", data["content"], "alpha")
	}
}

func TestReadFile_Range(t *testing.T) {
	ft, root := newTestFileTools(t)
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("0123456789"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	res, err := ft.ReadFile(context.Background(), ReadFileInput{Path: "a.txt", Start: 2, End: 5})
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	data := res.Data.(map[string]any)
	if data["content"] != "234" {
		t.Errorf("content = %q, want %q", data["content"], "234")
	}
}

func TestReadFile_OutsideSandboxIsSecurityError(t *testing.T) {
	ft, _ := newTestFileTools(t)

	res, err := ft.ReadFile(context.Background(), ReadFileInput{Path: "/etc/passwd"})
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeSecurity {
		t.Fatalf("ReadFile(/etc/passwd) = %+v, want SECURITY error, not a generic I/O error", res)
	}
}

func TestReadFile_TraversalIsSecurityError(t *testing.T) {
	ft, root := newTestFileTools(t)

	// Plant a decoy where a clamped traversal would land; the tool must
	// deny the request rather than read the decoy.
	if err := os.MkdirAll(filepath.Join(root, "etc"), 0o750); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "etc", "passwd"), []byte("decoy"), 0o600); err != nil {
		t.Fatalf("writing decoy: %v", err)
	}

	res, err := ft.ReadFile(context.Background(), ReadFileInput{Path: "../../etc/passwd"})
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeSecurity {
		t.Fatalf("ReadFile(../../etc/passwd) = %+v, want SECURITY error", res)
	}
}

func TestReadFile_MissingIsNotFound(t *testing.T) {
	ft, _ := newTestFileTools(t)

	res, err := ft.ReadFile(context.Background(), ReadFileInput{Path: "nope.txt"})
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if res.Status != toolkit.StatusError || res.Error.Code != toolkit.ErrCodeNotFound {
		t.Fatalf("ReadFile(missing) = %+v, want NOT_FOUND error", res)
	}
}

func TestWriteFile_ThenReadBack(t *testing.T) {
	ft, _ := newTestFileTools(t)

	wres, err := ft.WriteFile(context.Background(), WriteFileInput{Path: "out/b.txt", Content: "bravo"})
	if err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
	if wres.Status != toolkit.StatusSuccess {
		t.Fatalf("WriteFile() = %+v, want success", wres)
	}

	rres, err := ft.ReadFile(context.Background(), ReadFileInput{Path: "out/b.txt"})
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if rres.Data.(map[string]any)["content"] != "bravo" {
		t.Errorf("round-trip content = %v, want %q", rres.Data, "bravo")
	}
}

func TestWriteFile_OverwriteReportsBackup(t *testing.T) {
	ft, _ := newTestFileTools(t)

	if _, err := ft.WriteFile(context.Background(), WriteFileInput{Path: "c.txt", Content: "one"}); err != nil {
		t.Fatalf("first WriteFile() unexpected error: %v", err)
	}
	res, err := ft.WriteFile(context.Background(), WriteFileInput{Path: "c.txt", Content: "two"})
	if err != nil {
		t.Fatalf("second WriteFile() unexpected error: %v", err)
	}

	data := res.Data.(map[string]any)
	if data["backup"] == nil || data["backup"] == "" {
		t.Errorf("WriteFile() data = %v, want a backup path on overwrite", data)
	}
}

func TestListFiles_DefaultsToRoot(t *testing.T) {
	ft, root := newTestFileTools(t)
	if err := os.WriteFile(filepath.Join(root, "x.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o750); err != nil {
		t.Fatalf("creating dir: %v", err)
	}

	res, err := ft.ListFiles(context.Background(), ListFilesInput{})
	if err != nil {
		t.Fatalf("ListFiles() unexpected error: %v", err)
	}
	data := res.Data.(map[string]any)
	if data["count"] != 2 {
		t.Errorf("count = %v, want 2", data["count"])
	}
}

func TestFileInfo(t *testing.T) {
	ft, root := newTestFileTools(t)
	if err := os.WriteFile(filepath.Join(root, "info.txt"), []byte("12345"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	res, err := ft.FileInfo(context.Background(), FileInfoInput{Path: "info.txt"})
	if err != nil {
		t.Fatalf("FileInfo() unexpected error: %v", err)
	}
	data := res.Data.(map[string]any)
	if data["size"] != int64(5) {
		t.Errorf("size = %v, want 5", data["size"])
	}
	if data["is_dir"] != false {
		t.Errorf("is_dir = %v, want false", data["is_dir"])
	}
}
