// Package tools contains the handlers registered against the toolkit
// registry: file access, code search, git inspection, documentation lookup,
// process listing, issue tracking and allowlisted command execution. Each
// handler is a thin translation from validated input to a sandboxed file
// operation or a subprocess invocation, returning the uniform Result
// envelope.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/sandbox"
	"devkit-mcp/internal/toolkit"
)

// ReadFileInput defines input for the read_file tool.
type ReadFileInput struct {
	Path  string `json:"path" jsonschema:"file path to read, relative to the workspace root"`
	Start int64  `json:"start,omitempty" jsonschema:"byte offset to start reading from"`
	End   int64  `json:"end,omitempty" jsonschema:"byte offset to stop before; 0 reads to end of file (capped)"`
}

// WriteFileInput defines input for the write_file tool.
type WriteFileInput struct {
	Path    string `json:"path" jsonschema:"file path to write, relative to the workspace root"`
	Content string `json:"content" jsonschema:"full content to write"`
}

// ListFilesInput defines input for the list_files tool.
type ListFilesInput struct {
	Path string `json:"path,omitempty" jsonschema:"directory to list; defaults to the workspace root"`
}

// FileInfoInput defines input for the file_info tool.
type FileInfoInput struct {
	Path string `json:"path" jsonschema:"file path to inspect"`
}

// FileTools provides sandboxed file operation handlers.
type FileTools struct {
	box    *sandbox.Sandbox
	logger log.Logger
}

// NewFileTools creates the file toolset.
func NewFileTools(box *sandbox.Sandbox, logger log.Logger) (*FileTools, error) {
	if box == nil {
		return nil, fmt.Errorf("sandbox is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &FileTools{box: box, logger: logger}, nil
}

// Tools returns the file operation tools.
func (ft *FileTools) Tools() ([]*toolkit.Tool, error) {
	readFile, err := toolkit.New("read_file", "Read file",
		"Read a byte range of a text file inside the workspace. The range is clamped to the file length and to the configured read cap.",
		ft.ReadFile)
	if err != nil {
		return nil, err
	}
	writeFile, err := toolkit.New("write_file", "Write file",
		"Write a text file inside the workspace. An existing file is backed up to <path>.bak first (best effort, not transactional).",
		ft.WriteFile)
	if err != nil {
		return nil, err
	}
	listFiles, err := toolkit.New("list_files", "List files",
		"List the entries of a directory inside the workspace.",
		ft.ListFiles)
	if err != nil {
		return nil, err
	}
	fileInfo, err := toolkit.New("file_info", "File info",
		"Get size, type, permissions and modification time of a workspace file.",
		ft.FileInfo)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{readFile, writeFile, listFiles, fileInfo}, nil
}

// ReadFile handles read_file. Sandbox violations come back as SECURITY
// errors, missing files as NOT_FOUND — never a generic I/O error for either.
func (ft *FileTools) ReadFile(_ context.Context, in ReadFileInput) (toolkit.Result, error) {
	ft.logger.Debug("read_file", "path", in.Path, "start", in.Start, "end", in.End)

	data, err := ft.box.ReadRange(in.Path, in.Start, in.End)
	if err != nil {
		return fileError(in.Path, err), nil
	}

	return toolkit.Success(fmt.Sprintf("read %d bytes from %s", len(data), in.Path), map[string]any{
		"path":    in.Path,
		"content": string(data),
		"size":    len(data),
	}), nil
}

// WriteFile handles write_file.
func (ft *FileTools) WriteFile(_ context.Context, in WriteFileInput) (toolkit.Result, error) {
	ft.logger.Debug("write_file", "path", in.Path, "bytes", len(in.Content))

	backup, err := ft.box.WriteFile(in.Path, []byte(in.Content))
	if err != nil {
		return fileError(in.Path, err), nil
	}

	data := map[string]any{
		"path": in.Path,
		"size": len(in.Content),
	}
	if backup != "" {
		data["backup"] = backup
	}
	return toolkit.Success(fmt.Sprintf("wrote %d bytes to %s", len(in.Content), in.Path), data), nil
}

// ListFiles handles list_files.
func (ft *FileTools) ListFiles(_ context.Context, in ListFilesInput) (toolkit.Result, error) {
	path := in.Path
	if path == "" {
		path = "."
	}
	ft.logger.Debug("list_files", "path", path)

	resolved, err := ft.box.Resolve(path)
	if err != nil {
		return fileError(path, err), nil
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return fileError(path, err), nil
	}

	listing := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		kind := "file"
		if entry.IsDir() {
			kind = "directory"
		}
		listing = append(listing, map[string]any{
			"name": entry.Name(),
			"type": kind,
		})
	}

	return toolkit.Success(fmt.Sprintf("listed %d entries in %s", len(listing), path), map[string]any{
		"path":    path,
		"entries": listing,
		"count":   len(listing),
	}), nil
}

// FileInfo handles file_info.
func (ft *FileTools) FileInfo(_ context.Context, in FileInfoInput) (toolkit.Result, error) {
	ft.logger.Debug("file_info", "path", in.Path)

	resolved, err := ft.box.Resolve(in.Path)
	if err != nil {
		return fileError(in.Path, err), nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileError(in.Path, err), nil
	}

	return toolkit.Success(fmt.Sprintf("stat %s", in.Path), map[string]any{
		"name":        info.Name(),
		"size":        info.Size(),
		"is_dir":      info.IsDir(),
		"modified":    info.ModTime().Format("2006-01-02 15:04:05"),
		"permissions": info.Mode().String(),
	}), nil
}

// fileError maps sandbox and filesystem errors onto the Result taxonomy.
func fileError(path string, err error) toolkit.Result {
	switch {
	case errors.Is(err, sandbox.ErrDenied):
		return toolkit.Errorf(toolkit.ErrCodeSecurity, "access denied: %s is outside the workspace", path)
	case errors.Is(err, sandbox.ErrNotRegular):
		return toolkit.Errorf(toolkit.ErrCodeValidation, "%s is not a regular file", path)
	case os.IsNotExist(err):
		return toolkit.Errorf(toolkit.ErrCodeNotFound, "not found: %s", path)
	default:
		return toolkit.Errorf(toolkit.ErrCodeIO, "file operation on %s failed: %v", path, err)
	}
}
