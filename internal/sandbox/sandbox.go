// Package sandbox confines all file access to a single root directory.
//
// Every file-touching tool handler resolves its path argument through a
// Sandbox before opening anything. Escapes via "..", absolute paths, or
// symlinks pointing outside the root are rejected with ErrDenied, which is
// distinct from ordinary I/O errors so clients see an access-denied failure
// rather than a confusing "not found".
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"devkit-mcp/internal/log"
)

// ErrDenied indicates a path resolves outside the sandbox root.
var ErrDenied = errors.New("access denied: path escapes sandbox root")

// ErrNotRegular indicates a read target is not a regular file.
var ErrNotRegular = errors.New("not a regular file")

// Sandbox resolves and validates paths against a fixed root directory.
// The root is set once at startup and never changes.
type Sandbox struct {
	root         string
	maxReadBytes int64
	logger       log.Logger
}

// New creates a Sandbox rooted at root. The root must be an absolute path to
// an existing directory (config.Load guarantees this for the production
// path). maxReadBytes caps a single ReadRange call.
func New(root string, maxReadBytes int64, logger log.Logger) (*Sandbox, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("sandbox root must be absolute, got %q", root)
	}
	if maxReadBytes <= 0 {
		return nil, fmt.Errorf("max read bytes must be positive, got %d", maxReadBytes)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Sandbox{
		root:         filepath.Clean(root),
		maxReadBytes: maxReadBytes,
		logger:       logger,
	}, nil
}

// Root returns the sandbox root directory.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve turns a relative or absolute path argument into a validated
// absolute path inside the root. A path whose lexical resolution leaves the
// root is denied outright, never clamped back inside: "../../etc/passwd"
// must fail, not silently alias to <root>/etc/passwd. Symlinks are resolved
// relative to the root so a link pointing outside cannot be followed out.
func (s *Sandbox) Resolve(path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(s.root, filepath.Clean(path))
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			s.logger.Warn("sandbox escape rejected", "path", path)
			return "", fmt.Errorf("%w: %s", ErrDenied, path)
		}
		rel = r
	} else if !s.Contains(filepath.Join(s.root, path)) {
		s.logger.Warn("sandbox escape rejected", "path", path)
		return "", fmt.Errorf("%w: %s", ErrDenied, path)
	}

	resolved, err := securejoin.SecureJoin(s.root, rel)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}

	if !s.Contains(resolved) {
		s.logger.Warn("sandbox escape rejected", "path", path, "resolved", resolved)
		return "", fmt.Errorf("%w: %s", ErrDenied, path)
	}

	return resolved, nil
}

// Contains reports whether abs lies within the sandbox root. The check is
// path-segment aware: "/repo-evil" does not match a root of "/repo".
func (s *Sandbox) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == s.root {
		return true
	}
	return strings.HasPrefix(abs, s.root+string(filepath.Separator))
}

// ReadRange reads the byte range [start, end) of a sandboxed file, decoded
// as text by the caller. The range is clamped to the actual file length and
// a single call never reads more than the configured cap. end <= 0 means
// "to end of file".
func (s *Sandbox) ReadRange(path string, start, end int64) ([]byte, error) {
	resolved, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved) // #nosec G304 -- resolved stays inside the root
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	size := info.Size()
	if start < 0 {
		start = 0
	}
	if end <= 0 || end > size {
		end = size
	}
	if start > size {
		start = size
	}
	if end < start {
		end = start
	}
	if end-start > s.maxReadBytes {
		end = start + s.maxReadBytes
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	buf := make([]byte, end-start)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFile writes data to a sandboxed path, creating parent directories as
// needed. An existing regular file is first copied to path+".bak". The
// backup is a best-effort safety net, not a transaction: a crash between
// backup and write can still leave the pair inconsistent.
func (s *Sandbox) WriteFile(path string, data []byte) (string, error) {
	resolved, err := s.Resolve(path)
	if err != nil {
		return "", err
	}

	backup := ""
	if info, statErr := os.Stat(resolved); statErr == nil && info.Mode().IsRegular() {
		backup = resolved + ".bak"
		if err := copyFile(resolved, backup); err != nil {
			return "", fmt.Errorf("backing up %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o750); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return backup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src already validated
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
