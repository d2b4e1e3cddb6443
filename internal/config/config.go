// Package config provides startup configuration for devkit-mcp.
//
// Configuration sources (highest to lowest priority):
//  1. Explicit overrides (command-line flags)
//  2. Environment variables (prefix DEVKIT_)
//  3. Config file (~/.devkit-mcp/config.yaml)
//  4. Default values
//
// The sandbox root and read cap are resolved exactly once, before the server
// starts serving. Core packages receive the resulting immutable Config by
// value; nothing below this package reads the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrRootNotFound indicates the configured sandbox root does not exist.
	ErrRootNotFound = errors.New("sandbox root does not exist")

	// ErrRootNotDirectory indicates the configured sandbox root is not a directory.
	ErrRootNotDirectory = errors.New("sandbox root is not a directory")

	// ErrInvalidReadLimit indicates the read byte cap is out of range.
	ErrInvalidReadLimit = errors.New("invalid max read bytes")

	// ErrInvalidTimeout indicates the command timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid command timeout")

	// ErrMissingSearchTool indicates the search tool path is empty.
	ErrMissingSearchTool = errors.New("missing search tool")
)

const (
	// DefaultMaxReadBytes caps a single sandboxed file read (200 KiB).
	DefaultMaxReadBytes = 200 * 1024

	// MaxAllowedReadBytes is the absolute cap to prevent OOM from misconfiguration.
	MaxAllowedReadBytes = 10 * 1024 * 1024

	// DefaultCommandTimeout bounds every subprocess invocation.
	DefaultCommandTimeout = 30 * time.Second

	// MaxCommandTimeout is the longest a tool subprocess may be configured to run.
	MaxCommandTimeout = 10 * time.Minute

	// DefaultSearchTool is the code search binary invoked by the search tools.
	DefaultSearchTool = "rg"
)

// Config stores the resolved startup configuration. It is immutable once
// Load returns; components hold a copy for the lifetime of the process.
type Config struct {
	// Root is the sandbox root directory. All relative path arguments resolve
	// against it and no file operation may escape it.
	Root string `mapstructure:"root"`

	// MaxReadBytes caps a single sandboxed file read.
	MaxReadBytes int64 `mapstructure:"max_read_bytes"`

	// CommandTimeout is the default hard timeout for subprocesses.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`

	// SearchTool is the ripgrep-compatible binary used by search_code.
	SearchTool string `mapstructure:"search_tool"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`

	// LogJSON switches diagnostic output to JSON records.
	LogJSON bool `mapstructure:"log_json"`
}

// Load reads configuration from file, environment and defaults, then applies
// rootOverride (the --root flag) if non-empty. The returned Config is fully
// validated; an error here is fatal and must abort startup before serving.
func Load(rootOverride string) (*Config, error) {
	v := viper.New()

	v.SetDefault("root", "")
	v.SetDefault("max_read_bytes", DefaultMaxReadBytes)
	v.SetDefault("command_timeout", DefaultCommandTimeout)
	v.SetDefault("search_tool", DefaultSearchTool)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".devkit-mcp"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("DEVKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if rootOverride != "" {
		cfg.Root = rootOverride
	}

	root, err := resolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveRoot turns the configured root into an absolute, existing directory.
// An empty root falls back to the current working directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}

	// Resolve symlinks so the sandbox containment check compares real paths.
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, abs)
		}
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, real)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDirectory, real)
	}

	return real, nil
}

// Validate checks all resolved values. Called by Load; exported so tests can
// exercise individual constraints.
func (c *Config) Validate() error {
	if c.MaxReadBytes <= 0 || c.MaxReadBytes > MaxAllowedReadBytes {
		return fmt.Errorf("%w: %d (must be in 1..%d)", ErrInvalidReadLimit, c.MaxReadBytes, MaxAllowedReadBytes)
	}
	if c.CommandTimeout <= 0 || c.CommandTimeout > MaxCommandTimeout {
		return fmt.Errorf("%w: %s (must be in (0, %s])", ErrInvalidTimeout, c.CommandTimeout, MaxCommandTimeout)
	}
	if strings.TrimSpace(c.SearchTool) == "" {
		return ErrMissingSearchTool
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the configured level name onto slog's scale.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
