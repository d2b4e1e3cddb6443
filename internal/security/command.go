// Package security validates run_command invocations before they reach the
// subprocess runner. The dedicated tools (git, search, issues) build their
// own argv and bypass this validator; only client-chosen commands pass
// through it.
package security

import (
	"fmt"
	"slices"
	"strings"

	"devkit-mcp/internal/log"
)

// MaxArgLength bounds a single argument to keep obviously hostile inputs out.
const MaxArgLength = 10000

// shellMetachars in a command name indicate a shell injection attempt. They
// are harmless in arguments because the runner never invokes a shell.
const shellMetachars = ";|&`\n><$()"

// Command validates client-supplied commands against an allowlist
// (CWE-78). Commands run via exec.Command, so arguments are literal strings;
// only the command name and a few dangerous subcommands need guarding.
type Command struct {
	allowed            []string
	blockedSubcommands map[string][]string
	logger             log.Logger
}

// NewCommand creates the validator with the default allowlist: read-only
// inspection commands plus git/go/npm with code-executing subcommands
// blocked. cat/head/grep stay off the list — the sandboxed file tools cover
// content reading with path validation.
func NewCommand(logger log.Logger) *Command {
	return &Command{
		allowed: []string{
			// Listing and metadata
			"ls", "wc", "sort", "uniq", "tree", "file", "stat",

			// Directory and system info
			"pwd", "date", "whoami", "hostname", "uname",
			"df", "du", "free", "ps", "top",

			// Version control and build tooling (subcommand restrictions apply)
			"git", "go", "npm", "yarn",

			// Utilities
			"echo", "printf", "which", "whereis", "env", "sleep",
		},
		blockedSubcommands: map[string][]string{
			"go":   {"run", "generate", "tool"},
			"npm":  {"run", "exec", "start", "explore"},
			"yarn": {"run", "exec", "start"},
			"git":  {"filter-branch", "config", "difftool", "mergetool"},
		},
		logger: logger,
	}
}

// Validate reports whether cmd with args is safe to hand to the runner.
func (v *Command) Validate(cmd string, args []string) error {
	name := strings.ToLower(strings.TrimSpace(cmd))
	if name == "" {
		return fmt.Errorf("command cannot be empty")
	}

	if i := strings.IndexAny(name, shellMetachars); i >= 0 {
		v.logger.Warn("shell metacharacter in command name",
			"command", cmd, "character", string(name[i]))
		return fmt.Errorf("command name contains shell metacharacter %q", string(name[i]))
	}

	if !slices.Contains(v.allowed, name) {
		v.logger.Warn("command not in allowlist", "command", cmd)
		return fmt.Errorf("command %q is not in the allowlist", cmd)
	}

	if blocked, ok := v.blockedSubcommands[name]; ok && len(args) > 0 {
		first := strings.ToLower(strings.TrimSpace(args[0]))
		if slices.Contains(blocked, first) {
			v.logger.Warn("blocked subcommand", "command", cmd, "subcommand", args[0])
			return fmt.Errorf("subcommand %q is not allowed with %q (can execute arbitrary code)", args[0], cmd)
		}
	}

	for i, arg := range args {
		if err := validateArgument(arg); err != nil {
			v.logger.Warn("unsafe argument", "command", cmd, "index", i, "error", err)
			return fmt.Errorf("argument %d is unsafe: %w", i, err)
		}
	}

	return nil
}

func validateArgument(arg string) error {
	if strings.Contains(arg, "\x00") {
		return fmt.Errorf("argument contains null byte")
	}
	if len(arg) > MaxArgLength {
		return fmt.Errorf("argument too long (%d bytes, max %d)", len(arg), MaxArgLength)
	}
	return nil
}
