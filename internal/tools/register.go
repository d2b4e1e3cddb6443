package tools

import (
	"fmt"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/sandbox"
	"devkit-mcp/internal/security"
	"devkit-mcp/internal/toolkit"
)

// Deps carries the substrate every toolset is built on.
type Deps struct {
	Sandbox    *sandbox.Sandbox
	Runner     *runner.Runner
	Validator  *security.Command
	SearchTool string
	Logger     log.Logger
}

// toolset is what every concrete toolset exposes to registration.
type toolset interface {
	Tools() ([]*toolkit.Tool, error)
}

// Register builds all toolsets and registers their tools. Any failure here
// is a startup-time fatal: a misdeclared tool must never reach serving.
func Register(reg *toolkit.Registry, d Deps) error {
	if reg == nil {
		return fmt.Errorf("registry is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	fileTools, err := NewFileTools(d.Sandbox, d.Logger.With("toolset", "file"))
	if err != nil {
		return fmt.Errorf("creating file tools: %w", err)
	}
	gitTools, err := NewGitTools(d.Runner, d.Logger.With("toolset", "git"))
	if err != nil {
		return fmt.Errorf("creating git tools: %w", err)
	}
	searchTools, err := NewSearchTools(d.Runner, d.SearchTool, d.Logger.With("toolset", "search"))
	if err != nil {
		return fmt.Errorf("creating search tools: %w", err)
	}
	docTools, err := NewDocTools(d.Runner, d.Logger.With("toolset", "docs"))
	if err != nil {
		return fmt.Errorf("creating doc tools: %w", err)
	}
	procTools, err := NewProcTools(d.Runner, d.Logger.With("toolset", "proc"))
	if err != nil {
		return fmt.Errorf("creating proc tools: %w", err)
	}
	issueTools, err := NewIssueTools(d.Runner, d.Logger.With("toolset", "issues"))
	if err != nil {
		return fmt.Errorf("creating issue tools: %w", err)
	}
	execTools, err := NewExecTools(d.Runner, d.Validator, d.Logger.With("toolset", "exec"))
	if err != nil {
		return fmt.Errorf("creating exec tools: %w", err)
	}

	for _, ts := range []toolset{fileTools, gitTools, searchTools, docTools, procTools, issueTools, execTools} {
		list, err := ts.Tools()
		if err != nil {
			return fmt.Errorf("building tools: %w", err)
		}
		for _, t := range list {
			if err := reg.Register(t); err != nil {
				return fmt.Errorf("registering %s: %w", t.Name, err)
			}
		}
	}

	return nil
}
