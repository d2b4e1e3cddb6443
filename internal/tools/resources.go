package tools

import (
	"context"
	"fmt"

	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// RegisterResources adds the workspace resources: repository status as an
// exact URI and file contents as a template whose trailing parameter spans
// nested paths.
func RegisterResources(rs *toolkit.Resources, d Deps) error {
	if rs == nil {
		return fmt.Errorf("resource registry is required")
	}
	if d.Sandbox == nil {
		return fmt.Errorf("sandbox is required")
	}
	if d.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	status, err := toolkit.NewResource(
		"repo://status", "Repository status",
		"Working tree status of the workspace repository (git status --short --branch).",
		"text/plain",
		func(ctx context.Context, uri string, _ map[string]string) (toolkit.ResourceContent, error) {
			res := d.Runner.Run(ctx, runner.Spec{Name: "git", Args: []string{"status", "--short", "--branch"}})
			if res.ExitCode != 0 {
				return toolkit.ResourceContent{}, fmt.Errorf("git status failed: %s", firstLine(res.Stderr+res.Err))
			}
			return toolkit.ResourceContent{URI: uri, MIMEType: "text/plain", Text: res.Stdout}, nil
		})
	if err != nil {
		return err
	}

	file, err := toolkit.NewResource(
		"repo://file/{path}", "Workspace file",
		"Contents of a file inside the workspace, subject to the sandbox and the read cap.",
		"text/plain",
		func(_ context.Context, uri string, params map[string]string) (toolkit.ResourceContent, error) {
			data, err := d.Sandbox.ReadRange(params["path"], 0, 0)
			if err != nil {
				return toolkit.ResourceContent{}, err
			}
			return toolkit.ResourceContent{URI: uri, MIMEType: "text/plain", Text: string(data)}, nil
		})
	if err != nil {
		return err
	}

	for _, res := range []*toolkit.Resource{status, file} {
		if err := rs.Register(res); err != nil {
			return fmt.Errorf("registering resource: %w", err)
		}
	}
	return nil
}
