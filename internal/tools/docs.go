package tools

import (
	"context"
	"fmt"
	"strings"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/runner"
	"devkit-mcp/internal/toolkit"
)

// DocLookupInput defines input for the doc_lookup tool.
type DocLookupInput struct {
	Symbol string `json:"symbol" jsonschema:"package or package.Symbol to document, e.g. 'io' or 'io.Reader'"`
	Full   bool   `json:"full,omitempty" jsonschema:"include unexported symbols and full docs"`
}

// DocTools provides documentation lookup via the go toolchain.
type DocTools struct {
	run      *runner.Runner
	goBinary string
	logger   log.Logger
}

// NewDocTools creates the documentation toolset.
func NewDocTools(run *runner.Runner, logger log.Logger) (*DocTools, error) {
	if run == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &DocTools{run: run, goBinary: "go", logger: logger}, nil
}

// Tools returns the documentation tools.
func (dt *DocTools) Tools() ([]*toolkit.Tool, error) {
	docLookup, err := toolkit.New("doc_lookup", "Documentation lookup",
		"Show Go documentation for a package or symbol via 'go doc'.",
		dt.Lookup)
	if err != nil {
		return nil, err
	}
	return []*toolkit.Tool{docLookup}, nil
}

// Lookup handles doc_lookup.
func (dt *DocTools) Lookup(ctx context.Context, in DocLookupInput) (toolkit.Result, error) {
	if strings.TrimSpace(in.Symbol) == "" {
		return toolkit.Errorf(toolkit.ErrCodeValidation, "symbol cannot be empty"), nil
	}

	args := []string{"doc"}
	if in.Full {
		args = append(args, "-all", "-u")
	}
	args = append(args, in.Symbol)

	dt.logger.Debug("doc_lookup", "symbol", in.Symbol)
	res := dt.run.Run(ctx, runner.Spec{Name: dt.goBinary, Args: args})
	return commandResult("go doc", res, "documentation for "+in.Symbol), nil
}
