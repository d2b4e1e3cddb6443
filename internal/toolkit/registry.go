package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"devkit-mcp/internal/log"
)

// Registry maps tool names to their schema and handler. Registration happens
// at startup and is fail-fast: an empty or duplicate name is an error every
// time, never a silent replace. Call is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	order  []string
	logger log.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool. Duplicate names error deterministically.
func (r *Registry) Register(t *Tool) error {
	if t == nil {
		return fmt.Errorf("tool is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q is already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Call validates raw arguments and invokes the named tool. Every failure
// mode comes back as a structured Result; nothing escapes this boundary —
// handler errors and panics are converted, tagged with the tool name, and
// logged, so a broken handler cannot crash the server.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (res Result) {
	callID := uuid.NewString()
	logger := r.logger.With("tool", name, "call_id", callID)

	tool, ok := r.Lookup(name)
	if !ok {
		logger.Warn("unknown tool requested")
		return Errorf(ErrCodeUnknownTool, "unknown tool: %s", name)
	}

	if err := tool.validate(raw); err != nil {
		logger.Warn("argument validation failed", "error", err)
		return Errorf(ErrCodeValidation, "invalid arguments for %s: %v", name, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("tool handler panicked", "panic", rec)
			res = Errorf(ErrCodeInternal, "tool %s failed: internal error", name)
		}
	}()

	logger.Debug("dispatching tool call")
	result, err := tool.handler(ctx, raw)
	if err != nil {
		logger.Warn("tool handler failed", "error", err)
		return Errorf(ErrCodeInternal, "tool %s failed: %v", name, err)
	}

	logger.Debug("tool call completed", "status", result.Status)
	return result
}
