package toolkit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"devkit-mcp/internal/log"
)

// ErrResourceNotFound indicates no registered resource matches a URI.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceContent is the resolved content of a resource read.
type ResourceContent struct {
	URI      string
	MIMEType string
	Text     string
}

// Resolver computes the content for a resource URI. For template resources,
// params carries the bound placeholder segments.
type Resolver func(ctx context.Context, uri string, params map[string]string) (ResourceContent, error)

// Resource is one registered URI or URI template. A URI containing "{name}"
// segments is a template; the final placeholder may match multiple path
// segments (so "repo://file/{path}" covers nested paths).
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string

	segments []string
	resolver Resolver
}

// IsTemplate reports whether the resource URI contains placeholders.
func (r *Resource) IsTemplate() bool {
	return strings.Contains(r.URI, "{")
}

// NewResource creates a resource entry.
func NewResource(uri, name, description, mimeType string, resolver Resolver) (*Resource, error) {
	if uri == "" {
		return nil, fmt.Errorf("resource URI is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resource %q: resolver is required", uri)
	}
	return &Resource{
		URI:         uri,
		Name:        name,
		Description: description,
		MIMEType:    mimeType,
		segments:    strings.Split(uri, "/"),
		resolver:    resolver,
	}, nil
}

// Resources maps URIs and URI templates to resolvers. Same registration
// rules as the tool registry: duplicates error, resolver failures are caught.
type Resources struct {
	mu      sync.RWMutex
	entries []*Resource
	byURI   map[string]*Resource
	logger  log.Logger
}

// NewResources creates an empty resource registry.
func NewResources(logger log.Logger) *Resources {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Resources{
		byURI:  make(map[string]*Resource),
		logger: logger,
	}
}

// Register adds a resource. Duplicate URIs error deterministically.
func (rs *Resources) Register(res *Resource) error {
	if res == nil {
		return fmt.Errorf("resource is required")
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.byURI[res.URI]; exists {
		return fmt.Errorf("resource %q is already registered", res.URI)
	}
	rs.byURI[res.URI] = res
	rs.entries = append(rs.entries, res)
	return nil
}

// All returns every registered resource in registration order.
func (rs *Resources) All() []*Resource {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]*Resource, len(rs.entries))
	copy(out, rs.entries)
	return out
}

// Resolve finds the resource matching uri (exact match first, then template
// matching in registration order) and runs its resolver. Resolver errors and
// panics are caught and returned as errors, never propagated as panics.
func (rs *Resources) Resolve(ctx context.Context, uri string) (content ResourceContent, err error) {
	rs.mu.RLock()
	res, params := rs.match(uri)
	rs.mu.RUnlock()

	if res == nil {
		return ResourceContent{}, fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
	}

	defer func() {
		if rec := recover(); rec != nil {
			rs.logger.Error("resource resolver panicked", "uri", uri, "panic", rec)
			content = ResourceContent{}
			err = fmt.Errorf("resolving %s: internal error", uri)
		}
	}()

	content, err = res.resolver(ctx, uri, params)
	if err != nil {
		rs.logger.Warn("resource resolver failed", "uri", uri, "error", err)
		return ResourceContent{}, fmt.Errorf("resolving %s: %w", uri, err)
	}
	if content.URI == "" {
		content.URI = uri
	}
	return content, nil
}

// match finds the entry for uri. Exact entries win over templates.
func (rs *Resources) match(uri string) (*Resource, map[string]string) {
	if res, ok := rs.byURI[uri]; ok && !res.IsTemplate() {
		return res, nil
	}

	parts := strings.Split(uri, "/")
	for _, res := range rs.entries {
		if !res.IsTemplate() {
			continue
		}
		if params, ok := bindTemplate(res.segments, parts); ok {
			return res, params
		}
	}
	return nil, nil
}

// bindTemplate matches URI segments against template segments, binding
// "{name}" placeholders. A trailing placeholder greedily captures the rest
// of the path.
func bindTemplate(template, parts []string) (map[string]string, bool) {
	params := make(map[string]string)

	for i, seg := range template {
		last := i == len(template)-1

		if isPlaceholder(seg) {
			name := seg[1 : len(seg)-1]
			if last {
				if len(parts) < len(template) {
					return nil, false
				}
				params[name] = strings.Join(parts[i:], "/")
				return params, true
			}
			if i >= len(parts) {
				return nil, false
			}
			params[name] = parts[i]
			continue
		}

		if i >= len(parts) || parts[i] != seg {
			return nil, false
		}
	}

	if len(parts) != len(template) {
		return nil, false
	}
	return params, true
}

func isPlaceholder(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}
