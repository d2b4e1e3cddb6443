// Package server bridges the tool and resource registries onto the MCP
// protocol using the official SDK. The SDK owns framing, request
// correlation and concurrency; this package owns the translation between
// the internal Result envelope and MCP content.
package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"devkit-mcp/internal/log"
	"devkit-mcp/internal/toolkit"
)

// Server wraps the MCP SDK server around the tool registry.
type Server struct {
	mcpServer *mcp.Server
	registry  *toolkit.Registry
	resources *toolkit.Resources
	logger    log.Logger
}

// Config holds server identity and the registries to expose.
type Config struct {
	Name      string
	Version   string
	Registry  *toolkit.Registry
	Resources *toolkit.Resources
	Logger    log.Logger
}

// NewServer creates the MCP server and registers every tool and resource.
// Registration failures are startup fatals.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		registry:  cfg.Registry,
		resources: cfg.Resources,
		logger:    cfg.Logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the server on the given transport. Blocks until the transport
// closes or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("serving", "tools", s.registry.Len())
	return s.mcpServer.Run(ctx, transport)
}

// registerTools exposes every registry tool through the SDK. The raw handler
// form is used so validation, dispatch and panic containment stay in the
// registry; the SDK sees only the declared schema and the final result.
func (s *Server) registerTools() {
	for _, t := range s.registry.Tools() {
		name := t.Name
		s.mcpServer.AddTool(&mcp.Tool{
			Name:        name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.Schema,
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res := s.registry.Call(ctx, name, req.Params.Arguments)
			return resultToMCP(res, s.logger), nil
		})
	}
}

// registerResources exposes registered resources. Exact URIs become plain
// resources, parameterized ones become resource templates; both read through
// the same resolver path.
func (s *Server) registerResources() {
	if s.resources == nil {
		return
	}
	for _, r := range s.resources.All() {
		handler := func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.resources.Resolve(ctx, req.Params.URI)
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      content.URI,
					MIMEType: content.MIMEType,
					Text:     content.Text,
				}},
			}, nil
		}

		if r.IsTemplate() {
			s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
				URITemplate: r.URI,
				Name:        r.Name,
				Description: r.Description,
				MIMEType:    r.MIMEType,
			}, handler)
			continue
		}
		s.mcpServer.AddResource(&mcp.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		}, handler)
	}
}
