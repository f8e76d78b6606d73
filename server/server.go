// Package server is the MCP front end of the bridge: it registers every
// derived tool on a stdio MCP server and forwards call-tool requests to the
// bridge. A failed invocation is rendered as an "Error: ..." text result,
// never as a protocol fault, so the server stays available regardless of
// any single call's outcome.
package server

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/BaSui01/apibridge/bridge"
	"github.com/BaSui01/apibridge/types"
)

// Server exposes the bridge over MCP stdio.
type Server struct {
	mcp    *server.MCPServer
	bridge *bridge.Bridge
	logger *zap.Logger
}

// New builds the MCP server and registers the tools derived from the
// bridge's current document.
func New(name, version string, b *bridge.Bridge, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tools, err := b.DeriveTools()
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv := &Server{
		mcp:    s,
		bridge: b,
		logger: logger.With(zap.String("component", "mcp_server")),
	}

	for _, tool := range tools {
		srv.register(tool)
	}

	logger.Info("MCP server ready",
		zap.String("name", name),
		zap.Int("tools", len(tools)),
	)
	return srv, nil
}

func (s *Server) register(descriptor types.ToolDescriptor) {
	tool := mcp.NewToolWithRawSchema(descriptor.Name, descriptor.Description, descriptor.SchemaJSON())

	name := descriptor.Name
	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.bridge.Invoke(ctx, name, req.GetArguments())
		if err != nil {
			s.logger.Warn("tool invocation failed",
				zap.String("tool", name),
				zap.Error(err),
			)
			result = types.ErrorResult(err)
		}
		return mcp.NewToolResultText(result.Render()), nil
	})
}

// ServeStdio blocks serving MCP over stdin/stdout until the stream closes
// or ctx is canceled. A clean stream close returns nil.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}
