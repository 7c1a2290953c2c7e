// Package server provides the MCP server of the link clearance engine.
package server

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/pathclear/pkg/tools"
	"github.com/NERVsystems/pathclear/pkg/tools/prompts"
	"github.com/NERVsystems/pathclear/pkg/version"
)

// ServerName is the name of the MCP server
const ServerName = "pathclear"

// Server encapsulates the MCP server with the clearance tools.
type Server struct {
	srv    *server.MCPServer
	logger *slog.Logger
}

// NewServer creates a new clearance MCP server with all tools and prompts
// registered.
func NewServer(logger *slog.Logger, opts tools.Options) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing link clearance MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	registry, err := tools.NewRegistry(logger, opts)
	if err != nil {
		return nil, err
	}
	registry.RegisterTools(srv)
	prompts.RegisterClearancePrompts(srv)

	return &Server{srv: srv, logger: logger}, nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Run starts the MCP server using stdin/stdout for communication.
func (s *Server) Run() error {
	return server.ServeStdio(s.srv)
}

// RunWithContext serves MCP requests read from in until ctx is done or in
// is closed.
func (s *Server) RunWithContext(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("serving MCP over stdio")
	return server.NewStdioServer(s.srv).Listen(ctx, in, out)
}
