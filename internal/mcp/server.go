// ABOUTME: MCP server setup for the gym booking store.
// ABOUTME: Exposes the session manager's operations as MCP tools and resources.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/gym/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with session access.
type Server struct {
	mcpServer *mcp.Server
	manager   *session.Manager
	logger    *log.Logger
}

// NewServer creates a new MCP server over the given session manager.
func NewServer(manager *session.Manager, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gym",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		manager:   manager,
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
