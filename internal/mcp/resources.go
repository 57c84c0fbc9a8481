// ABOUTME: MCP resource implementations for the gym booking store.
// ABOUTME: Provides gym://classes, gym://schedule, and gym://notifications resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// gym://classes - The class catalog
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "gym://classes",
		Name:        "Class Catalog",
		Description: "Classes offered by the gym with trainer and weekly slot",
		MIMEType:    "application/json",
	}, s.handleClassesResource)

	// gym://schedule - The current member's weekly grid
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "gym://schedule",
		Name:        "Weekly Schedule",
		Description: "The logged-in member's booked workouts laid out Monday to Friday, 08:00 to 17:00",
		MIMEType:    "text/markdown",
	}, s.handleScheduleResource)

	// gym://notifications - The notification feed
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "gym://notifications",
		Name:        "Notifications",
		Description: "Gym notification feed",
		MIMEType:    "application/json",
	}, s.handleNotificationsResource)
}

// Resource handlers

func (s *Server) handleClassesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	result := map[string]interface{}{
		"classes": classItems(s.manager.Classes.Get()),
	}
	return jsonResource("gym://classes", result)
}

func (s *Server) handleScheduleResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, fmt.Errorf("schedule unavailable: %w", err)
	}

	grid, err := s.manager.Schedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schedule: %w", err)
	}

	text := fmt.Sprintf("# Schedule for %s\n\nGenerated: %s\n\n%s", u.Username, time.Now().Format(time.RFC3339), grid.Markdown())
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "gym://schedule",
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}, nil
}

func (s *Server) handleNotificationsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	notifications := s.manager.Notifications()
	result := map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	}
	return jsonResource("gym://notifications", result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
