package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
)

// RegisterResources registers MCP resources that expose training data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	t := &tools{app: deps.App}

	srv.Resource("discipline://status").
		Name("Status").
		Description("Today's check-in, score, streaks and coaching message").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := t.store(); err != nil {
				return nil, err
			}
			return jsonResource(uri, queries.Status(t.app.Store))
		})

	srv.Resource("discipline://checkins").
		Name("Check-ins").
		Description("All check-ins, newest first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := t.store(); err != nil {
				return nil, err
			}
			return jsonResource(uri, queries.History(t.app.Store, 0))
		})

	srv.Resource("discipline://calendar").
		Name("Training calendar").
		Description("Completed workouts and the daily reminder as iCalendar").
		MimeType("text/calendar").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if err := t.store(); err != nil {
				return nil, err
			}
			out, err := t.export(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "text/calendar",
				Text:     out.Calendar,
			}, nil
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}

