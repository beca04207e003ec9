package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common training workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_checkin").
		Description("Walk through today's check-in and get a coaching message.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Daily Check-in",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me log today's training. Please:

1. Read the discipline://status resource to see whether I already checked in today
2. Ask me whether I planned to train today and whether I did
3. Log it with the training.checkin tool, adding my note if I give one
4. Show me the returned score, streak and coaching message

If I already checked in today, confirm before updating the entry.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("weekly_review").
		Description("Review the last week of training and adjust the plan.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Weekly Training Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Review my last week of training. Please:

1. Call training.stats with days=7 and training.trend with days=14
2. Read discipline://status for my profile and current streak
3. Compare completed workouts with the days per week in my profile

Based on this:
- Tell me whether my plan is realistic
- Point out the days I tend to skip
- Suggest one concrete change for next week`,
						},
					},
				},
			}, nil
		})

	return nil
}
