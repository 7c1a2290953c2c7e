// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Prompt names.
const (
	ClearanceWorkflowPrompt = "clearance_workflow"
	TurbineReviewPrompt     = "turbine_review_examples"
)

// RegisterClearancePrompts registers the link clearance prompts with the MCP server
func RegisterClearancePrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt(ClearanceWorkflowPrompt,
		mcp.WithPromptDescription("Instructions for evaluating obstructions against a microwave link"),
	), ClearanceWorkflowHandler)

	s.AddPrompt(mcp.NewPrompt(TurbineReviewPrompt,
		mcp.WithPromptDescription("Examples of screening wind turbine records against a link"),
	), TurbineReviewExamplesHandler)
}

// ClearanceWorkflowHandler returns the main prompt for the clearance tools
func ClearanceWorkflowHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemPrompt := `You have access to tools that check whether obstructions block a point-to-point microwave link.
When using these tools:

1. Describe each site with site_a_* and site_b_* parameters: latitude, longitude, ground elevation and antenna height above ground, in meters
2. Coordinates may be decimal degrees or DMS strings such as "44-58-40.0 N"
3. Give the link frequency in GHz
4. If an obstruction has no known ground elevation, first call build_elevation_profile with terrain samples and pass the returned profile_id
5. Results are reported in feet; a negative clearance means the obstruction intrudes

READING RESULTS:
- has_los_clearance: the structure stays below the straight line between the antennas
- has_earth_clearance: it also stays below the line after earth curvature (k-factor) correction
- has_fresnel_clearance: it also stays outside the first Fresnel zone
- A turbine's rotor is treated as a disk around the hub, so a hub beside the path can still block it

ERROR HANDLING GUIDELINES:
1. InputValidationError: fix the named parameter and retry
2. InsufficientDataError: supply the missing base elevation or a profile_id
3. GeometryDegenerateError: the two sites coincide; check the coordinates`

	return mcp.NewGetPromptResult(
		"Link Clearance Tool Usage Guidelines",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
		},
	), nil
}

// TurbineReviewExamplesHandler returns examples for evaluate_clearance_batch
func TurbineReviewExamplesHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	examplesPrompt := `EXAMPLES OF TURBINE SCREENING:

User: "Do any of these planned turbines block the Ridge to Valley link?"
AI: *uses search_corridor with a 1000 m half width to find which turbines are near the path*
AI: *uses evaluate_clearance_batch with the turbines inside the corridor*

User: "Here are FAA records with t_hh, t_rd, ylat and xlong fields"
AI: *passes the records unchanged as obstructions; the database field names are accepted*

READING A BATCH:
1. Each obstruction succeeds or fails on its own; failed items carry error_kind
2. rejected lists records that could not be read at all, with their input index
3. summary counts clear, fresnel_blocked, earth_blocked and los_blocked results
4. closest is the evaluated obstruction nearest the path centerline`

	return mcp.NewGetPromptResult(
		"Turbine Review Examples",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(examplesPrompt),
			),
		},
	), nil
}
