package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/corridor"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// obstructionParams are the schema options describing one obstruction in
// flat form.
func obstructionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("obstruction_id",
			mcp.Description("Identifier echoed in the result"),
		),
		mcp.WithString("latitude",
			mcp.Required(),
			mcp.Description("Obstruction latitude in decimal degrees or DMS"),
		),
		mcp.WithString("longitude",
			mcp.Required(),
			mcp.Description("Obstruction longitude in decimal degrees or DMS"),
		),
		mcp.WithNumber("base_elevation_m",
			mcp.Description("Ground elevation at the obstruction in meters; taken from the profile when omitted"),
		),
		mcp.WithNumber("structure_height_m",
			mcp.Description("Structure (or turbine hub) height above ground in meters"),
		),
		mcp.WithNumber("rotor_radius_m",
			mcp.Description("Rotor radius in meters, 0 for towers and buildings"),
		),
		mcp.WithNumber("total_height_m",
			mcp.Description("Turbine tip height in meters, used when the hub height is unknown"),
		),
		mcp.WithNumber("rotor_diameter_m",
			mcp.Description("Turbine rotor diameter in meters"),
		),
	}
}

// EvaluateClearanceOutput is the verdict for one obstruction.
type EvaluateClearanceOutput struct {
	Status string           `json:"status"`
	Result clearance.Result `json:"result"`
}

// EvaluateClearanceTool returns a tool definition for single evaluations.
func EvaluateClearanceTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Evaluate line-of-sight, earth curvature and Fresnel zone clearance of one obstruction against a link. Results are in feet."),
		mcp.WithNumber("frequency_ghz",
			mcp.Required(),
			mcp.Description("Link frequency in GHz"),
		),
		mcp.WithString("profile_id",
			mcp.Description("Stored profile to take the link and unknown base elevations from; replaces the site parameters"),
		),
	}
	opts = append(opts, obstructionParams()...)
	return mcp.NewTool(ToolEvaluateClearance, append(opts, siteParams(false)...)...)
}

// HandleEvaluateClearance implements evaluate_clearance.
func (r *Registry) HandleEvaluateClearance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolEvaluateClearance)
	a := argsOf(req)

	path, entry, err := r.resolvePath(a)
	if err != nil {
		return ErrorResponse(err), nil
	}
	f, err := a.float("frequency_ghz")
	if err != nil {
		return ErrorResponse(err), nil
	}

	// The flat form names the id obstruction_id; the shared parser reads id.
	fields := make(map[string]any, len(a))
	for k, v := range a {
		fields[k] = v
	}
	fields["id"] = a.string("obstruction_id")
	if fields["id"] == "" {
		fields["id"] = "obstruction"
	}
	delete(fields, "case_id")
	o, err := obstruction(fields)
	if err != nil {
		return ErrorResponse(err), nil
	}

	var res clearance.Result
	if entry != nil {
		res, err = r.engine.EvaluateOnProfile(path, entry.Profile, o, f)
	} else {
		res, err = r.engine.Evaluate(path, o, f)
	}
	if err != nil {
		logger.Debug("evaluation failed", "obstruction_id", o.ID, "error", err)
		return ErrorResponse(err), nil
	}

	status := corridor.Status(clearance.Outcome{ObstructionID: o.ID, Result: &res})
	r.metrics.ObserveVerdict(status)
	return jsonResult(logger, EvaluateClearanceOutput{Status: status, Result: res})
}

// EvaluateClearanceBatchOutput is the verdict for a list of obstructions.
type EvaluateClearanceBatchOutput struct {
	RunID      string              `json:"run_id"`
	Summary    clearance.Summary   `json:"summary"`
	Closest    *clearance.Result   `json:"closest,omitempty"`
	Outcomes   []clearance.Outcome `json:"outcomes"`
	Rejected   []clearance.Outcome `json:"rejected,omitempty"`
	OutsideIDs []string            `json:"outside_corridor,omitempty"`
}

// EvaluateClearanceBatchTool returns a tool definition for batch evaluations.
func EvaluateClearanceBatchTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Evaluate the clearance of many obstructions against one link. Each obstruction succeeds or fails independently; results are in input order and in feet."),
		mcp.WithNumber("frequency_ghz",
			mcp.Required(),
			mcp.Description("Link frequency in GHz"),
		),
		mcp.WithArray("obstructions",
			mcp.Required(),
			mcp.Description("Obstructions: objects with id, latitude, longitude, base_elevation_m, structure_height_m and rotor_radius_m, or turbine records with hub_height_m/total_height_m/rotor_diameter_m (t_hh, t_ttlh, t_rd, ylat, xlong, case_id accepted)"),
		),
		mcp.WithString("profile_id",
			mcp.Description("Stored profile to take the link and unknown base elevations from; replaces the site parameters"),
		),
		mcp.WithNumber("corridor_half_width_m",
			mcp.Description("Only evaluate obstructions within this distance of the link; 0 evaluates all"),
		),
	}
	return mcp.NewTool(ToolEvaluateClearanceBatch, append(opts, siteParams(false)...)...)
}

// HandleEvaluateClearanceBatch implements evaluate_clearance_batch.
func (r *Registry) HandleEvaluateClearanceBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := uuid.NewString()
	logger := r.logger.With("tool", ToolEvaluateClearanceBatch, "run_id", runID)
	a := argsOf(req)

	path, entry, err := r.resolvePath(a)
	if err != nil {
		return ErrorResponse(err), nil
	}
	f, err := a.float("frequency_ghz")
	if err != nil {
		return ErrorResponse(err), nil
	}
	items, err := a.objects("obstructions")
	if err != nil {
		return ErrorResponse(err), nil
	}
	if len(items) > r.maxBatch {
		return ErrorWithGuidance(&APIError{
			Service:     "Validation",
			Message:     fmt.Sprintf("%d obstructions exceed the batch limit of %d", len(items), r.maxBatch),
			Recoverable: true,
			Guidance:    GuidanceBatchSize,
		}), nil
	}

	output := EvaluateClearanceBatchOutput{RunID: runID}

	// Records that cannot be parsed are reported with their input index and
	// never reach the evaluator.
	obs := make([]link.Obstruction, 0, len(items))
	index := make([]int, 0, len(items))
	for i, item := range items {
		o, err := obstruction(item)
		if err != nil {
			rejected := clearance.Outcome{
				Index:         i,
				ObstructionID: args(item).string("id"),
				Err:           err,
				ErrorMessage:  err.Error(),
			}
			if k := linkerr.KindOf(err); k != 0 {
				rejected.ErrorKind = k.String()
			}
			output.Rejected = append(output.Rejected, rejected)
			continue
		}
		obs = append(obs, o)
		index = append(index, i)
	}

	halfWidth, err := a.floatOr("corridor_half_width_m", 0)
	if err != nil {
		return ErrorResponse(err), nil
	}
	if halfWidth > 0 {
		c, err := corridor.Build(path, halfWidth, 0)
		if err != nil {
			return ErrorResponse(err), nil
		}
		kept, keptIndex := obs[:0], index[:0]
		for i, o := range obs {
			if c.Contains(o.Point) {
				kept = append(kept, o)
				keptIndex = append(keptIndex, index[i])
			} else {
				output.OutsideIDs = append(output.OutsideIDs, o.ID)
			}
		}
		obs, index = kept, keptIndex
	}

	var prof *profile.Profile
	if entry != nil {
		prof = &entry.Profile
	}
	outcomes := r.engine.EvaluateAll(ctx, path, prof, obs, f)
	for i := range outcomes {
		outcomes[i].Index = index[i]
		r.metrics.ObserveVerdict(corridor.Status(outcomes[i]))
	}

	output.Outcomes = outcomes
	output.Summary = clearance.Summarize(outcomes)
	if closest, ok := clearance.Closest(outcomes); ok {
		output.Closest = &closest
	}

	logger.Info("batch evaluated",
		"total", len(items),
		"evaluated", output.Summary.Evaluated,
		"failed", output.Summary.Failed,
		"rejected", len(output.Rejected),
		"outside_corridor", len(output.OutsideIDs))
	return jsonResult(logger, output)
}
