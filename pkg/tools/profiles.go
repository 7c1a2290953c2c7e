package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// BuildElevationProfileOutput is a built and stored profile.
type BuildElevationProfileOutput struct {
	ProfileID      string                    `json:"profile_id"`
	TotalDistanceM float64                   `json:"total_distance_m"`
	SampleCount    int                       `json:"sample_count"`
	Samples        []profile.ElevationSample `json:"samples"`
}

// BuildElevationProfileTool returns a tool definition for profile building.
func BuildElevationProfileTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Resample terrain elevations along a link into an evenly spaced profile and store it for later clearance calls"),
		mcp.WithArray("samples",
			mcp.Required(),
			mcp.Description("Terrain samples: objects with distance_m from site A, terrain_m and optional vegetation_m"),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of profile samples including both ends"),
		),
		mcp.WithNumber("spacing_m",
			mcp.Description("Sample spacing in meters, used when count is not given"),
		),
		mcp.WithBoolean("include_samples",
			mcp.Description("Return the resampled profile in the response"),
			mcp.DefaultBool(true),
		),
	}
	return mcp.NewTool(ToolBuildElevationProfile, append(opts, siteParams(true)...)...)
}

// HandleBuildElevationProfile implements build_elevation_profile.
func (r *Registry) HandleBuildElevationProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolBuildElevationProfile)
	a := argsOf(req)

	path, err := a.path(r.engine.Config().Earth)
	if err != nil {
		return ErrorResponse(err), nil
	}
	items, err := a.objects("samples")
	if err != nil {
		return ErrorResponse(err), nil
	}
	raw, err := samples(items)
	if err != nil {
		return ErrorResponse(err), nil
	}
	src, err := profile.NewSliceSource(raw)
	if err != nil {
		return ErrorResponse(err), nil
	}

	b := r.builder
	if a.has("count") || a.has("spacing_m") {
		if b.Count, err = a.intOr("count", 0); err != nil {
			return ErrorResponse(err), nil
		}
		if b.SpacingM, err = a.floatOr("spacing_m", 0); err != nil {
			return ErrorResponse(err), nil
		}
	}

	prof, err := b.Build(path, src)
	if err != nil {
		logger.Debug("profile build failed", "error", err)
		return ErrorResponse(err), nil
	}

	entry := r.profiles.Put(path, prof)
	r.metrics.SetCachedProfiles(r.profiles.Len())
	logger.Info("profile stored", "profile_id", entry.ID, "samples", len(prof.Samples))

	output := BuildElevationProfileOutput{
		ProfileID:      entry.ID,
		TotalDistanceM: prof.TotalDistanceM,
		SampleCount:    len(prof.Samples),
	}
	if mcp.ParseBoolean(req, "include_samples", true) {
		output.Samples = prof.Samples
	}
	return jsonResult(logger, output)
}

// TerrainClearanceOutput is the terrain clearance of a stored profile.
type TerrainClearanceOutput struct {
	ProfileID     string           `json:"profile_id"`
	FrequencyGHz  float64          `json:"frequency_ghz"`
	Worst         clearance.Result `json:"worst"`
	MinClearanceM float64          `json:"min_clearance_m"`

	Report clearance.TerrainReport `json:"report"`
}

// TerrainClearanceTool returns a tool definition for terrain clearance.
func TerrainClearanceTool() mcp.Tool {
	return mcp.NewTool(ToolTerrainClearance,
		mcp.WithDescription("Evaluate line-of-sight, earth and Fresnel clearance of every sample of a stored elevation profile"),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("ID returned by build_elevation_profile"),
		),
		mcp.WithNumber("frequency_ghz",
			mcp.Required(),
			mcp.Description("Link frequency in GHz"),
		),
	)
}

// HandleTerrainClearance implements terrain_clearance.
func (r *Registry) HandleTerrainClearance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolTerrainClearance)
	a := argsOf(req)

	if !a.has("profile_id") {
		return ErrorResponse(ValidationError("profile_id", "is required")), nil
	}
	path, entry, err := r.resolvePath(a)
	if err != nil {
		return ErrorResponse(err), nil
	}
	f, err := a.float("frequency_ghz")
	if err != nil {
		return ErrorResponse(err), nil
	}

	rep, err := r.engine.TerrainClearance(path, entry.Profile, f)
	if err != nil {
		return ErrorResponse(err), nil
	}
	return jsonResult(logger, TerrainClearanceOutput{
		ProfileID:     entry.ID,
		FrequencyGHz:  f,
		Worst:         rep.Worst(),
		MinClearanceM: rep.MinClearanceM(),
		Report:        rep,
	})
}
