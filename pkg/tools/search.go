package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/corridor"
	"github.com/NERVsystems/pathclear/pkg/link"
)

// Corridor defaults, matching a typical turbine search around a licensed
// microwave path.
const (
	DefaultCorridorHalfWidthM = 1000.0
	DefaultCorridorExtensionM = 500.0
)

// SearchCorridorOutput is a corridor with the obstructions it contains.
type SearchCorridorOutput struct {
	HalfWidthM float64              `json:"half_width_m"`
	ExtensionM float64              `json:"extension_m"`
	InsideIDs  []string             `json:"inside"`
	OutsideIDs []string             `json:"outside,omitempty"`
	GeoJSON    *corridor.Collection `json:"geojson"`
}

// SearchCorridorTool returns a tool definition for corridor searches.
func SearchCorridorTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Build the search corridor around a link and site search rings, optionally classify candidate obstructions, and return GeoJSON"),
		mcp.WithNumber("half_width_m",
			mcp.Description("Corridor half width in meters"),
			mcp.DefaultNumber(DefaultCorridorHalfWidthM),
		),
		mcp.WithNumber("extension_m",
			mcp.Description("Corridor extension beyond each site in meters"),
			mcp.DefaultNumber(DefaultCorridorExtensionM),
		),
		mcp.WithNumber("ring_radius_m",
			mcp.Description("Radius of the search ring drawn around each site in meters; 0 draws no rings"),
		),
		mcp.WithArray("obstructions",
			mcp.Description("Candidate obstructions in the evaluate_clearance_batch format"),
		),
		mcp.WithNumber("frequency_ghz",
			mcp.Description("When given, candidates inside the corridor are evaluated and their status is added to the GeoJSON"),
		),
	}
	return mcp.NewTool(ToolSearchCorridor, append(opts, siteParams(true)...)...)
}

// HandleSearchCorridor implements search_corridor.
func (r *Registry) HandleSearchCorridor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolSearchCorridor)
	a := argsOf(req)

	path, err := a.path(r.engine.Config().Earth)
	if err != nil {
		return ErrorResponse(err), nil
	}
	halfWidth, err := a.floatOr("half_width_m", DefaultCorridorHalfWidthM)
	if err != nil {
		return ErrorResponse(err), nil
	}
	extension, err := a.floatOr("extension_m", DefaultCorridorExtensionM)
	if err != nil {
		return ErrorResponse(err), nil
	}
	c, err := corridor.Build(path, halfWidth, extension)
	if err != nil {
		return ErrorResponse(err), nil
	}

	col := corridor.NewCollection()
	col.AddPath(path)
	col.AddCorridor(c)

	ringRadius, err := a.floatOr("ring_radius_m", 0)
	if err != nil {
		return ErrorResponse(err), nil
	}
	if ringRadius > 0 {
		sites := []struct {
			name string
			site link.PathEndpoint
		}{{siteA, path.Start()}, {siteB, path.End()}}
		for _, s := range sites {
			ring, err := corridor.Ring(path.Earth(), s.site.Point, ringRadius, corridor.DefaultRingPoints)
			if err != nil {
				return ErrorResponse(err), nil
			}
			col.AddRing(s.name, ring, ringRadius)
		}
	}

	output := SearchCorridorOutput{
		HalfWidthM: halfWidth,
		ExtensionM: extension,
		InsideIDs:  []string{},
		GeoJSON:    col,
	}

	if a.has("obstructions") {
		items, err := a.objects("obstructions")
		if err != nil {
			return ErrorResponse(err), nil
		}
		if len(items) > r.maxBatch {
			return ErrorResponse(ValidationError("obstructions", "%d items exceed the batch limit of %d", len(items), r.maxBatch)), nil
		}
		var inside []link.Obstruction
		for _, item := range items {
			o, err := obstruction(item)
			if err != nil {
				return ErrorResponse(err), nil
			}
			if c.Contains(o.Point) {
				inside = append(inside, o)
				output.InsideIDs = append(output.InsideIDs, o.ID)
			} else {
				output.OutsideIDs = append(output.OutsideIDs, o.ID)
			}
		}

		var outcomes []clearance.Outcome
		if a.has("frequency_ghz") {
			f, err := a.float("frequency_ghz")
			if err != nil {
				return ErrorResponse(err), nil
			}
			outcomes = r.engine.EvaluateAll(ctx, path, nil, inside, f)
			for _, out := range outcomes {
				r.metrics.ObserveVerdict(corridor.Status(out))
			}
		}
		col.AddObstructions(inside, outcomes)
	}

	logger.Debug("corridor built",
		"half_width_m", halfWidth,
		"inside", len(output.InsideIDs),
		"outside", len(output.OutsideIDs))
	return jsonResult(logger, output)
}
