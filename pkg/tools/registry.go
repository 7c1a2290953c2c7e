// Package tools provides the MCP tools of the microwave link clearance
// engine. Handlers only translate arguments and results; every clearance
// figure comes from the clearance package.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NERVsystems/pathclear/pkg/cache"
	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/observability"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// Tool names.
const (
	ToolPathGeometry           = "path_geometry"
	ToolDestinationPoint       = "destination_point"
	ToolFresnelRadius          = "fresnel_radius"
	ToolEarthBulge             = "earth_bulge"
	ToolBuildElevationProfile  = "build_elevation_profile"
	ToolTerrainClearance       = "terrain_clearance"
	ToolEvaluateClearance      = "evaluate_clearance"
	ToolEvaluateClearanceBatch = "evaluate_clearance_batch"
	ToolSearchCorridor         = "search_corridor"
)

// DefaultMaxBatchSize bounds the obstruction list of one batch call.
const DefaultMaxBatchSize = 10000

// Options carries the dependencies of the tool handlers. Zero fields get
// defaults.
type Options struct {
	Engine       *clearance.Evaluator
	Builder      profile.Builder
	Profiles     *cache.ProfileStore
	Metrics      *observability.Metrics
	Limiter      *RateLimiter
	MaxBatchSize int
}

// Registry holds all MCP tool registrations of the clearance service.
type Registry struct {
	logger   *slog.Logger
	engine   *clearance.Evaluator
	builder  profile.Builder
	profiles *cache.ProfileStore
	metrics  *observability.Metrics
	limiter  *RateLimiter
	maxBatch int
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(logger *slog.Logger, opts Options) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Engine == nil {
		e, err := clearance.New(clearance.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("default evaluator: %w", err)
		}
		opts.Engine = e
	}
	if opts.Profiles == nil {
		opts.Profiles = cache.NewProfileStore(256, 30*time.Minute)
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	return &Registry{
		logger:   logger,
		engine:   opts.Engine,
		builder:  opts.Builder,
		profiles: opts.Profiles,
		metrics:  opts.Metrics,
		limiter:  opts.Limiter,
		maxBatch: opts.MaxBatchSize,
	}, nil
}

// ToolDefinition represents a clearance MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     server.ToolHandlerFunc
}

// GetToolDefinitions returns all MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		// Geometry Tools
		{
			Name:        ToolPathGeometry,
			Description: "Great-circle distance, bearings and midpoint of a link",
			Tool:        PathGeometryTool(),
			Handler:     r.HandlePathGeometry,
		},
		{
			Name:        ToolDestinationPoint,
			Description: "Point reached from an origin along a bearing",
			Tool:        DestinationPointTool(),
			Handler:     r.HandleDestinationPoint,
		},
		{
			Name:        ToolFresnelRadius,
			Description: "Fresnel zone radius at a point on a link",
			Tool:        FresnelRadiusTool(),
			Handler:     r.HandleFresnelRadius,
		},
		{
			Name:        ToolEarthBulge,
			Description: "Effective earth bulge at a point on a link",
			Tool:        EarthBulgeTool(),
			Handler:     r.HandleEarthBulge,
		},

		// Profile Tools
		{
			Name:        ToolBuildElevationProfile,
			Description: "Build an evenly spaced elevation profile of a link",
			Tool:        BuildElevationProfileTool(),
			Handler:     r.HandleBuildElevationProfile,
		},
		{
			Name:        ToolTerrainClearance,
			Description: "Clearance of every sample of a stored elevation profile",
			Tool:        TerrainClearanceTool(),
			Handler:     r.HandleTerrainClearance,
		},

		// Clearance Tools
		{
			Name:        ToolEvaluateClearance,
			Description: "Clearance of one obstruction against a link",
			Tool:        EvaluateClearanceTool(),
			Handler:     r.HandleEvaluateClearance,
		},
		{
			Name:        ToolEvaluateClearanceBatch,
			Description: "Clearance of many obstructions against a link",
			Tool:        EvaluateClearanceBatchTool(),
			Handler:     r.HandleEvaluateClearanceBatch,
		},

		// Search Tools
		{
			Name:        ToolSearchCorridor,
			Description: "Search corridor around a link as GeoJSON",
			Tool:        SearchCorridorTool(),
			Handler:     r.HandleSearchCorridor,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, r.instrument(def.Name, def.Handler))
	}
}

// instrument adds rate limiting, a span and metrics around a handler.
func (r *Registry) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ctx, span := observability.StartSpan(ctx, "tool "+name, attribute.String("mcp.tool", name))

		if err := r.limiter.Wait(ctx, name); err != nil {
			r.metrics.ObserveTool(name, observability.StatusRateLimited, time.Since(start))
			observability.EndSpan(span, err)
			return ErrorWithGuidance(&APIError{
				Service:     "RateLimit",
				Message:     fmt.Sprintf("%s is rate limited: %v", name, err),
				Recoverable: true,
				Guidance:    GuidanceRateLimit,
			}), nil
		}

		res, err := h(ctx, req)

		status := observability.StatusOK
		if err != nil || (res != nil && res.IsError) {
			status = observability.StatusError
		}
		r.metrics.ObserveTool(name, status, time.Since(start))
		observability.EndSpan(span, err)
		return res, err
	}
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(logger *slog.Logger, v any) (*mcp.CallToolResult, error) {
	resultBytes, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse(fmt.Errorf("failed to generate result: %w", err)), nil
	}
	return mcp.NewToolResultText(string(resultBytes)), nil
}

// resolvePath returns the path of the stored profile named by profile_id, or
// the path described by the site arguments when no profile_id is given.
func (r *Registry) resolvePath(a args) (link.Path, *cache.Entry, error) {
	if id := a.string("profile_id"); id != "" {
		e, ok := r.profiles.Get(id)
		if !ok {
			return link.Path{}, nil, &APIError{
				Service:     "ProfileStore",
				Message:     fmt.Sprintf("profile %s not found", id),
				Recoverable: true,
				Guidance:    GuidanceProfile,
			}
		}
		return e.Path, &e, nil
	}
	p, err := a.path(r.engine.Config().Earth)
	return p, nil, err
}

// siteParams are the schema options shared by every tool taking a link.
// Coordinates are strings so DMS values validate; plain numbers are still
// read. When required is false the site arguments are an alternative to
// profile_id, and the handler enforces them.
func siteParams(required bool) []mcp.ToolOption {
	var opts []mcp.ToolOption
	for _, site := range []string{siteA, siteB} {
		req := []mcp.PropertyOption{}
		if required {
			req = append(req, mcp.Required())
		}
		opts = append(opts,
			mcp.WithString(site+"_latitude", append(req,
				mcp.Description("Latitude of "+site+" in decimal degrees or DMS, e.g. \"44.9778\" or \"44-58-40.0 N\""))...),
			mcp.WithString(site+"_longitude", append(req,
				mcp.Description("Longitude of "+site+" in decimal degrees or DMS, e.g. \"-93.265\" or \"93-15-54.0 W\""))...),
			mcp.WithNumber(site+"_ground_elevation_m", append(req,
				mcp.Description("Ground elevation at "+site+" in meters"))...),
			mcp.WithNumber(site+"_antenna_height_m", append(req,
				mcp.Description("Antenna height above ground at "+site+" in meters"))...),
		)
	}
	return opts
}
