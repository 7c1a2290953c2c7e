package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/pathclear/pkg/curvature"
	"github.com/NERVsystems/pathclear/pkg/fresnel"
	"github.com/NERVsystems/pathclear/pkg/geo"
)

// PathGeometryOutput describes a link.
type PathGeometryOutput struct {
	DistanceM         float64      `json:"distance_m"`
	DistanceKm        float64      `json:"distance_km"`
	DistanceFt        float64      `json:"distance_ft"`
	InitialBearingDeg float64      `json:"initial_bearing_deg"`
	ReverseBearingDeg float64      `json:"reverse_bearing_deg"`
	Midpoint          geo.GeoPoint `json:"midpoint"`
	ProjectionMethod  string       `json:"projection_method"`

	// Polyline5 encoding of the great circle, for map viewers.
	Polyline string `json:"polyline"`
}

// pathPolylinePoints is the number of great-circle points in
// PathGeometryOutput.Polyline.
const pathPolylinePoints = 33

// PathGeometryTool returns a tool definition for link geometry.
func PathGeometryTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Compute the great-circle distance, initial bearings and midpoint between two sites"),
	}
	return mcp.NewTool(ToolPathGeometry, append(opts, siteParams(true)...)...)
}

// HandlePathGeometry implements path_geometry.
func (r *Registry) HandlePathGeometry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolPathGeometry)

	path, err := argsOf(req).path(r.engine.Config().Earth)
	if err != nil {
		logger.Debug("invalid path", "error", err)
		return ErrorResponse(err), nil
	}

	a, b := path.Start().Point, path.End().Point
	total := path.TotalDistanceM()
	output := PathGeometryOutput{
		DistanceM:         total,
		DistanceKm:        total / 1000,
		DistanceFt:        geo.MetersToFeet(total),
		InitialBearingDeg: path.InitialBearingDeg(),
		ReverseBearingDeg: geo.InitialBearing(b, a),
		Midpoint:          path.Earth().Destination(a, path.InitialBearingDeg(), total/2),
		ProjectionMethod:  string(r.engine.Projector().MethodFor(total)),
		Polyline:          geo.EncodePolyline(path.Earth().GreatCircle(a, b, pathPolylinePoints)),
	}
	return jsonResult(logger, output)
}

// DestinationPointOutput is the point reached from an origin.
type DestinationPointOutput struct {
	Origin      geo.GeoPoint `json:"origin"`
	Destination geo.GeoPoint `json:"destination"`
	BearingDeg  float64      `json:"bearing_deg"`
	DistanceM   float64      `json:"distance_m"`
}

// DestinationPointTool returns a tool definition for destination points.
func DestinationPointTool() mcp.Tool {
	return mcp.NewTool(ToolDestinationPoint,
		mcp.WithDescription("Compute the point reached by travelling a distance along a great circle from an origin"),
		mcp.WithString("latitude",
			mcp.Required(),
			mcp.Description("Origin latitude in decimal degrees or DMS"),
		),
		mcp.WithString("longitude",
			mcp.Required(),
			mcp.Description("Origin longitude in decimal degrees or DMS"),
		),
		mcp.WithNumber("bearing_deg",
			mcp.Required(),
			mcp.Description("Initial bearing in degrees clockwise from true north"),
		),
		mcp.WithNumber("distance_m",
			mcp.Required(),
			mcp.Description("Distance to travel in meters"),
		),
	)
}

// HandleDestinationPoint implements destination_point.
func (r *Registry) HandleDestinationPoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolDestinationPoint)
	a := argsOf(req)

	origin, err := a.point("latitude", "longitude")
	if err != nil {
		return ErrorResponse(err), nil
	}
	bearing, err := a.float("bearing_deg")
	if err != nil {
		return ErrorResponse(err), nil
	}
	dist, err := a.float("distance_m")
	if err != nil {
		return ErrorResponse(err), nil
	}
	if dist < 0 {
		return ErrorResponse(ValidationError("distance_m", "must not be negative, got %g", dist)), nil
	}

	return jsonResult(logger, DestinationPointOutput{
		Origin:      origin,
		Destination: r.engine.Config().Earth.Destination(origin, bearing, dist),
		BearingDeg:  geo.NormalizeBearing(bearing),
		DistanceM:   dist,
	})
}

// FresnelRadiusOutput is a Fresnel zone radius.
type FresnelRadiusOutput struct {
	RadiusM      float64 `json:"radius_m"`
	RadiusFt     float64 `json:"radius_ft"`
	Zone         int     `json:"zone"`
	FrequencyGHz float64 `json:"frequency_ghz"`
}

// FresnelRadiusTool returns a tool definition for Fresnel radii.
func FresnelRadiusTool() mcp.Tool {
	return mcp.NewTool(ToolFresnelRadius,
		mcp.WithDescription("Compute the Fresnel zone radius at a point given its distances to both ends of a link"),
		mcp.WithNumber("distance_from_a_km",
			mcp.Required(),
			mcp.Description("Distance from site A in kilometers"),
		),
		mcp.WithNumber("distance_from_b_km",
			mcp.Required(),
			mcp.Description("Distance from site B in kilometers"),
		),
		mcp.WithNumber("frequency_ghz",
			mcp.Required(),
			mcp.Description("Link frequency in GHz"),
		),
		mcp.WithNumber("zone",
			mcp.Description("Fresnel zone number (1 for the first zone)"),
		),
	)
}

// HandleFresnelRadius implements fresnel_radius.
func (r *Registry) HandleFresnelRadius(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolFresnelRadius)
	a := argsOf(req)

	d1, err := a.float("distance_from_a_km")
	if err != nil {
		return ErrorResponse(err), nil
	}
	d2, err := a.float("distance_from_b_km")
	if err != nil {
		return ErrorResponse(err), nil
	}
	f, err := a.float("frequency_ghz")
	if err != nil {
		return ErrorResponse(err), nil
	}
	zone, err := a.intOr("zone", r.engine.Config().FresnelZone)
	if err != nil {
		return ErrorResponse(err), nil
	}

	radius, err := fresnel.Radius(d1, d2, f, zone)
	if err != nil {
		return ErrorResponse(err), nil
	}
	return jsonResult(logger, FresnelRadiusOutput{
		RadiusM:      radius,
		RadiusFt:     geo.MetersToFeet(radius),
		Zone:         zone,
		FrequencyGHz: f,
	})
}

// EarthBulgeOutput is the effective earth bulge at a point.
type EarthBulgeOutput struct {
	BulgeM           float64 `json:"bulge_m"`
	BulgeFt          float64 `json:"bulge_ft"`
	KFactor          float64 `json:"k_factor"`
	EffectiveRadiusM float64 `json:"effective_radius_m"`
}

// EarthBulgeTool returns a tool definition for earth bulge.
func EarthBulgeTool() mcp.Tool {
	return mcp.NewTool(ToolEarthBulge,
		mcp.WithDescription("Compute the k-factor earth bulge at a distance along a link"),
		mcp.WithNumber("distance_from_a_m",
			mcp.Required(),
			mcp.Description("Distance from site A in meters"),
		),
		mcp.WithNumber("total_distance_m",
			mcp.Required(),
			mcp.Description("Total link length in meters"),
		),
		mcp.WithNumber("k_factor",
			mcp.Description("Effective earth radius factor; defaults to the server setting (4/3 standard atmosphere)"),
		),
	)
}

// HandleEarthBulge implements earth_bulge.
func (r *Registry) HandleEarthBulge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", ToolEarthBulge)
	a := argsOf(req)

	d1, err := a.float("distance_from_a_m")
	if err != nil {
		return ErrorResponse(err), nil
	}
	total, err := a.float("total_distance_m")
	if err != nil {
		return ErrorResponse(err), nil
	}
	if total <= 0 || d1 < 0 || d1 > total {
		return ErrorResponse(ValidationError("distance_from_a_m", "must lie within [0, total_distance_m], got %g of %g", d1, total)), nil
	}

	corrector := r.engine.Corrector()
	if a.has("k_factor") {
		k, err := a.float("k_factor")
		if err != nil {
			return ErrorResponse(err), nil
		}
		if k <= 0 {
			return ErrorResponse(ValidationError("k_factor", "must be positive, got %g", k)), nil
		}
		if corrector, err = curvature.NewCorrector(r.engine.Config().Earth, k); err != nil {
			return ErrorResponse(err), nil
		}
	}

	bulge := corrector.Bulge(d1, total)
	return jsonResult(logger, EarthBulgeOutput{
		BulgeM:           bulge,
		BulgeFt:          geo.MetersToFeet(bulge),
		KFactor:          corrector.KFactor(),
		EffectiveRadiusM: corrector.EffectiveRadiusM(),
	})
}
