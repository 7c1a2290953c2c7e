package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// Site argument prefixes.
const (
	siteA = "site_a"
	siteB = "site_b"
)

// args wraps the argument map of one call. Numbers may arrive as JSON
// numbers or numeric strings.
type args map[string]any

func argsOf(req mcp.CallToolRequest) args {
	if req.Params.Arguments == nil {
		return args{}
	}
	return args(req.Params.Arguments)
}

func (a args) has(name string) bool {
	v, ok := a[name]
	return ok && v != nil && v != ""
}

func (a args) float(name string) (float64, error) {
	v, ok := a[name]
	if !ok || v == nil || v == "" {
		return 0, ValidationError(name, "is required")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, ValidationError(name, "not a number: %v", v)
	}
	if !geo.Finite(f) {
		return 0, ValidationError(name, "must be finite")
	}
	return f, nil
}

func (a args) floatOr(name string, def float64) (float64, error) {
	if !a.has(name) {
		return def, nil
	}
	return a.float(name)
}

// floatPtr returns nil when name is absent.
func (a args) floatPtr(name string) (*float64, error) {
	if !a.has(name) {
		return nil, nil
	}
	f, err := a.float(name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (a args) intOr(name string, def int) (int, error) {
	if !a.has(name) {
		return def, nil
	}
	f, err := cast.ToFloat64E(a[name])
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, ValidationError(name, "not an integer: %v", a[name])
	}
	return int(f), nil
}

func (a args) string(name string) string {
	return strings.TrimSpace(cast.ToString(a[name]))
}

// coordinate accepts decimal degrees as a number or a string, or a DMS
// string such as "44-58-40.0 N".
func (a args) coordinate(name string) (float64, error) {
	v, ok := a[name]
	if !ok || v == nil || v == "" {
		return 0, ValidationError(name, "is required")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return 0, ValidationError(name, "not a coordinate: %v", v)
	}
	f, err := geo.ParseCoordinate(s)
	if err != nil {
		return 0, err
	}
	return f, nil
}

func (a args) point(latName, lonName string) (geo.GeoPoint, error) {
	lat, err := a.coordinate(latName)
	if err != nil {
		return geo.GeoPoint{}, err
	}
	lon, err := a.coordinate(lonName)
	if err != nil {
		return geo.GeoPoint{}, err
	}
	p := geo.GeoPoint{Latitude: lat, Longitude: lon}
	return p, p.Validate()
}

// endpoint reads <prefix>_latitude, <prefix>_longitude,
// <prefix>_ground_elevation_m and <prefix>_antenna_height_m. All four are
// required.
func (a args) endpoint(prefix string) (link.PathEndpoint, error) {
	p, err := a.point(prefix+"_latitude", prefix+"_longitude")
	if err != nil {
		return link.PathEndpoint{}, err
	}
	ground, err := a.float(prefix + "_ground_elevation_m")
	if err != nil {
		return link.PathEndpoint{}, err
	}
	antenna, err := a.float(prefix + "_antenna_height_m")
	if err != nil {
		return link.PathEndpoint{}, err
	}
	return link.PathEndpoint{Point: p, GroundElevationM: ground, AntennaHeightM: antenna}, nil
}

func (a args) path(earth geo.Earth) (link.Path, error) {
	start, err := a.endpoint(siteA)
	if err != nil {
		return link.Path{}, err
	}
	end, err := a.endpoint(siteB)
	if err != nil {
		return link.Path{}, err
	}
	return link.NewPath(start, end, earth)
}

// objects reads an array of JSON objects.
func (a args) objects(name string) ([]map[string]any, error) {
	arr, err := ParseArray(a, name)
	if err != nil {
		return nil, ValidationError(name, "%v", err)
	}
	out := make([]map[string]any, 0, len(arr))
	for i, item := range arr {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("%s[%d]", name, i), "must be an object")
		}
		out = append(out, m)
	}
	return out, nil
}

// ParseArray extracts an array parameter, accepting a JSON array or its
// string encoding.
func ParseArray(a map[string]any, paramName string) ([]any, error) {
	param, ok := a[paramName]
	if !ok || param == nil {
		return nil, fmt.Errorf("parameter %s not found", paramName)
	}

	if arr, ok := param.([]any); ok {
		return arr, nil
	}

	var raw []byte
	if s, ok := param.(string); ok {
		raw = []byte(s)
	} else {
		var err error
		if raw, err = json.Marshal(param); err != nil {
			return nil, fmt.Errorf("failed to marshal parameter: %v", err)
		}
	}

	var result []any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse array: %v", err)
	}
	return result, nil
}

// samples converts the "samples" argument into elevation samples.
func samples(items []map[string]any) ([]profile.ElevationSample, error) {
	out := make([]profile.ElevationSample, 0, len(items))
	for i, m := range items {
		item := args(m)
		field := func(name string) string { return fmt.Sprintf("samples[%d].%s", i, name) }

		d, err := item.float("distance_m")
		if err != nil {
			return nil, ValidationError(field("distance_m"), "must be a finite number")
		}
		terrain, err := item.float("terrain_m")
		if err != nil {
			return nil, ValidationError(field("terrain_m"), "must be a finite number")
		}
		veg, err := item.floatPtr("vegetation_m")
		if err != nil {
			return nil, ValidationError(field("vegetation_m"), "must be a finite number")
		}
		out = append(out, profile.ElevationSample{DistanceM: d, TerrainM: terrain, VegetationM: veg})
	}
	return out, nil
}

// turbineKeys mark an object as a turbine record rather than a generic
// structure.
var turbineKeys = []string{
	"hub_height_m", "total_height_m", "rotor_diameter_m",
	"t_hh", "t_ttlh", "t_rd", "case_id", "ylat", "xlong",
}

// obstruction converts one object into an obstruction. Generic structures
// use id, latitude, longitude, base_elevation_m, structure_height_m and
// rotor_radius_m. Turbine records use hub/total height and rotor diameter in
// meters, with turbine-database aliases accepted.
func obstruction(m map[string]any) (link.Obstruction, error) {
	a := args(m)
	base, err := a.floatPtr("base_elevation_m")
	if err != nil {
		return link.Obstruction{}, err
	}

	turbine := false
	for _, k := range turbineKeys {
		if a.has(k) {
			turbine = true
			break
		}
	}
	if turbine {
		return turbineObstruction(a, base)
	}

	p, err := a.point("latitude", "longitude")
	if err != nil {
		return link.Obstruction{}, err
	}
	height, err := a.float("structure_height_m")
	if err != nil {
		return link.Obstruction{}, err
	}
	rotor, err := a.floatOr("rotor_radius_m", 0)
	if err != nil {
		return link.Obstruction{}, err
	}
	o := link.Obstruction{
		ID:               a.string("id"),
		Point:            p,
		StructureHeightM: height,
		RotorRadiusM:     rotor,
	}
	if base != nil {
		o = o.WithBase(*base)
	}
	return o, o.Validate()
}

func turbineObstruction(a args, base *float64) (link.Obstruction, error) {
	spec := link.TurbineSpec{
		ID:             a.string("id"),
		CaseID:         a.string("case_id"),
		BaseElevationM: base,
	}
	var err error
	coords := []struct {
		name string
		dst  *float64
	}{
		{"latitude", &spec.Latitude},
		{"longitude", &spec.Longitude},
		{"ylat", &spec.YLat},
		{"xlong", &spec.XLong},
	}
	for _, c := range coords {
		if a.has(c.name) {
			if *c.dst, err = a.coordinate(c.name); err != nil {
				return link.Obstruction{}, err
			}
		}
	}
	heights := []struct {
		name string
		dst  *float64
	}{
		{"hub_height_m", &spec.HubHeightM},
		{"total_height_m", &spec.TotalHeightM},
		{"rotor_diameter_m", &spec.RotorDiameterM},
		{"t_hh", &spec.THH},
		{"t_ttlh", &spec.TTtlH},
		{"t_rd", &spec.TRD},
	}
	for _, h := range heights {
		if *h.dst, err = a.floatOr(h.name, 0); err != nil {
			return link.Obstruction{}, err
		}
	}
	return spec.Obstruction()
}
