// Package projection locates an arbitrary point relative to a link path:
// along-track distance from the start, lateral (cross-track) offset and side.
//
// Long paths use the spherical cross-track/along-track decomposition on
// n-vectors. Paths shorter than a configurable threshold may use a local
// equirectangular plane centred on the path start, where the two agree to
// within a few centimetres.
package projection

import (
	"math"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// Method selects the projection algorithm.
type Method string

const (
	// MethodAuto picks planar for paths shorter than the planar threshold
	// and spherical otherwise.
	MethodAuto Method = "auto"
	// MethodSpherical uses great-circle along-track and cross-track
	// distances.
	MethodSpherical Method = "spherical"
	// MethodPlanar uses a local equirectangular frame centred on site A.
	MethodPlanar Method = "planar"
)

// DefaultPlanarThresholdM is the path length below which MethodAuto uses the
// planar frame.
const DefaultPlanarThresholdM = 1000.0

// CenterToleranceM is the cross-track distance below which a point is taken
// to lie on the centerline. It is above the rounding noise of both methods.
const CenterToleranceM = 1e-6

// Side is the side of the path a point lies on, relative to the direction of
// travel from start to end.
type Side string

const (
	// SideLeft is left of the path looking from start to end.
	SideLeft Side = "left"
	// SideRight is right of the path looking from start to end.
	SideRight Side = "right"
	// SideCenter is within CenterToleranceM of the centerline.
	SideCenter Side = "center"
)

// Config selects how points are projected. It is fixed at construction.
type Config struct {
	Earth            geo.Earth `yaml:"-"`
	Method           Method    `yaml:"method"`
	PlanarThresholdM float64   `yaml:"planar_threshold_m"`
}

// DefaultConfig returns the auto method with the default threshold.
func DefaultConfig() Config {
	return Config{
		Earth:            geo.DefaultEarth(),
		Method:           MethodAuto,
		PlanarThresholdM: DefaultPlanarThresholdM,
	}
}

// Projection is the location of a point relative to a path, in meters.
type Projection struct {
	AlongTrackM    float64 `json:"along_track_m"`     // clamped to [0, total]
	RawAlongTrackM float64 `json:"raw_along_track_m"` // before clamping; negative before the start
	LateralOffsetM float64 `json:"lateral_offset_m"`  // unsigned
	Side           Side    `json:"side"`
	Clamped        bool    `json:"clamped"`
	Method         Method  `json:"method"`
}

// Projector projects points onto paths using a fixed Config.
type Projector struct {
	cfg Config
}

// New validates cfg and returns a Projector.
func New(cfg Config) (*Projector, error) {
	if err := cfg.Earth.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Method {
	case "":
		cfg.Method = MethodAuto
	case MethodAuto, MethodSpherical, MethodPlanar:
	default:
		return nil, linkerr.Invalid("projection_method", "unknown method %q", cfg.Method)
	}
	if !geo.Finite(cfg.PlanarThresholdM) || cfg.PlanarThresholdM < 0 {
		return nil, linkerr.Invalid("planar_threshold_m", "must be a non-negative finite value, got %g", cfg.PlanarThresholdM)
	}
	return &Projector{cfg: cfg}, nil
}

// Config returns the projector's configuration.
func (pr *Projector) Config() Config { return pr.cfg }

// MethodFor returns the concrete method used for a path of the given length.
func (pr *Projector) MethodFor(totalM float64) Method {
	if pr.cfg.Method != MethodAuto {
		return pr.cfg.Method
	}
	if totalM < pr.cfg.PlanarThresholdM {
		return MethodPlanar
	}
	return MethodSpherical
}

// Project locates point relative to path. Along-track positions before the
// start or past the end are clamped to the nearest endpoint and reported
// with Clamped set.
func (pr *Projector) Project(path link.Path, point geo.GeoPoint) (Projection, error) {
	if path.IsZero() {
		return Projection{}, linkerr.Degenerate("path is not initialized")
	}
	if err := point.Validate(); err != nil {
		return Projection{}, err
	}
	if path.Earth() != pr.cfg.Earth {
		return Projection{}, linkerr.Invalid("earth_radius_m",
			"path measured on radius %g m, projector configured for %g m", path.Earth().RadiusM, pr.cfg.Earth.RadiusM)
	}

	method := pr.MethodFor(path.TotalDistanceM())
	var along, xt float64
	if method == MethodPlanar {
		along, xt = pr.planar(path, point)
	} else {
		along, xt = pr.spherical(path, point)
	}
	if math.Abs(xt) < CenterToleranceM {
		xt = 0
	}

	res := Projection{
		RawAlongTrackM: along,
		AlongTrackM:    along,
		LateralOffsetM: math.Abs(xt),
		Method:         method,
	}
	switch {
	case xt > 0:
		res.Side = SideLeft
	case xt < 0:
		res.Side = SideRight
	default:
		res.Side = SideCenter
	}

	total := path.TotalDistanceM()
	if along < 0 {
		res.AlongTrackM, res.Clamped = 0, true
	} else if along > total {
		res.AlongTrackM, res.Clamped = total, true
	}
	return res, nil
}

// spherical returns the along-track distance and the signed cross-track
// distance (positive to the left) using the great circle through both
// endpoints.
func (pr *Projector) spherical(path link.Path, point geo.GeoPoint) (along, xt float64) {
	r := pr.cfg.Earth.RadiusM
	a := geo.UnitVector(path.Start().Point)
	b := geo.UnitVector(path.End().Point)
	p := geo.UnitVector(point)

	// Normal of the path's great-circle plane; points left of travel.
	c := a.Cross(b).Unit()

	s := p.Dot(c)
	xt = r * math.Asin(math.Max(-1, math.Min(1, s)))

	// Foot of the perpendicular on the great circle.
	foot := p.Sub(c.Scale(s))
	along = r * math.Atan2(a.Cross(foot).Dot(c), a.Dot(foot))
	return along, xt
}

// planar projects onto the chord in a local equirectangular frame with
// origin at the path start, x east and y north.
func (pr *Projector) planar(path link.Path, point geo.GeoPoint) (along, xt float64) {
	r := pr.cfg.Earth.RadiusM
	o := path.Start().Point
	cosLat := math.Cos(o.Latitude * math.Pi / 180)

	local := func(g geo.GeoPoint) (x, y float64) {
		x = (g.Longitude - o.Longitude) * math.Pi / 180 * r * cosLat
		y = (g.Latitude - o.Latitude) * math.Pi / 180 * r
		return x, y
	}

	bx, by := local(path.End().Point)
	px, py := local(point)

	chord := math.Hypot(bx, by)
	ux, uy := bx/chord, by/chord

	// Scale the chord projection onto the great-circle length so that the
	// end point maps exactly to the path total.
	along = (px*ux + py*uy) * path.TotalDistanceM() / chord
	xt = ux*py - uy*px
	return along, xt
}
