// Package link holds the immutable inputs of a clearance analysis: the two
// endpoints of a microwave hop, the path between them and the candidate
// obstructions. All heights are meters; the unit is carried in every field name.
package link

import (
	"fmt"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// PathEndpoint is one antenna site.
type PathEndpoint struct {
	Point            geo.GeoPoint `json:"point"`
	GroundElevationM float64      `json:"ground_elevation_m"`
	AntennaHeightM   float64      `json:"antenna_height_m"` // centerline above ground
}

// EffectiveHeightM is the antenna centerline height above the vertical datum.
func (e PathEndpoint) EffectiveHeightM() float64 {
	return e.GroundElevationM + e.AntennaHeightM
}

// Validate checks coordinates and heights.
func (e PathEndpoint) Validate() error {
	if err := e.Point.Validate(); err != nil {
		return err
	}
	if !geo.Finite(e.GroundElevationM) {
		return linkerr.Invalid("ground_elevation_m", "must be finite, got %g", e.GroundElevationM)
	}
	if !geo.Finite(e.AntennaHeightM) || e.AntennaHeightM < 0 {
		return linkerr.Invalid("antenna_height_m", "must be a non-negative finite value, got %g", e.AntennaHeightM)
	}
	return nil
}

// Path is a validated link between two endpoints. The derived distance and
// bearing are computed once by NewPath and never change.
type Path struct {
	start, end PathEndpoint
	earth      geo.Earth
	totalM     float64
	bearingDeg float64
}

// NewPath validates both endpoints and derives the path attributes using
// the supplied earth model.
func NewPath(start, end PathEndpoint, earth geo.Earth) (Path, error) {
	if err := earth.Validate(); err != nil {
		return Path{}, err
	}
	if err := start.Validate(); err != nil {
		return Path{}, fmt.Errorf("start endpoint: %w", err)
	}
	if err := end.Validate(); err != nil {
		return Path{}, fmt.Errorf("end endpoint: %w", err)
	}

	total := earth.Distance(start.Point, end.Point)
	if total == 0 {
		return Path{}, linkerr.Degenerate("start and end endpoints coincide at %v", start.Point)
	}

	return Path{
		start:      start,
		end:        end,
		earth:      earth,
		totalM:     total,
		bearingDeg: geo.InitialBearing(start.Point, end.Point),
	}, nil
}

// Start returns the first endpoint.
func (p Path) Start() PathEndpoint { return p.start }

// End returns the second endpoint.
func (p Path) End() PathEndpoint { return p.end }

// Earth returns the earth model the path was measured on.
func (p Path) Earth() geo.Earth { return p.earth }

// TotalDistanceM is the great-circle length of the path in meters.
func (p Path) TotalDistanceM() float64 { return p.totalM }

// InitialBearingDeg is the forward azimuth at the start, in [0, 360).
func (p Path) InitialBearingDeg() float64 { return p.bearingDeg }

// IsZero reports whether p was never constructed by NewPath.
func (p Path) IsZero() bool { return p.totalM == 0 }

// Reversed returns the same link measured from the other end.
func (p Path) Reversed() Path {
	return Path{
		start:      p.end,
		end:        p.start,
		earth:      p.earth,
		totalM:     p.earth.Distance(p.end.Point, p.start.Point),
		bearingDeg: geo.InitialBearing(p.end.Point, p.start.Point),
	}
}

// String describes the path for logs.
func (p Path) String() string {
	return fmt.Sprintf("%v -> %v (%.1f m @ %.2f°)", p.start.Point, p.end.Point, p.totalM, p.bearingDeg)
}
