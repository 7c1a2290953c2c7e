// Package corridor builds search areas around a link: a corridor polygon
// along the path, extended past both sites, and circular rings around the
// sites. They are used to pre-filter candidate obstructions before they are
// evaluated, and exported as GeoJSON.
package corridor

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

const (
	// DefaultRingPoints is the number of vertices of a site search ring.
	DefaultRingPoints = 36

	// maxSegmentM bounds the spacing of corridor edge vertices so the edges
	// follow the curved path on long links.
	maxSegmentM = 5000.0
)

// Corridor is a polygon of fixed half width around a path.
type Corridor struct {
	Polygon    orb.Polygon
	HalfWidthM float64
	ExtensionM float64
	Bounds     *geo.BoundingBox
}

// Build returns the corridor extending halfWidthM to each side of path and
// extensionM beyond each site.
func Build(path link.Path, halfWidthM, extensionM float64) (*Corridor, error) {
	if path.IsZero() {
		return nil, linkerr.Degenerate("path is not initialized")
	}
	if !geo.Finite(halfWidthM) || halfWidthM <= 0 {
		return nil, linkerr.Invalid("half_width_m", "must be a positive finite value, got %g", halfWidthM)
	}
	if !geo.Finite(extensionM) || extensionM < 0 {
		return nil, linkerr.Invalid("extension_m", "must be a non-negative finite value, got %g", extensionM)
	}

	earth := path.Earth()
	a, b := path.Start().Point, path.End().Point

	// Extend backwards from the start and forwards from the end.
	start := earth.Destination(a, geo.InitialBearing(a, b)+180, extensionM)
	end := earth.Destination(b, geo.InitialBearing(b, a)+180, extensionM)

	length := earth.Distance(start, end)
	n := int(length/maxSegmentM) + 1
	bearing := geo.InitialBearing(start, end)

	left := make([]orb.Point, 0, n+1)
	right := make([]orb.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		var on geo.GeoPoint
		var heading float64
		switch i {
		case 0:
			on, heading = start, bearing
		case n:
			on, heading = end, geo.InitialBearing(end, start)+180
		default:
			on = earth.Destination(start, bearing, length*float64(i)/float64(n))
			heading = geo.InitialBearing(on, end)
		}
		left = append(left, toOrb(earth.Destination(on, heading-90, halfWidthM)))
		right = append(right, toOrb(earth.Destination(on, heading+90, halfWidthM)))
	}

	ring := make(orb.Ring, 0, 2*len(left)+1)
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	ring = append(ring, ring[0])

	return &Corridor{
		Polygon:    orb.Polygon{ring},
		HalfWidthM: halfWidthM,
		ExtensionM: extensionM,
		Bounds:     bounds(ring),
	}, nil
}

// Contains reports whether p lies inside the corridor.
func (c *Corridor) Contains(p geo.GeoPoint) bool {
	if !c.Bounds.Contains(p) {
		return false
	}
	return planar.PolygonContains(c.Polygon, toOrb(p))
}

// Filter returns the obstructions located inside the corridor, in order.
func (c *Corridor) Filter(obstructions []link.Obstruction) []link.Obstruction {
	var out []link.Obstruction
	for _, o := range obstructions {
		if c.Contains(o.Point) {
			out = append(out, o)
		}
	}
	return out
}

// Ring returns a closed ring of n vertices at radiusM around center. n below
// 3 selects DefaultRingPoints.
func Ring(earth geo.Earth, center geo.GeoPoint, radiusM float64, n int) (orb.Ring, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if !geo.Finite(radiusM) || radiusM <= 0 {
		return nil, linkerr.Invalid("radius_m", "must be a positive finite value, got %g", radiusM)
	}
	if n < 3 {
		n = DefaultRingPoints
	}

	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		ring = append(ring, toOrb(earth.Destination(center, 360*float64(i)/float64(n), radiusM)))
	}
	return append(ring, ring[0]), nil
}

func toOrb(p geo.GeoPoint) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

func fromOrb(p orb.Point) geo.GeoPoint {
	return geo.GeoPoint{Latitude: p.Lat(), Longitude: p.Lon()}
}

func bounds(ring orb.Ring) *geo.BoundingBox {
	bb := geo.NewBoundingBox()
	for _, p := range ring {
		bb.Extend(fromOrb(p))
	}
	return bb
}
