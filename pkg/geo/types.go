// Package geo provides common geographic types and calculations.
// It centralizes the spherical earth model and the great-circle primitives so
// that every distance in the codebase is computed the same way.
//
// All trigonometry runs in radians; degrees appear only at the exported API.
// Paths crossing the antemeridian and points near the poles are outside the
// supported envelope: the functions return numbers there, but they are not
// specified.
package geo

import (
	"fmt"
	"math"

	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

const (
	// MeanEarthRadiusM is the mean radius of Earth according to WGS-84 in meters.
	MeanEarthRadiusM = 6371000.0

	// FeetPerMeter converts meters to international feet.
	FeetPerMeter = 3.28084
)

// GeoPoint represents a geographic coordinate (latitude and longitude)
// in decimal degrees.
//
// Example:
//
//	a := geo.GeoPoint{Latitude: 44.9778, Longitude: -93.2650}
//	b := geo.GeoPoint{Latitude: 45.0105, Longitude: -93.1012}
//	dist := geo.DefaultEarth().Distance(a, b)
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// String formats the point as "lat,lon".
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// Validate checks that the point has finite, in-range coordinates.
func (p GeoPoint) Validate() error {
	return ValidateCoords(p.Latitude, p.Longitude)
}

// Earth is the spherical earth model. It is passed by value to every
// component that needs a radius; nothing else in the module defines one.
type Earth struct {
	RadiusM float64 `json:"radius_m" yaml:"radius_m"`
}

// DefaultEarth returns the mean-radius sphere.
func DefaultEarth() Earth {
	return Earth{RadiusM: MeanEarthRadiusM}
}

// Validate checks the radius is positive and finite.
func (e Earth) Validate() error {
	if !Finite(e.RadiusM) || e.RadiusM <= 0 {
		return linkerr.Invalid("earth_radius_m", "must be a positive finite value, got %g", e.RadiusM)
	}
	return nil
}

// Distance calculates the great-circle distance between two points
// using the haversine formula. The result is returned in meters.
// Distance is symmetric and zero only for identical points.
func (e Earth) Distance(a, b GeoPoint) float64 {
	return e.RadiusM * centralAngle(a, b)
}

// Destination returns the point reached by travelling distM meters from
// origin along the great circle with initial bearing bearingDeg.
func (e Earth) Destination(origin GeoPoint, bearingDeg, distM float64) GeoPoint {
	lat1 := toRadians(origin.Latitude)
	lon1 := toRadians(origin.Longitude)
	brg := toRadians(bearingDeg)
	delta := distM / e.RadiusM

	sinLat2 := math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(brg)
	lat2 := math.Asin(clampUnit(sinLat2))
	lon2 := lon1 + math.Atan2(
		math.Sin(brg)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*sinLat2,
	)

	return GeoPoint{Latitude: toDegrees(lat2), Longitude: toDegrees(lon2)}
}

// InitialBearing returns the forward azimuth from a to b in degrees,
// normalized to [0, 360).
func InitialBearing(a, b GeoPoint) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLon := toRadians(b.Longitude) - toRadians(a.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeBearing(toDegrees(math.Atan2(y, x)))
}

// NormalizeBearing maps any angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// centralAngle is the haversine central angle between a and b in radians.
func centralAngle(a, b GeoPoint) float64 {
	lat1 := toRadians(a.Latitude)
	lon1 := toRadians(a.Longitude)
	lat2 := toRadians(b.Latitude)
	lon2 := toRadians(b.Longitude)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * math.Asin(math.Sqrt(clampUnit(h)))
}

// BoundingBox represents a geographic bounding box with southwest and northeast corners
type BoundingBox struct {
	MinLat float64 // Southern edge (minimum latitude)
	MinLon float64 // Western edge (minimum longitude)
	MaxLat float64 // Northern edge (maximum latitude)
	MaxLon float64 // Eastern edge (maximum longitude)
}

// NewBoundingBox creates a new empty bounding box
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		MinLat: 90.0, // Start with inverted min/max so any point extends correctly
		MinLon: 180.0,
		MaxLat: -90.0,
		MaxLon: -180.0,
	}
}

// Extend extends the bounding box to include the specified point
func (bb *BoundingBox) Extend(p GeoPoint) {
	bb.MinLat = math.Min(bb.MinLat, p.Latitude)
	bb.MaxLat = math.Max(bb.MaxLat, p.Latitude)
	bb.MinLon = math.Min(bb.MinLon, p.Longitude)
	bb.MaxLon = math.Max(bb.MaxLon, p.Longitude)
}

// Contains reports whether p lies inside the box, edges included.
func (bb *BoundingBox) Contains(p GeoPoint) bool {
	return p.Latitude >= bb.MinLat && p.Latitude <= bb.MaxLat &&
		p.Longitude >= bb.MinLon && p.Longitude <= bb.MaxLon
}

// String returns a string representation of the bounding box
func (bb *BoundingBox) String() string {
	return fmt.Sprintf("(%f,%f,%f,%f)", bb.MinLat, bb.MinLon, bb.MaxLat, bb.MaxLon)
}

// MetersToFeet converts a length in meters to feet.
func MetersToFeet(m float64) float64 { return m * FeetPerMeter }

// FeetToMeters converts a length in feet to meters.
func FeetToMeters(ft float64) float64 { return ft / FeetPerMeter }

func toRadians(deg float64) float64 { return deg * math.Pi / 180.0 }

func toDegrees(rad float64) float64 { return rad * 180.0 / math.Pi }

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// clampUnit guards asin/sqrt inputs against rounding just outside [0,1] or [-1,1].
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
