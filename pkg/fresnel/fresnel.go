// Package fresnel computes Fresnel-zone radii for microwave links.
package fresnel

import (
	"math"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// Coefficient of the RF engineering formula with distances in kilometers,
// frequency in GHz and radius in meters.
const Coefficient = 17.32

// Radius returns the radius in meters of Fresnel zone n at a point d1Km from
// one end and d2Km from the other. Points at or beyond an endpoint have
// radius zero.
func Radius(d1Km, d2Km, frequencyGHz float64, zone int) (float64, error) {
	if !geo.Finite(frequencyGHz) || frequencyGHz <= 0 {
		return 0, linkerr.InvalidFrequency(frequencyGHz)
	}
	if zone < 1 {
		return 0, linkerr.Invalid("fresnel_zone", "zone number must be at least 1, got %d", zone)
	}
	if !geo.Finite(d1Km, d2Km) {
		return 0, linkerr.Invalid("distance", "non-finite distance (%g, %g)", d1Km, d2Km)
	}
	if d1Km <= 0 || d2Km <= 0 {
		return 0, nil
	}
	return Coefficient * math.Sqrt(float64(zone)*d1Km*d2Km/(frequencyGHz*(d1Km+d2Km))), nil
}

// RadiusAt is Radius for a point d1M meters along a path of totalM meters.
func RadiusAt(d1M, totalM, frequencyGHz float64, zone int) (float64, error) {
	return Radius(d1M/1000, (totalM-d1M)/1000, frequencyGHz, zone)
}
