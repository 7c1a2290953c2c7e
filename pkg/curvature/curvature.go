// Package curvature computes the k-factor earth-bulge correction along a
// line-of-sight path.
package curvature

import (
	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// DefaultKFactor is the standard-atmosphere effective earth radius factor.
const DefaultKFactor = 4.0 / 3.0

// Corrector applies the earth-bulge correction for a fixed earth model and
// k-factor.
type Corrector struct {
	earth geo.Earth
	k     float64
}

// NewCorrector validates the earth model and k-factor. A zero k selects
// DefaultKFactor.
func NewCorrector(earth geo.Earth, k float64) (Corrector, error) {
	if err := earth.Validate(); err != nil {
		return Corrector{}, err
	}
	if k == 0 {
		k = DefaultKFactor
	}
	if !geo.Finite(k) || k < 0 {
		return Corrector{}, linkerr.Invalid("k_factor", "must be a positive finite value, got %g", k)
	}
	return Corrector{earth: earth, k: k}, nil
}

// KFactor returns the configured k-factor.
func (c Corrector) KFactor() float64 { return c.k }

// EffectiveRadiusM is k times the earth radius.
func (c Corrector) EffectiveRadiusM() float64 { return c.k * c.earth.RadiusM }

// Bulge returns the rise of the earth surface above the chord at distance d1
// from one end of a path of length total, in meters. It is exactly zero at
// both ends and outside the path.
func (c Corrector) Bulge(d1, total float64) float64 {
	if d1 <= 0 || d1 >= total {
		return 0
	}
	return d1 * (total - d1) / (2 * c.k * c.earth.RadiusM)
}

// CorrectedHeight subtracts the bulge at d1 from a straight reference height.
func (c Corrector) CorrectedHeight(straightM, d1, total float64) float64 {
	return straightM - c.Bulge(d1, total)
}
