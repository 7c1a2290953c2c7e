package link

import (
	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// Obstruction is an externally supplied candidate structure. It carries no
// behavior beyond validation; the clearance evaluator consumes it as data.
type Obstruction struct {
	ID    string       `json:"id"`
	Point geo.GeoPoint `json:"point"`

	// BaseElevationM is the ground elevation at the structure. Nil means
	// unknown: it is then read from an elevation profile.
	BaseElevationM *float64 `json:"base_elevation_m,omitempty"`

	StructureHeightM float64 `json:"structure_height_m"` // to hub for turbines
	RotorRadiusM     float64 `json:"rotor_radius_m,omitempty"`
}

// HasBase reports whether the base elevation is known.
func (o Obstruction) HasBase() bool { return o.BaseElevationM != nil }

// WithBase returns a copy of o with its base elevation set.
func (o Obstruction) WithBase(m float64) Obstruction {
	o.BaseElevationM = &m
	return o
}

// HubTopM is the top of the solid structure (base + structure). Callers
// must resolve the base first.
func (o Obstruction) HubTopM() float64 {
	if o.BaseElevationM == nil {
		return o.StructureHeightM
	}
	return *o.BaseElevationM + o.StructureHeightM
}

// TopHeightM is the highest point of the obstruction: the blade tip for
// turbines, the structure top otherwise.
func (o Obstruction) TopHeightM() float64 {
	return o.HubTopM() + o.RotorRadiusM
}

// Validate checks the obstruction data. A missing base elevation is not a
// validation failure.
func (o Obstruction) Validate() error {
	if o.ID == "" {
		return linkerr.Invalid("id", "obstruction id is required")
	}
	if err := o.Point.Validate(); err != nil {
		return err
	}
	if o.BaseElevationM != nil && !geo.Finite(*o.BaseElevationM) {
		return linkerr.Invalid("base_elevation_m", "must be finite, got %g", *o.BaseElevationM)
	}
	if !geo.Finite(o.StructureHeightM) || o.StructureHeightM < 0 {
		return linkerr.Invalid("structure_height_m", "must be a non-negative finite value, got %g", o.StructureHeightM)
	}
	if !geo.Finite(o.RotorRadiusM) || o.RotorRadiusM < 0 {
		return linkerr.Invalid("rotor_radius_m", "must be a non-negative finite value, got %g", o.RotorRadiusM)
	}
	return nil
}
