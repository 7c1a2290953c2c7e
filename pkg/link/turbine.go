package link

import (
	"fmt"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// TurbineSpec is a wind turbine record as published by turbine databases.
// Heights may be given as hub height plus rotor diameter, as total (tip)
// height plus rotor diameter, or as total height alone. Field names accept
// the USWTDB column aliases.
type TurbineSpec struct {
	ID        string  `json:"id" yaml:"id"`
	CaseID    string  `json:"case_id" yaml:"case_id"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	YLat      float64 `json:"ylat" yaml:"ylat"`
	XLong     float64 `json:"xlong" yaml:"xlong"`

	HubHeightM     float64 `json:"hub_height_m" yaml:"hub_height_m"`
	TotalHeightM   float64 `json:"total_height_m" yaml:"total_height_m"`
	RotorDiameterM float64 `json:"rotor_diameter_m" yaml:"rotor_diameter_m"`
	THH            float64 `json:"t_hh" yaml:"t_hh"`
	TTtlH          float64 `json:"t_ttlh" yaml:"t_ttlh"`
	TRD            float64 `json:"t_rd" yaml:"t_rd"`

	BaseElevationM *float64 `json:"base_elevation_m,omitempty" yaml:"base_elevation_m,omitempty"`
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Obstruction converts the record into an obstruction whose structure height
// is the hub height and whose rotor radius is half the rotor diameter.
func (t TurbineSpec) Obstruction() (Obstruction, error) {
	id := t.ID
	if id == "" {
		id = t.CaseID
	}
	if id == "" {
		return Obstruction{}, linkerr.Invalid("id", "turbine record has neither id nor case_id")
	}

	pt := geo.GeoPoint{
		Latitude:  firstNonZero(t.Latitude, t.YLat),
		Longitude: firstNonZero(t.Longitude, t.XLong),
	}

	hub := firstNonZero(t.HubHeightM, t.THH)
	total := firstNonZero(t.TotalHeightM, t.TTtlH)
	rotor := firstNonZero(t.RotorDiameterM, t.TRD)

	if !geo.Finite(hub, total, rotor) || hub < 0 || total < 0 || rotor < 0 {
		return Obstruction{}, linkerr.Invalid("height", "turbine %s has invalid heights (hub=%g total=%g rotor=%g)", id, hub, total, rotor)
	}

	var structure, radius float64
	switch {
	case hub > 0:
		structure, radius = hub, rotor/2
	case total > 0 && rotor > 0:
		structure, radius = total-rotor/2, rotor/2
		if structure < 0 {
			return Obstruction{}, linkerr.Invalid("rotor_diameter_m", "turbine %s rotor diameter %g exceeds twice its total height %g", id, rotor, total)
		}
	case total > 0:
		structure = total
	default:
		return Obstruction{}, linkerr.Insufficient("height", "turbine %s has no hub or total height", id)
	}

	o := Obstruction{
		ID:               id,
		Point:            pt,
		BaseElevationM:   t.BaseElevationM,
		StructureHeightM: structure,
		RotorRadiusM:     radius,
	}
	if err := o.Validate(); err != nil {
		return Obstruction{}, fmt.Errorf("turbine %s: %w", id, err)
	}
	return o, nil
}
