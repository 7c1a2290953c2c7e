// Package scenario reads link analysis scenarios from YAML files. A scenario
// names the two sites, the frequency, optional terrain samples along the
// path and the candidate obstructions, with every length in one declared
// unit.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// Units is the length unit declared by a scenario.
type Units string

const (
	Feet   Units = "ft"
	Meters Units = "m"
)

// ParseUnits accepts the common spellings of feet and meters.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ft", "feet", "foot":
		return Feet, nil
	case "m", "meter", "meters", "metre", "metres":
		return Meters, nil
	case "":
		return "", linkerr.Invalid("units", "units must be declared (ft or m)")
	default:
		return "", linkerr.Invalid("units", "unknown unit %q", s)
	}
}

// ToMeters converts a length in u to meters.
func (u Units) ToMeters(v float64) float64 {
	if u == Feet {
		return geo.FeetToMeters(v)
	}
	return v
}

// Coordinate is a latitude or longitude given as a number or as a decimal
// or DMS string.
type Coordinate float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Coordinate) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return linkerr.Invalid("coordinate", "line %d: %v", node.Line, err)
	}
	v, err := geo.ParseCoordinate(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = Coordinate(v)
	return nil
}

// Site is one antenna site.
type Site struct {
	Name            string     `yaml:"name"`
	Latitude        Coordinate `yaml:"latitude"`
	Longitude       Coordinate `yaml:"longitude"`
	GroundElevation float64    `yaml:"ground_elevation"`
	AntennaHeight   float64    `yaml:"antenna_height"`
}

// TerrainPoint is a terrain sample keyed by distance from site A.
type TerrainPoint struct {
	Distance   float64  `yaml:"distance"`
	Elevation  float64  `yaml:"elevation"`
	Vegetation *float64 `yaml:"vegetation,omitempty"`
}

// ObstructionSpec is a generic structure.
type ObstructionSpec struct {
	ID              string     `yaml:"id"`
	Latitude        Coordinate `yaml:"latitude"`
	Longitude       Coordinate `yaml:"longitude"`
	BaseElevation   *float64   `yaml:"base_elevation,omitempty"`
	StructureHeight float64    `yaml:"structure_height"`
	RotorRadius     float64    `yaml:"rotor_radius,omitempty"`
}

// TurbineRecord is a wind turbine in turbine-database form. HubHeight,
// TotalHeight and RotorDiameter use the scenario units. The USWTDB columns
// t_hh, t_ttlh and t_rd are always meters.
type TurbineRecord struct {
	ID            string     `yaml:"id"`
	CaseID        string     `yaml:"case_id"`
	Latitude      Coordinate `yaml:"latitude"`
	Longitude     Coordinate `yaml:"longitude"`
	YLat          Coordinate `yaml:"ylat"`
	XLong         Coordinate `yaml:"xlong"`
	HubHeight     float64    `yaml:"hub_height"`
	TotalHeight   float64    `yaml:"total_height"`
	RotorDiameter float64    `yaml:"rotor_diameter"`
	THH           float64    `yaml:"t_hh"`
	TTtlH         float64    `yaml:"t_ttlh"`
	TRD           float64    `yaml:"t_rd"`
	BaseElevation *float64   `yaml:"base_elevation,omitempty"`
}

// CorridorSpec sizes the search corridor.
type CorridorSpec struct {
	HalfWidth float64 `yaml:"half_width"`
	Extension float64 `yaml:"extension"`
}

// Scenario is the file form of an analysis.
type Scenario struct {
	Name         string            `yaml:"name"`
	Units        string            `yaml:"units"`
	FrequencyGHz float64           `yaml:"frequency_ghz"`
	SiteA        Site              `yaml:"site_a"`
	SiteB        Site              `yaml:"site_b"`
	Terrain      []TerrainPoint    `yaml:"terrain,omitempty"`
	Obstructions []ObstructionSpec `yaml:"obstructions,omitempty"`
	Turbines     []TurbineRecord   `yaml:"turbines,omitempty"`
	Corridor     *CorridorSpec     `yaml:"corridor,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Rejected is a candidate that could not be converted into an obstruction.
type Rejected struct {
	ID  string
	Err error
}

// Analysis is a scenario resolved into engine inputs, all in meters.
type Analysis struct {
	Name         string
	FrequencyGHz float64
	Path         link.Path
	Terrain      []profile.ElevationSample
	Obstructions []link.Obstruction
	Rejected     []Rejected

	CorridorHalfWidthM float64
	CorridorExtensionM float64
}

// Resolve converts the scenario into engine inputs on the given earth model.
// Errors in the sites or units fail the whole scenario. A turbine record
// whose heights cannot be normalized is reported in Rejected and skipped.
func (s *Scenario) Resolve(earth geo.Earth) (*Analysis, error) {
	u, err := ParseUnits(s.Units)
	if err != nil {
		return nil, err
	}
	if !geo.Finite(s.FrequencyGHz) || s.FrequencyGHz <= 0 {
		return nil, linkerr.InvalidFrequency(s.FrequencyGHz)
	}

	site := func(st Site) link.PathEndpoint {
		return link.PathEndpoint{
			Point:            geo.GeoPoint{Latitude: float64(st.Latitude), Longitude: float64(st.Longitude)},
			GroundElevationM: u.ToMeters(st.GroundElevation),
			AntennaHeightM:   u.ToMeters(st.AntennaHeight),
		}
	}
	path, err := link.NewPath(site(s.SiteA), site(s.SiteB), earth)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:         s.Name,
		FrequencyGHz: s.FrequencyGHz,
		Path:         path,
	}

	for _, tp := range s.Terrain {
		sample := profile.ElevationSample{
			DistanceM: u.ToMeters(tp.Distance),
			TerrainM:  u.ToMeters(tp.Elevation),
		}
		if tp.Vegetation != nil {
			v := u.ToMeters(*tp.Vegetation)
			sample.VegetationM = &v
		}
		a.Terrain = append(a.Terrain, sample)
	}

	for _, o := range s.Obstructions {
		ob := link.Obstruction{
			ID:               o.ID,
			Point:            geo.GeoPoint{Latitude: float64(o.Latitude), Longitude: float64(o.Longitude)},
			StructureHeightM: u.ToMeters(o.StructureHeight),
			RotorRadiusM:     u.ToMeters(o.RotorRadius),
		}
		if o.BaseElevation != nil {
			ob = ob.WithBase(u.ToMeters(*o.BaseElevation))
		}
		a.Obstructions = append(a.Obstructions, ob)
	}

	for _, t := range s.Turbines {
		spec := link.TurbineSpec{
			ID:             t.ID,
			CaseID:         t.CaseID,
			Latitude:       float64(t.Latitude),
			Longitude:      float64(t.Longitude),
			YLat:           float64(t.YLat),
			XLong:          float64(t.XLong),
			HubHeightM:     u.ToMeters(t.HubHeight),
			TotalHeightM:   u.ToMeters(t.TotalHeight),
			RotorDiameterM: u.ToMeters(t.RotorDiameter),
			THH:            t.THH,
			TTtlH:          t.TTtlH,
			TRD:            t.TRD,
		}
		if t.BaseElevation != nil {
			b := u.ToMeters(*t.BaseElevation)
			spec.BaseElevationM = &b
		}
		ob, err := spec.Obstruction()
		if err != nil {
			id := t.ID
			if id == "" {
				id = t.CaseID
			}
			a.Rejected = append(a.Rejected, Rejected{ID: id, Err: err})
			continue
		}
		a.Obstructions = append(a.Obstructions, ob)
	}

	if s.Corridor != nil {
		a.CorridorHalfWidthM = u.ToMeters(s.Corridor.HalfWidth)
		a.CorridorExtensionM = u.ToMeters(s.Corridor.Extension)
	}
	return a, nil
}
