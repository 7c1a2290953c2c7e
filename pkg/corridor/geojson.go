package corridor

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/link"
)

// Obstruction status values of exported features.
const (
	StatusClear          = "clear"
	StatusFresnelBlocked = "fresnel_blocked"
	StatusEarthBlocked   = "earth_blocked"
	StatusLOSBlocked     = "los_blocked"
	StatusError          = "error"
)

// Status classifies an outcome by its most severe failed check.
func Status(o clearance.Outcome) string {
	switch {
	case !o.OK():
		return StatusError
	case !o.Result.HasLOSClearance:
		return StatusLOSBlocked
	case !o.Result.HasEarthClearance:
		return StatusEarthBlocked
	case !o.Result.HasFresnelClearance:
		return StatusFresnelBlocked
	default:
		return StatusClear
	}
}

// Collection accumulates features for export.
type Collection struct {
	fc *geojson.FeatureCollection
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{fc: geojson.NewFeatureCollection()}
}

func (c *Collection) add(g orb.Geometry, kind string, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["kind"] = kind
	for k, v := range props {
		f.Properties[k] = v
	}
	c.fc.Append(f)
	return f
}

// AddPath adds both sites as points and the link as a line.
func (c *Collection) AddPath(path link.Path) {
	a, b := path.Start(), path.End()
	c.add(orb.LineString{toOrb(a.Point), toOrb(b.Point)}, "link", map[string]any{
		"distance_m":  path.TotalDistanceM(),
		"bearing_deg": path.InitialBearingDeg(),
	})
	for i, e := range []link.PathEndpoint{a, b} {
		c.add(toOrb(e.Point), "site", map[string]any{
			"name":               []string{"site_a", "site_b"}[i],
			"ground_elevation_m": e.GroundElevationM,
			"antenna_height_m":   e.AntennaHeightM,
			"effective_height_m": e.EffectiveHeightM(),
		})
	}
}

// AddCorridor adds the corridor polygon.
func (c *Collection) AddCorridor(cor *Corridor) {
	c.add(cor.Polygon, "corridor", map[string]any{
		"half_width_m": cor.HalfWidthM,
		"extension_m":  cor.ExtensionM,
	})
}

// AddRing adds a search ring as a polygon.
func (c *Collection) AddRing(name string, ring orb.Ring, radiusM float64) {
	c.add(orb.Polygon{ring}, "ring", map[string]any{
		"name":     name,
		"radius_m": radiusM,
	})
}

// AddObstructions adds one point per obstruction with its evaluation
// outcome. outcomes must be in the same order as obstructions.
func (c *Collection) AddObstructions(obstructions []link.Obstruction, outcomes []clearance.Outcome) {
	for i, o := range obstructions {
		props := map[string]any{
			"id":                 o.ID,
			"structure_height_m": o.StructureHeightM,
			"rotor_radius_m":     o.RotorRadiusM,
		}
		if i < len(outcomes) {
			out := outcomes[i]
			props["status"] = Status(out)
			if out.OK() {
				props["clearance_straight_ft"] = out.Result.ClearanceStraightFt
				props["clearance_curved_ft"] = out.Result.ClearanceCurvedFt
				props["clearance_fresnel_ft"] = out.Result.ClearanceFresnelFt
				props["lateral_offset_ft"] = out.Result.LateralOffsetFt
				props["side"] = string(out.Result.Side)
			} else {
				props["error"] = out.ErrorMessage
			}
		}
		c.add(toOrb(o.Point), "obstruction", props)
	}
}

// FeatureCollection returns the accumulated features.
func (c *Collection) FeatureCollection() *geojson.FeatureCollection {
	return c.fc
}

// MarshalJSON encodes the collection as a GeoJSON FeatureCollection.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return c.fc.MarshalJSON()
}
