package clearance

import (
	"fmt"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
	"github.com/NERVsystems/pathclear/pkg/profile"
	"github.com/NERVsystems/pathclear/pkg/projection"
)

// TerrainReport is the clearance of every profile sample. Each sample is
// treated as an obstruction on the path centerline whose top is the terrain
// plus vegetation.
type TerrainReport struct {
	Points     []Result `json:"points"`
	WorstIndex int      `json:"worst_index"` // smallest Fresnel clearance

	HasLOSClearance     bool `json:"has_los_clearance"`
	HasEarthClearance   bool `json:"has_earth_clearance"`
	HasFresnelClearance bool `json:"has_fresnel_clearance"`
}

// Worst returns the limiting sample.
func (r TerrainReport) Worst() Result {
	return r.Points[r.WorstIndex]
}

// TerrainClearance evaluates the clearance of every sample in prof.
func (e *Evaluator) TerrainClearance(path link.Path, prof profile.Profile, frequencyGHz float64) (TerrainReport, error) {
	if path.IsZero() {
		return TerrainReport{}, linkerr.Degenerate("path is not initialized")
	}
	if len(prof.Samples) == 0 {
		return TerrainReport{}, linkerr.Insufficient("terrain", "profile has no samples")
	}
	total := path.TotalDistanceM()
	if last := prof.Samples[len(prof.Samples)-1].DistanceM; last > total+profile.DefaultMatchToleranceM {
		return TerrainReport{}, linkerr.Invalid("terrain", "profile extends to %.1f m beyond the %.1f m path", last, total)
	}

	rep := TerrainReport{
		Points:              make([]Result, len(prof.Samples)),
		HasLOSClearance:     true,
		HasEarthClearance:   true,
		HasFresnelClearance: true,
	}
	for i, s := range prof.Samples {
		d := min(max(s.DistanceM, 0), total)
		a, err := e.assess(path, d, 0, s.SurfaceM(), 0, frequencyGHz)
		if err != nil {
			return TerrainReport{}, err
		}
		r := a.result(fmt.Sprintf("terrain-%d", i), projection.SideCenter, s.TerrainM, false)
		rep.Points[i] = r

		rep.HasLOSClearance = rep.HasLOSClearance && r.HasLOSClearance
		rep.HasEarthClearance = rep.HasEarthClearance && r.HasEarthClearance
		rep.HasFresnelClearance = rep.HasFresnelClearance && r.HasFresnelClearance
		if r.ClearanceFresnelFt < rep.Points[rep.WorstIndex].ClearanceFresnelFt {
			rep.WorstIndex = i
		}
	}
	return rep, nil
}

// MinClearanceM returns the smallest curvature-corrected clearance of the
// report in meters.
func (r TerrainReport) MinClearanceM() float64 {
	if len(r.Points) == 0 {
		return 0
	}
	m := r.Points[0].ClearanceCurvedFt
	for _, p := range r.Points[1:] {
		m = min(m, p.ClearanceCurvedFt)
	}
	return geo.FeetToMeters(m)
}
