// Package profile builds the ordered elevation profile of a link from terrain
// samples supplied by a collaborator, and computes the straight line-of-sight
// reference height along the path.
package profile

import (
	"sort"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// ElevationSample is terrain (and optionally vegetation) at a distance along
// the path, in meters.
type ElevationSample struct {
	DistanceM   float64  `json:"distance_m" yaml:"distance_m"`
	TerrainM    float64  `json:"terrain_m" yaml:"terrain_m"`
	VegetationM *float64 `json:"vegetation_m,omitempty" yaml:"vegetation_m,omitempty"`
}

// SurfaceM is the terrain plus any vegetation on top of it.
func (s ElevationSample) SurfaceM() float64 {
	if s.VegetationM == nil {
		return s.TerrainM
	}
	return s.TerrainM + *s.VegetationM
}

// Source supplies terrain samples keyed by along-path distance.
//
// Bracket returns the nearest sample at or below d and the nearest sample at
// or above d. A sample exactly at d is returned as both.
type Source interface {
	Bracket(distanceM float64) (below, above ElevationSample, hasBelow, hasAbove bool)
}

// SliceSource is an in-memory Source over an ordered sample slice.
type SliceSource struct {
	samples []ElevationSample
}

// NewSliceSource validates samples and returns a Source over a sorted copy.
// Distances must be finite, non-negative and distinct.
func NewSliceSource(samples []ElevationSample) (*SliceSource, error) {
	sorted := make([]ElevationSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DistanceM < sorted[j].DistanceM })

	for i, s := range sorted {
		if !geo.Finite(s.DistanceM, s.TerrainM) || s.DistanceM < 0 {
			return nil, linkerr.Invalid("terrain", "sample at %g m has invalid distance or elevation %g", s.DistanceM, s.TerrainM)
		}
		if s.VegetationM != nil && (!geo.Finite(*s.VegetationM) || *s.VegetationM < 0) {
			return nil, linkerr.Invalid("vegetation_m", "sample at %g m has invalid vegetation height %g", s.DistanceM, *s.VegetationM)
		}
		if i > 0 && sorted[i-1].DistanceM == s.DistanceM {
			return nil, linkerr.Invalid("terrain", "duplicate sample distance %g m", s.DistanceM)
		}
	}
	return &SliceSource{samples: sorted}, nil
}

// Len returns the number of samples.
func (s *SliceSource) Len() int { return len(s.samples) }

// Bracket implements Source.
func (s *SliceSource) Bracket(d float64) (below, above ElevationSample, hasBelow, hasAbove bool) {
	i := sort.Search(len(s.samples), func(i int) bool { return s.samples[i].DistanceM >= d })
	if i < len(s.samples) {
		above, hasAbove = s.samples[i], true
		if s.samples[i].DistanceM == d {
			return above, above, true, true
		}
	}
	if i > 0 {
		below, hasBelow = s.samples[i-1], true
	}
	return below, above, hasBelow, hasAbove
}
