package profile

import (
	"math"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

const (
	// DefaultCount is used when neither Count nor SpacingM is set.
	DefaultCount = 101

	// DefaultMatchToleranceM is the distance within which a source sample is
	// taken verbatim instead of interpolated.
	DefaultMatchToleranceM = 0.5

	// MaxCount bounds the number of samples one profile may hold.
	MaxCount = 100000
)

// Builder produces evenly spaced elevation profiles. Set either Count or
// SpacingM; Count wins when both are set.
type Builder struct {
	Count           int
	SpacingM        float64
	MatchToleranceM float64
}

// Profile is the built elevation sample sequence of a path. It is read-only
// once built.
type Profile struct {
	Samples        []ElevationSample `json:"samples"`
	TotalDistanceM float64           `json:"total_distance_m"`
}

// count resolves the number of samples for a path of length total.
func (b Builder) count(total float64) (int, error) {
	switch {
	case b.Count < 0:
		return 0, linkerr.Invalid("count", "must be positive, got %d", b.Count)
	case b.Count == 1:
		return 0, linkerr.Invalid("count", "need at least 2 samples to span a path")
	case b.Count > 1:
		if b.Count > MaxCount {
			return 0, linkerr.Invalid("count", "at most %d samples, got %d", MaxCount, b.Count)
		}
		return b.Count, nil
	}

	if b.SpacingM == 0 {
		return DefaultCount, nil
	}
	if !geo.Finite(b.SpacingM) || b.SpacingM < 0 {
		return 0, linkerr.Invalid("spacing_m", "must be a positive finite value, got %g", b.SpacingM)
	}
	// Compare as float first; the int conversion of an out-of-range value
	// is undefined.
	steps := math.Ceil(total / b.SpacingM)
	if !geo.Finite(steps) || steps+1 > MaxCount {
		return 0, linkerr.Invalid("spacing_m", "spacing %g m yields more than %d samples", b.SpacingM, MaxCount)
	}
	n := int(steps) + 1
	if n < 2 {
		n = 2
	}
	return n, nil
}

// Build samples src at evenly spaced distances from 0 to the path length
// inclusive. A source sample within the match tolerance is used as is;
// otherwise the neighbours on both sides are interpolated linearly.
func (b Builder) Build(path link.Path, src Source) (Profile, error) {
	if path.IsZero() {
		return Profile{}, linkerr.Degenerate("path is not initialized")
	}
	if src == nil {
		return Profile{}, linkerr.Insufficient("terrain", "no elevation source")
	}
	tol := b.MatchToleranceM
	if tol == 0 {
		tol = DefaultMatchToleranceM
	}
	if !geo.Finite(tol) || tol < 0 {
		return Profile{}, linkerr.Invalid("match_tolerance_m", "must be non-negative, got %g", tol)
	}

	total := path.TotalDistanceM()
	n, err := b.count(total)
	if err != nil {
		return Profile{}, err
	}

	samples := make([]ElevationSample, n)
	for i := range samples {
		d := total * float64(i) / float64(n-1)
		if i == n-1 {
			d = total
		}
		s, err := sampleAt(src, d, tol)
		if err != nil {
			return Profile{}, err
		}
		samples[i] = s
	}

	return Profile{Samples: samples, TotalDistanceM: total}, nil
}

func sampleAt(src Source, d, tol float64) (ElevationSample, error) {
	below, above, hasBelow, hasAbove := src.Bracket(d)

	// Prefer the closer of the two when both are within tolerance.
	var match *ElevationSample
	if hasBelow && d-below.DistanceM <= tol {
		match = &below
	}
	if hasAbove && above.DistanceM-d <= tol && (match == nil || above.DistanceM-d < d-below.DistanceM) {
		match = &above
	}
	if match != nil {
		return ElevationSample{DistanceM: d, TerrainM: match.TerrainM, VegetationM: match.VegetationM}, nil
	}

	if !hasBelow || !hasAbove {
		return ElevationSample{}, linkerr.Insufficient("terrain", "no elevation sample near %.1f m", d)
	}
	return interpolate(below, above, d), nil
}

func interpolate(a, b ElevationSample, d float64) ElevationSample {
	t := (d - a.DistanceM) / (b.DistanceM - a.DistanceM)
	s := ElevationSample{
		DistanceM: d,
		TerrainM:  a.TerrainM + t*(b.TerrainM-a.TerrainM),
	}
	if a.VegetationM != nil && b.VegetationM != nil {
		v := *a.VegetationM + t*(*b.VegetationM-*a.VegetationM)
		s.VegetationM = &v
	}
	return s
}

// Bracket implements Source, so a built profile can feed another builder.
func (p Profile) Bracket(d float64) (below, above ElevationSample, hasBelow, hasAbove bool) {
	src := SliceSource{samples: p.Samples}
	return src.Bracket(d)
}

// TerrainAt returns the interpolated terrain elevation at distance d.
func (p Profile) TerrainAt(d float64) (float64, error) {
	if len(p.Samples) == 0 {
		return 0, linkerr.Insufficient("terrain", "profile is empty")
	}
	if !geo.Finite(d) || d < p.Samples[0].DistanceM || d > p.Samples[len(p.Samples)-1].DistanceM {
		return 0, linkerr.Insufficient("terrain", "distance %g m is outside the profile", d)
	}
	below, above, _, _ := p.Bracket(d)
	if below.DistanceM == above.DistanceM {
		return below.TerrainM, nil
	}
	return interpolate(below, above, d).TerrainM, nil
}

// ReferenceHeight is the straight line-of-sight height at distance d along
// the path, interpolated linearly between the endpoint effective heights.
func ReferenceHeight(path link.Path, d float64) float64 {
	ha := path.Start().EffectiveHeightM()
	hb := path.End().EffectiveHeightM()
	total := path.TotalDistanceM()
	switch {
	case d <= 0:
		return ha
	case d >= total:
		return hb
	}
	return ha + (hb-ha)*d/total
}
