package clearance

// Summary aggregates a batch for reporting.
type Summary struct {
	Total          int `json:"total"`
	Evaluated      int `json:"evaluated"`
	Failed         int `json:"failed"`
	Clear          int `json:"clear"`
	LOSBlocked     int `json:"los_blocked"`
	EarthBlocked   int `json:"earth_blocked"`
	FresnelBlocked int `json:"fresnel_blocked"`

	WorstID        string   `json:"worst_id,omitempty"`
	WorstFresnelFt *float64 `json:"worst_fresnel_ft,omitempty"`
}

// Summarize counts outcomes by verdict and finds the smallest Fresnel
// clearance.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if !o.OK() {
			s.Failed++
			continue
		}
		s.Evaluated++
		r := o.Result
		if r.Clear() {
			s.Clear++
		}
		if !r.HasLOSClearance {
			s.LOSBlocked++
		}
		if !r.HasEarthClearance {
			s.EarthBlocked++
		}
		if !r.HasFresnelClearance {
			s.FresnelBlocked++
		}
		if s.WorstFresnelFt == nil || r.ClearanceFresnelFt < *s.WorstFresnelFt {
			v := r.ClearanceFresnelFt
			s.WorstFresnelFt = &v
			s.WorstID = r.ObstructionID
		}
	}
	return s
}

// Closest returns the evaluated result with the smallest lateral offset from
// the path. ok is false when no item was evaluated.
func Closest(outcomes []Outcome) (r Result, ok bool) {
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		if !ok || o.Result.LateralOffsetFt < r.LateralOffsetFt {
			r, ok = *o.Result, true
		}
	}
	return r, ok
}
