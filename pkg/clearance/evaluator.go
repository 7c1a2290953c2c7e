// Package clearance is the single clearance evaluator of the engine. Every
// clearance figure produced anywhere in the module comes from assess in this
// package: obstruction clearance, batch evaluation and terrain profile
// clearance all call into it.
//
// Evaluation is pure. The same path, obstruction and frequency always yield
// a bit-identical Result.
package clearance

import (
	"math"
	"runtime"

	"github.com/NERVsystems/pathclear/pkg/curvature"
	"github.com/NERVsystems/pathclear/pkg/fresnel"
	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
	"github.com/NERVsystems/pathclear/pkg/profile"
	"github.com/NERVsystems/pathclear/pkg/projection"
)

// Config holds the evaluator settings. The earth model here is the one used
// for projection and curvature alike.
type Config struct {
	Earth       geo.Earth
	KFactor     float64
	FresnelZone int
	Projection  projection.Config
	Workers     int // batch parallelism; 0 means GOMAXPROCS
}

// DefaultConfig returns k = 4/3, first Fresnel zone, auto projection.
func DefaultConfig() Config {
	return Config{
		Earth:       geo.DefaultEarth(),
		KFactor:     curvature.DefaultKFactor,
		FresnelZone: 1,
		Projection:  projection.DefaultConfig(),
	}
}

// Result is the clearance verdict for one obstruction. All lengths are feet.
type Result struct {
	ObstructionID       string          `json:"obstruction_id"`
	DistanceAlongPathFt float64         `json:"distance_along_path_ft"`
	LateralOffsetFt     float64         `json:"lateral_offset_ft"`
	Side                projection.Side `json:"side"`
	ClearanceStraightFt float64         `json:"clearance_straight_ft"`
	ClearanceCurvedFt   float64         `json:"clearance_curved_ft"`
	FresnelRadiusFt     float64         `json:"fresnel_radius_ft"`
	ClearanceFresnelFt  float64         `json:"clearance_fresnel_ft"`
	CurvatureBulgeFt    float64         `json:"curvature_bulge_ft"`
	HasLOSClearance     bool            `json:"has_los_clearance"`
	HasEarthClearance   bool            `json:"has_earth_clearance"`
	HasFresnelClearance bool            `json:"has_fresnel_clearance"`

	ReferenceHeightStraightFt float64 `json:"reference_height_straight_ft"`
	ReferenceHeightCurvedFt   float64 `json:"reference_height_curved_ft"`
	ObstructionCenterFt       float64 `json:"obstruction_center_ft"` // hub top
	GroundElevationFt         float64 `json:"ground_elevation_ft"`
	Clamped                   bool    `json:"clamped"`
}

// Clear reports whether the obstruction clears the line of sight, the
// curvature-corrected line and the Fresnel zone.
func (r Result) Clear() bool {
	return r.HasLOSClearance && r.HasEarthClearance && r.HasFresnelClearance
}

// Evaluator computes clearance results. It holds only immutable
// configuration and is safe for concurrent use.
type Evaluator struct {
	cfg       Config
	corrector curvature.Corrector
	projector *projection.Projector
}

// New validates cfg and returns an Evaluator.
func New(cfg Config) (*Evaluator, error) {
	if cfg.FresnelZone == 0 {
		cfg.FresnelZone = 1
	}
	if cfg.FresnelZone < 0 {
		return nil, linkerr.Invalid("fresnel_zone", "zone number must be at least 1, got %d", cfg.FresnelZone)
	}
	if cfg.Workers < 0 {
		return nil, linkerr.Invalid("workers", "must not be negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	corrector, err := curvature.NewCorrector(cfg.Earth, cfg.KFactor)
	if err != nil {
		return nil, err
	}
	cfg.KFactor = corrector.KFactor()

	cfg.Projection.Earth = cfg.Earth
	projector, err := projection.New(cfg.Projection)
	if err != nil {
		return nil, err
	}
	cfg.Projection = projector.Config()

	return &Evaluator{cfg: cfg, corrector: corrector, projector: projector}, nil
}

// Config returns the resolved configuration.
func (e *Evaluator) Config() Config { return e.cfg }

// Projector returns the projector used by the evaluator.
func (e *Evaluator) Projector() *projection.Projector { return e.projector }

// Corrector returns the curvature corrector used by the evaluator.
func (e *Evaluator) Corrector() curvature.Corrector { return e.corrector }

// Evaluate computes the clearance of obstruction o against path at the given
// frequency. The base elevation of o must be known.
func (e *Evaluator) Evaluate(path link.Path, o link.Obstruction, frequencyGHz float64) (Result, error) {
	if err := o.Validate(); err != nil {
		return Result{}, err
	}
	if !o.HasBase() {
		return Result{}, linkerr.Insufficient("base_elevation_m", "obstruction %s has no base elevation and no profile was supplied", o.ID)
	}
	proj, err := e.projector.Project(path, o.Point)
	if err != nil {
		return Result{}, err
	}
	return e.evaluate(path, o, proj, frequencyGHz)
}

// EvaluateOnProfile is Evaluate with unknown base elevations resolved from
// the terrain of prof at the obstruction's along-track distance.
func (e *Evaluator) EvaluateOnProfile(path link.Path, prof profile.Profile, o link.Obstruction, frequencyGHz float64) (Result, error) {
	if err := o.Validate(); err != nil {
		return Result{}, err
	}
	proj, err := e.projector.Project(path, o.Point)
	if err != nil {
		return Result{}, err
	}
	if !o.HasBase() {
		ground, err := prof.TerrainAt(proj.AlongTrackM)
		if err != nil {
			return Result{}, err
		}
		o = o.WithBase(ground)
	}
	return e.evaluate(path, o, proj, frequencyGHz)
}

func (e *Evaluator) evaluate(path link.Path, o link.Obstruction, proj projection.Projection, frequencyGHz float64) (Result, error) {
	a, err := e.assess(path, proj.AlongTrackM, proj.LateralOffsetM, o.HubTopM(), o.RotorRadiusM, frequencyGHz)
	if err != nil {
		return Result{}, err
	}
	return a.result(o.ID, proj.Side, *o.BaseElevationM, proj.Clamped), nil
}

// assessment holds the metric quantities of one clearance evaluation.
type assessment struct {
	alongM, lateralM   float64
	straightM, curvedM float64 // reference heights
	bulgeM, fresnelM   float64
	centerM            float64
	clearStraightM     float64
	clearCurvedM       float64
	clearFresnelM      float64
}

// assess is the clearance formula. hubTopM is the top of the solid
// structure, rotorM the radius of the envelope swept around it.
func (e *Evaluator) assess(path link.Path, alongM, lateralM, hubTopM, rotorM, frequencyGHz float64) (assessment, error) {
	total := path.TotalDistanceM()

	radius, err := fresnel.RadiusAt(alongM, total, frequencyGHz, e.cfg.FresnelZone)
	if err != nil {
		return assessment{}, err
	}

	straight := profile.ReferenceHeight(path, alongM)
	bulge := e.corrector.Bulge(alongM, total)
	curved := straight - bulge

	a := assessment{
		alongM:    alongM,
		lateralM:  lateralM,
		straightM: straight,
		curvedM:   curved,
		bulgeM:    bulge,
		fresnelM:  radius,
		centerM:   hubTopM,
	}
	a.clearStraightM = envelope(straight-hubTopM, lateralM, rotorM)
	a.clearCurvedM = envelope(curved-hubTopM, lateralM, rotorM)
	a.clearFresnelM = a.clearCurvedM - radius
	return a, nil
}

// envelope is the distance from the beam to the obstruction envelope in the
// plane perpendicular to the path. vertical is beam height minus structure
// top; the vertical and lateral gaps are orthogonal axes. When the structure
// reaches the beam height the nearest approach is horizontal, except on the
// centerline where the (non-positive) vertical gap is the penetration depth.
func envelope(vertical, lateral, rotor float64) float64 {
	switch {
	case vertical > 0:
		return math.Hypot(lateral, vertical) - rotor
	case lateral > 0:
		return lateral - rotor
	default:
		return vertical - rotor
	}
}

// result converts to feet. The flags are decided on the reported values.
func (a assessment) result(id string, side projection.Side, groundM float64, clamped bool) Result {
	r := Result{
		ObstructionID:       id,
		DistanceAlongPathFt: geo.MetersToFeet(a.alongM),
		LateralOffsetFt:     geo.MetersToFeet(a.lateralM),
		Side:                side,
		ClearanceStraightFt: geo.MetersToFeet(a.clearStraightM),
		ClearanceCurvedFt:   geo.MetersToFeet(a.clearCurvedM),
		FresnelRadiusFt:     geo.MetersToFeet(a.fresnelM),
		ClearanceFresnelFt:  geo.MetersToFeet(a.clearFresnelM),
		CurvatureBulgeFt:    geo.MetersToFeet(a.bulgeM),

		ReferenceHeightStraightFt: geo.MetersToFeet(a.straightM),
		ReferenceHeightCurvedFt:   geo.MetersToFeet(a.curvedM),
		ObstructionCenterFt:       geo.MetersToFeet(a.centerM),
		GroundElevationFt:         geo.MetersToFeet(groundM),
		Clamped:                   clamped,
	}
	r.HasLOSClearance = r.ClearanceStraightFt > 0
	r.HasEarthClearance = r.ClearanceCurvedFt > 0
	r.HasFresnelClearance = r.ClearanceCurvedFt >= r.FresnelRadiusFt
	return r
}
