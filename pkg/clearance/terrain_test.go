package clearance

import (
	"errors"
	"math"
	"testing"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

func TestTerrainClearance(t *testing.T) {
	path := flatPath(t)
	e := newEvaluator(t)
	total := path.TotalDistanceM()
	trees := 12.0

	src, err := profile.NewSliceSource([]profile.ElevationSample{
		{DistanceM: 0, TerrainM: 300},
		{DistanceM: total * 0.3, TerrainM: 305, VegetationM: &trees},
		{DistanceM: total * 0.5, TerrainM: 318},
		{DistanceM: total, TerrainM: 300},
	})
	if err != nil {
		t.Fatal(err)
	}
	prof, err := profile.Builder{Count: 11}.Build(path, src)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := e.TerrainClearance(path, prof, freqGHz)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Points) != 11 {
		t.Fatalf("len(Points) = %d, want 11", len(rep.Points))
	}

	// Midpoint: 330 - 318 = 12 m straight, minus the 1.47 m bulge curved,
	// against an 8.26 m Fresnel radius.
	mid := rep.Points[5]
	if got := geo.FeetToMeters(mid.ClearanceStraightFt); math.Abs(got-12) > 1e-6 {
		t.Errorf("midpoint straight clearance = %v m, want 12", got)
	}
	if !mid.HasEarthClearance || !mid.HasFresnelClearance {
		t.Errorf("midpoint flags earth=%v fresnel=%v, want true/true", mid.HasEarthClearance, mid.HasFresnelClearance)
	}

	// The trees at 30% reach 317 m but the Fresnel zone is narrower there,
	// so the midpoint still limits the path.
	worst := rep.Worst()
	if worst.ObstructionID != "terrain-5" {
		t.Errorf("worst = %s, want terrain-5", worst.ObstructionID)
	}
	if got := geo.FeetToMeters(rep.Points[3].ClearanceStraightFt); math.Abs(got-13) > 1e-6 {
		t.Errorf("tree line straight clearance = %v m, want 13", got)
	}
	if worst.ClearanceFresnelFt > mid.ClearanceFresnelFt {
		t.Errorf("worst Fresnel clearance %v exceeds midpoint %v", worst.ClearanceFresnelFt, mid.ClearanceFresnelFt)
	}
	if !rep.HasLOSClearance {
		t.Error("HasLOSClearance = false, want true")
	}
	if got := rep.MinClearanceM(); got <= 0 || got > 12 {
		t.Errorf("MinClearanceM() = %v, want in (0, 12]", got)
	}
}

func TestTerrainClearanceBlocked(t *testing.T) {
	path := flatPath(t)
	e := newEvaluator(t)
	total := path.TotalDistanceM()

	src, _ := profile.NewSliceSource([]profile.ElevationSample{
		{DistanceM: 0, TerrainM: 300},
		{DistanceM: total / 2, TerrainM: 340},
		{DistanceM: total, TerrainM: 300},
	})
	prof, err := profile.Builder{Count: 3}.Build(path, src)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := e.TerrainClearance(path, prof, freqGHz)
	if err != nil {
		t.Fatal(err)
	}
	if rep.HasLOSClearance || rep.WorstIndex != 1 {
		t.Errorf("report = LOS %v worst %d, want blocked at 1", rep.HasLOSClearance, rep.WorstIndex)
	}
	if got := geo.FeetToMeters(rep.Worst().ClearanceStraightFt); math.Abs(got+10) > 1e-6 {
		t.Errorf("penetration = %v m, want -10", got)
	}
}

func TestTerrainClearanceErrors(t *testing.T) {
	path := flatPath(t)
	e := newEvaluator(t)

	if _, err := e.TerrainClearance(path, profile.Profile{}, freqGHz); !errors.Is(err, linkerr.ErrInsufficientData) {
		t.Errorf("empty profile error = %v, want insufficient data", err)
	}

	long := profile.Profile{Samples: []profile.ElevationSample{{DistanceM: 0}, {DistanceM: path.TotalDistanceM() + 100}}}
	if _, err := e.TerrainClearance(path, long, freqGHz); !errors.Is(err, linkerr.ErrInputValidation) {
		t.Errorf("overlong profile error = %v, want input validation", err)
	}

	prof := profile.Profile{Samples: []profile.ElevationSample{{DistanceM: 0, TerrainM: 1}, {DistanceM: 10, TerrainM: 1}}}
	if _, err := e.TerrainClearance(path, prof, -1); !errors.Is(err, linkerr.ErrInvalidFrequency) {
		t.Errorf("bad frequency error = %v, want invalid frequency", err)
	}
}
