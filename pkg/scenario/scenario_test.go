package scenario

import (
	"errors"
	"math"
	"testing"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

func TestLoadAndResolve(t *testing.T) {
	s, err := Load("testdata/hop.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	a, err := s.Resolve(geo.DefaultEarth())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	start := a.Path.Start()
	wantLat := 44 + 58.0/60 + 40.0/3600
	if math.Abs(start.Point.Latitude-wantLat) > 1e-9 {
		t.Errorf("site A latitude = %v, want %v", start.Point.Latitude, wantLat)
	}
	if start.Point.Longitude >= 0 {
		t.Errorf("site A longitude = %v, want west (negative)", start.Point.Longitude)
	}
	if got := start.EffectiveHeightM(); math.Abs(got-geo.FeetToMeters(1130)) > 1e-9 {
		t.Errorf("site A effective height = %v m, want %v", got, geo.FeetToMeters(1130))
	}

	if len(a.Terrain) != 3 || a.Terrain[1].VegetationM == nil {
		t.Fatalf("terrain = %+v, want 3 samples with vegetation on the second", a.Terrain)
	}
	if got := a.Terrain[1].DistanceM; math.Abs(got-geo.FeetToMeters(20000)) > 1e-9 {
		t.Errorf("terrain distance = %v m, want %v", got, geo.FeetToMeters(20000))
	}

	// Two structures plus one usable turbine; the turbine without heights
	// is rejected.
	if len(a.Obstructions) != 3 {
		t.Fatalf("len(Obstructions) = %d, want 3", len(a.Obstructions))
	}
	if len(a.Rejected) != 1 || a.Rejected[0].ID != "3104456" || !errors.Is(a.Rejected[0].Err, linkerr.ErrInsufficientData) {
		t.Errorf("Rejected = %+v, want 3104456 with insufficient data", a.Rejected)
	}

	silo := a.Obstructions[1]
	if silo.HasBase() {
		t.Error("silo base elevation should be unknown")
	}
	if math.Abs(silo.Point.Latitude-(45+1.0/60)) > 1e-9 || math.Abs(silo.Point.Longitude+(93+10.0/60)) > 1e-9 {
		t.Errorf("silo point = %v", silo.Point)
	}

	turbine := a.Obstructions[2]
	if turbine.ID != "3104455" {
		t.Errorf("turbine id = %q, want case_id", turbine.ID)
	}
	// t_hh and t_rd are meters even in a feet scenario.
	if math.Abs(turbine.StructureHeightM-80) > 1e-9 || math.Abs(turbine.RotorRadiusM-58.4) > 1e-9 {
		t.Errorf("turbine = %v m hub, %v m rotor radius, want 80 and 58.4", turbine.StructureHeightM, turbine.RotorRadiusM)
	}

	if math.Abs(a.CorridorHalfWidthM-1000) > 1e-3 || math.Abs(a.CorridorExtensionM-500) > 1e-3 {
		t.Errorf("corridor = %v/%v m, want 1000/500", a.CorridorHalfWidthM, a.CorridorExtensionM)
	}
}

func TestResolveErrors(t *testing.T) {
	const sites = `
site_a: {latitude: 44.0, longitude: -93.0, ground_elevation: 300, antenna_height: 30}
site_b: {latitude: 44.1, longitude: -93.0, ground_elevation: 300, antenna_height: 30}
`
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"missing units", "frequency_ghz: 11\n" + sites, linkerr.ErrInputValidation},
		{"unknown units", "units: furlongs\nfrequency_ghz: 11\n" + sites, linkerr.ErrInputValidation},
		{"bad frequency", "units: m\nfrequency_ghz: 0\n" + sites, linkerr.ErrInvalidFrequency},
		{"coincident sites", `units: m
frequency_ghz: 6
site_a: {latitude: 44.0, longitude: -93.0}
site_b: {latitude: 44.0, longitude: -93.0}
`, linkerr.ErrGeometryDegenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if _, err := s.Resolve(geo.DefaultEarth()); !errors.Is(err, tt.want) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResolveTurbineUnits(t *testing.T) {
	const sites = `
frequency_ghz: 11
site_a: {latitude: 44.0, longitude: -93.0, ground_elevation: 300, antenna_height: 30}
site_b: {latitude: 44.1, longitude: -93.0, ground_elevation: 300, antenna_height: 30}
`
	tests := []struct {
		name       string
		doc        string
		wantHubM   float64
		wantRadius float64
	}{
		{"database columns in a feet scenario", "units: ft" + sites + "turbines:\n  - {case_id: \"1\", ylat: 44.05, xlong: -93.0, t_hh: 80, t_rd: 100}\n", 80, 50},
		{"database columns in a meter scenario", "units: m" + sites + "turbines:\n  - {case_id: \"1\", ylat: 44.05, xlong: -93.0, t_hh: 80, t_rd: 100}\n", 80, 50},
		{"named heights follow the scenario units", "units: ft" + sites + "turbines:\n  - {id: t1, latitude: 44.05, longitude: -93.0, hub_height: 100, rotor_diameter: 200}\n", geo.FeetToMeters(100), geo.FeetToMeters(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			a, err := s.Resolve(geo.DefaultEarth())
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if len(a.Obstructions) != 1 {
				t.Fatalf("len(Obstructions) = %d, want 1 (rejected %+v)", len(a.Obstructions), a.Rejected)
			}
			o := a.Obstructions[0]
			if math.Abs(o.StructureHeightM-tt.wantHubM) > 1e-9 || math.Abs(o.RotorRadiusM-tt.wantRadius) > 1e-9 {
				t.Errorf("turbine = %v m hub, %v m rotor radius, want %v and %v", o.StructureHeightM, o.RotorRadiusM, tt.wantHubM, tt.wantRadius)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "units: m\nfrequency: 11\n"},
		{"bad coordinate", "units: m\nsite_a: {latitude: \"north-ish\", longitude: 1}\n"},
		{"minutes out of range", "units: m\nsite_a: {latitude: \"44-75-00 N\", longitude: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestParseUnits(t *testing.T) {
	for in, want := range map[string]Units{"ft": Feet, "Feet": Feet, "m": Meters, " metres ": Meters} {
		got, err := ParseUnits(in)
		if err != nil || got != want {
			t.Errorf("ParseUnits(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if Feet.ToMeters(3.28084) != 1 {
		t.Errorf("Feet.ToMeters(3.28084) = %v, want 1", Feet.ToMeters(3.28084))
	}
}
