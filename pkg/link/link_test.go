package link

import (
	"errors"
	"math"
	"testing"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

func endpoint(lat, lon, ground, antenna float64) PathEndpoint {
	return PathEndpoint{
		Point:            geo.GeoPoint{Latitude: lat, Longitude: lon},
		GroundElevationM: ground,
		AntennaHeightM:   antenna,
	}
}

func TestNewPath(t *testing.T) {
	earth := geo.DefaultEarth()

	tests := []struct {
		name    string
		start   PathEndpoint
		end     PathEndpoint
		earth   geo.Earth
		wantErr error
	}{
		{"valid", endpoint(44.0, -93.0, 300, 30), endpoint(44.1, -93.0, 310, 40), earth, nil},
		{"coincident", endpoint(44.0, -93.0, 300, 30), endpoint(44.0, -93.0, 280, 10), earth, linkerr.ErrGeometryDegenerate},
		{"latitude out of range", endpoint(95.0, -93.0, 0, 0), endpoint(44.0, -93.0, 0, 0), earth, linkerr.ErrInputValidation},
		{"NaN ground", endpoint(44.0, -93.0, math.NaN(), 0), endpoint(44.1, -93.0, 0, 0), earth, linkerr.ErrInputValidation},
		{"negative antenna", endpoint(44.0, -93.0, 0, -1), endpoint(44.1, -93.0, 0, 0), earth, linkerr.ErrInputValidation},
		{"bad earth", endpoint(44.0, -93.0, 0, 0), endpoint(44.1, -93.0, 0, 0), geo.Earth{}, linkerr.ErrInputValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPath(tt.start, tt.end, tt.earth)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewPath() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPath() unexpected error: %v", err)
			}
			if p.TotalDistanceM() <= 0 {
				t.Errorf("TotalDistanceM() = %v, want > 0", p.TotalDistanceM())
			}
			if b := p.InitialBearingDeg(); b < 0 || b >= 360 {
				t.Errorf("InitialBearingDeg() = %v, want [0,360)", b)
			}
		})
	}
}

func TestPathReversed(t *testing.T) {
	p, err := NewPath(endpoint(44.0, -93.0, 300, 30), endpoint(44.2, -92.8, 310, 40), geo.DefaultEarth())
	if err != nil {
		t.Fatal(err)
	}
	r := p.Reversed()

	if r.TotalDistanceM() != p.TotalDistanceM() {
		t.Errorf("reversed distance = %v, want %v", r.TotalDistanceM(), p.TotalDistanceM())
	}
	if r.Start() != p.End() || r.End() != p.Start() {
		t.Error("reversed endpoints not swapped")
	}
	if got := r.Start().EffectiveHeightM(); got != 350 {
		t.Errorf("EffectiveHeightM() = %v, want 350", got)
	}
}

func TestObstructionHeights(t *testing.T) {
	o := Obstruction{ID: "t1", Point: geo.GeoPoint{Latitude: 44, Longitude: -93}, StructureHeightM: 80, RotorRadiusM: 50}
	o = o.WithBase(300)

	if got := o.HubTopM(); got != 380 {
		t.Errorf("HubTopM() = %v, want 380", got)
	}
	if got := o.TopHeightM(); got != 430 {
		t.Errorf("TopHeightM() = %v, want 430", got)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	bad := o
	bad.RotorRadiusM = -1
	if err := bad.Validate(); !errors.Is(err, linkerr.ErrInputValidation) {
		t.Errorf("Validate() = %v, want input validation error", err)
	}

	noID := o
	noID.ID = ""
	if err := noID.Validate(); !errors.Is(err, linkerr.ErrInputValidation) {
		t.Errorf("Validate() = %v, want input validation error", err)
	}
}

func TestTurbineSpecObstruction(t *testing.T) {
	tests := []struct {
		name          string
		spec          TurbineSpec
		wantStructure float64
		wantRotor     float64
		wantErr       error
	}{
		{
			name:          "hub and rotor",
			spec:          TurbineSpec{ID: "a", Latitude: 44, Longitude: -93, HubHeightM: 80, RotorDiameterM: 100},
			wantStructure: 80, wantRotor: 50,
		},
		{
			name:          "total and rotor",
			spec:          TurbineSpec{ID: "b", Latitude: 44, Longitude: -93, TotalHeightM: 150, RotorDiameterM: 100},
			wantStructure: 100, wantRotor: 50,
		},
		{
			name:          "total only",
			spec:          TurbineSpec{ID: "c", Latitude: 44, Longitude: -93, TotalHeightM: 120},
			wantStructure: 120, wantRotor: 0,
		},
		{
			name:          "USWTDB aliases",
			spec:          TurbineSpec{CaseID: "3012345", YLat: 44, XLong: -93, TTtlH: 152.4, THH: 94, TRD: 116.8},
			wantStructure: 94, wantRotor: 58.4,
		},
		{
			name:    "no heights",
			spec:    TurbineSpec{ID: "d", Latitude: 44, Longitude: -93},
			wantErr: linkerr.ErrInsufficientData,
		},
		{
			name:    "no id",
			spec:    TurbineSpec{Latitude: 44, Longitude: -93, TotalHeightM: 100},
			wantErr: linkerr.ErrInputValidation,
		},
		{
			name:    "rotor taller than tower",
			spec:    TurbineSpec{ID: "e", Latitude: 44, Longitude: -93, TotalHeightM: 40, RotorDiameterM: 100},
			wantErr: linkerr.ErrInputValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := tt.spec.Obstruction()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Obstruction() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Obstruction() unexpected error: %v", err)
			}
			if math.Abs(o.StructureHeightM-tt.wantStructure) > 1e-9 {
				t.Errorf("StructureHeightM = %v, want %v", o.StructureHeightM, tt.wantStructure)
			}
			if math.Abs(o.RotorRadiusM-tt.wantRotor) > 1e-9 {
				t.Errorf("RotorRadiusM = %v, want %v", o.RotorRadiusM, tt.wantRotor)
			}
		})
	}
}
