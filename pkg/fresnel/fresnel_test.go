package fresnel

import (
	"errors"
	"math"
	"testing"

	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

func TestRadiusKnownValue(t *testing.T) {
	got, err := Radius(5, 5, 11, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := 17.32 * math.Sqrt(1*5*5/(11.0*10))
	if math.Abs(got-want)/want > 1e-3 {
		t.Errorf("Radius(5, 5, 11, 1) = %v, want %v", got, want)
	}
	if math.Abs(got-8.26)/8.26 > 1e-3 {
		t.Errorf("Radius(5, 5, 11, 1) = %v, want ≈8.26", got)
	}
}

func TestRadiusMaximalAtMidpoint(t *testing.T) {
	const totalM = 40000.0
	mid, _ := RadiusAt(totalM/2, totalM, 6, 1)

	for d := 500.0; d < totalM; d += 500 {
		r, err := RadiusAt(d, totalM, 6, 1)
		if err != nil {
			t.Fatal(err)
		}
		if r > mid {
			t.Errorf("RadiusAt(%v) = %v exceeds midpoint radius %v", d, r, mid)
		}
	}
}

func TestRadiusZones(t *testing.T) {
	r1, _ := Radius(3, 7, 18, 1)
	r2, _ := Radius(3, 7, 18, 2)
	if math.Abs(r2-r1*math.Sqrt2) > 1e-12 {
		t.Errorf("zone 2 radius = %v, want %v", r2, r1*math.Sqrt2)
	}
}

func TestRadiusEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		d1, d2  float64
		freq    float64
		zone    int
		want    float64
		wantErr error
	}{
		{"at start", 0, 10, 11, 1, 0, nil},
		{"at end", 10, 0, 11, 1, 0, nil},
		{"beyond end", 11, -1, 11, 1, 0, nil},
		{"zero frequency", 5, 5, 0, 1, 0, linkerr.ErrInvalidFrequency},
		{"negative frequency", 5, 5, -2, 1, 0, linkerr.ErrInvalidFrequency},
		{"NaN frequency", 5, 5, math.NaN(), 1, 0, linkerr.ErrInvalidFrequency},
		{"zone zero", 5, 5, 11, 0, 0, linkerr.ErrInputValidation},
		{"NaN distance", math.NaN(), 5, 11, 1, 0, linkerr.ErrInputValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Radius(tt.d1, tt.d2, tt.freq, tt.zone)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Radius() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Radius() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvalidFrequencyIsValidationError(t *testing.T) {
	_, err := Radius(1, 1, 0, 1)
	if !errors.Is(err, linkerr.ErrInputValidation) {
		t.Errorf("invalid frequency error %v is not an input validation error", err)
	}
}
