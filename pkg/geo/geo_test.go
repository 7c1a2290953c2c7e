package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

func TestDistance(t *testing.T) {
	earth := DefaultEarth()

	// Test cases with known distances
	tests := []struct {
		name      string
		a, b      GeoPoint
		expected  float64
		tolerance float64 // relative tolerance (e.g., 0.001 for 0.1%)
	}{
		{
			name:      "Same point",
			a:         GeoPoint{37.7749, -122.4194},
			b:         GeoPoint{37.7749, -122.4194},
			expected:  0,
			tolerance: 0.0001,
		},
		{
			name:      "Short distance - SF downtown to Market St",
			a:         GeoPoint{37.7749, -122.4194},
			b:         GeoPoint{37.7734, -122.4167},
			expected:  290.06,
			tolerance: 0.003,
		},
		{
			name:      "Medium distance - SF to Oakland",
			a:         GeoPoint{37.7749, -122.4194},
			b:         GeoPoint{37.8044, -122.2712},
			expected:  13429.63,
			tolerance: 0.003,
		},
		{
			name:      "Long distance - SF to NYC",
			a:         GeoPoint{37.7749, -122.4194},
			b:         GeoPoint{40.7128, -74.0060},
			expected:  4129936.81,
			tolerance: 0.003,
		},
		{
			name:      "One degree of longitude on the equator",
			a:         GeoPoint{0, 0},
			b:         GeoPoint{0, 1},
			expected:  MeanEarthRadiusM * math.Pi / 180,
			tolerance: 1e-12,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := earth.Distance(tc.a, tc.b)

			var difference float64
			if tc.expected == 0 {
				difference = math.Abs(result)
			} else {
				difference = math.Abs(result-tc.expected) / tc.expected
			}

			if difference > tc.tolerance {
				t.Errorf("Distance(%v, %v) = %f, expected %f ± %.3f%%",
					tc.a, tc.b, result, tc.expected, tc.tolerance*100)
			}
		})
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	earth := DefaultEarth()
	pairs := [][2]GeoPoint{
		{{44.9778, -93.2650}, {45.0105, -93.1012}},
		{{-33.8688, 151.2093}, {-33.9, 151.3}},
		{{51.5, -0.12}, {51.5, -0.12000001}},
	}
	for _, p := range pairs {
		ab := earth.Distance(p[0], p[1])
		ba := earth.Distance(p[1], p[0])
		if ab != ba {
			t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
		}
		if ab <= 0 {
			t.Errorf("Distance(%v, %v) = %v, want > 0 for distinct points", p[0], p[1], ab)
		}
		if d := earth.Distance(p[0], p[0]); d != 0 {
			t.Errorf("Distance(p, p) = %v, want 0", d)
		}
	}
}

func TestInitialBearing(t *testing.T) {
	tests := []struct {
		name string
		a, b GeoPoint
		want float64
	}{
		{"due north", GeoPoint{0, 0}, GeoPoint{1, 0}, 0},
		{"due east", GeoPoint{0, 0}, GeoPoint{0, 1}, 90},
		{"due south", GeoPoint{1, 0}, GeoPoint{0, 0}, 180},
		{"due west", GeoPoint{0, 1}, GeoPoint{0, 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InitialBearing(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("InitialBearing() = %v, want %v", got, tt.want)
			}
			if got < 0 || got >= 360 {
				t.Errorf("InitialBearing() = %v, outside [0,360)", got)
			}
		})
	}
}

func TestNormalizeBearing(t *testing.T) {
	for in, want := range map[float64]float64{-90: 270, 360: 0, 725: 5, -360: 0, 0: 0} {
		if got := NormalizeBearing(in); math.Abs(got-want) > 1e-12 {
			t.Errorf("NormalizeBearing(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	earth := DefaultEarth()
	origin := GeoPoint{Latitude: 44.9778, Longitude: -93.2650}

	for _, brg := range []float64{0, 37.5, 90, 181, 270, 359} {
		for _, dist := range []float64{100, 5000, 80000} {
			dest := earth.Destination(origin, brg, dist)
			if got := earth.Distance(origin, dest); math.Abs(got-dist) > 1e-6*dist {
				t.Errorf("Destination(%v, %v): distance back = %v", brg, dist, got)
			}
			got := InitialBearing(origin, dest)
			diff := math.Abs(got - brg)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > 1e-6 {
				t.Errorf("Destination(%v, %v): bearing back = %v", brg, dist, got)
			}
		}
	}
}

func TestValidateCoords(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid coordinates", 40.7128, -74.0060, false},
		{"valid coordinates at boundaries", 90.0, 180.0, false},
		{"valid coordinates at negative boundaries", -90.0, -180.0, false},
		{"invalid latitude too high", 91.0, -74.0060, true},
		{"invalid latitude too low", -91.0, -74.0060, true},
		{"invalid longitude too high", 40.7128, 181.0, true},
		{"invalid longitude too low", 40.7128, -181.0, true},
		{"NaN latitude", math.NaN(), 0, true},
		{"infinite longitude", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoords(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, linkerr.ErrInputValidation) {
				t.Errorf("ValidateCoords() error = %v, want InputValidationError", err)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"44.9778", 44.9778, false},
		{"-93.265", -93.265, false},
		{"44-58-40.08 N", 44 + 58.0/60 + 40.08/3600, false},
		{"93-15-54.0 W", -(93 + 15.0/60 + 54.0/3600), false},
		{"N44-58-40.08", 44 + 58.0/60 + 40.08/3600, false},
		{`40°26'46"N`, 40 + 26.0/60 + 46.0/3600, false},
		{"33-52-08 S", -(33 + 52.0/60 + 8.0/3600), false},
		{"", 0, true},
		{"44-61-00 N", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCoordinate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseCoordinate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	bbox := NewBoundingBox()
	bbox.Extend(GeoPoint{37.7749, -122.4194})
	bbox.Extend(GeoPoint{40.7128, -74.0060})

	if !bbox.Contains(GeoPoint{39.0, -100.0}) {
		t.Errorf("Contains() = false for interior point, box %v", bbox)
	}
	if bbox.Contains(GeoPoint{41.0, -100.0}) {
		t.Errorf("Contains() = true for exterior point, box %v", bbox)
	}

	expected := "(37.774900,-122.419400,40.712800,-74.006000)"
	if bbox.String() != expected {
		t.Errorf("String() = %s, expected %s", bbox.String(), expected)
	}
}

func TestUnitVector(t *testing.T) {
	v := UnitVector(GeoPoint{Latitude: 45, Longitude: 30})
	if math.Abs(v.Norm()-1) > 1e-15 {
		t.Errorf("UnitVector norm = %v, want 1", v.Norm())
	}
	c := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if c != (Vec3{0, 0, 1}) {
		t.Errorf("Cross() = %v, want z axis", c)
	}
}
