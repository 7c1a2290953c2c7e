package profile

import (
	"errors"
	"math"
	"testing"

	"github.com/NERVsystems/pathclear/pkg/geo"
	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

func testPath(t *testing.T) link.Path {
	t.Helper()
	earth := geo.DefaultEarth()
	start := link.PathEndpoint{Point: geo.GeoPoint{Latitude: 44.0, Longitude: -93.0}, GroundElevationM: 300, AntennaHeightM: 30}
	end := link.PathEndpoint{Point: earth.Destination(start.Point, 90, 10000), GroundElevationM: 320, AntennaHeightM: 50}
	p, err := link.NewPath(start, end, earth)
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	return p
}

func ptr(v float64) *float64 { return &v }

func TestNewSliceSource(t *testing.T) {
	tests := []struct {
		name    string
		samples []ElevationSample
		wantErr bool
	}{
		{"ordered", []ElevationSample{{DistanceM: 0, TerrainM: 1}, {DistanceM: 10, TerrainM: 2}}, false},
		{"unordered is sorted", []ElevationSample{{DistanceM: 10, TerrainM: 2}, {DistanceM: 0, TerrainM: 1}}, false},
		{"duplicate distance", []ElevationSample{{DistanceM: 5, TerrainM: 1}, {DistanceM: 5, TerrainM: 2}}, true},
		{"negative distance", []ElevationSample{{DistanceM: -1, TerrainM: 1}}, true},
		{"NaN terrain", []ElevationSample{{DistanceM: 0, TerrainM: math.NaN()}}, true},
		{"negative vegetation", []ElevationSample{{DistanceM: 0, TerrainM: 1, VegetationM: ptr(-2)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSliceSource(tt.samples)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSliceSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, linkerr.ErrInputValidation) {
				t.Errorf("error kind = %v, want input validation", linkerr.KindOf(err))
			}
		})
	}
}

func TestBuildEvenlySpaced(t *testing.T) {
	path := testPath(t)
	total := path.TotalDistanceM()

	src, err := NewSliceSource([]ElevationSample{
		{DistanceM: 0, TerrainM: 300, VegetationM: ptr(10)},
		{DistanceM: total / 2, TerrainM: 400, VegetationM: ptr(20)},
		{DistanceM: total, TerrainM: 320},
	})
	if err != nil {
		t.Fatal(err)
	}

	prof, err := Builder{Count: 5}.Build(path, src)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(prof.Samples) != 5 {
		t.Fatalf("len(Samples) = %d, want 5", len(prof.Samples))
	}
	if prof.Samples[0].DistanceM != 0 || prof.Samples[4].DistanceM != total {
		t.Errorf("profile spans [%v, %v], want [0, %v]", prof.Samples[0].DistanceM, prof.Samples[4].DistanceM, total)
	}
	for i := 1; i < len(prof.Samples); i++ {
		if prof.Samples[i].DistanceM <= prof.Samples[i-1].DistanceM {
			t.Fatalf("distances not strictly increasing at %d", i)
		}
	}

	// Quarter point interpolates between 300 and 400.
	if got := prof.Samples[1].TerrainM; math.Abs(got-350) > 1e-9 {
		t.Errorf("Samples[1].TerrainM = %v, want 350", got)
	}
	if v := prof.Samples[1].VegetationM; v == nil || math.Abs(*v-15) > 1e-9 {
		t.Errorf("Samples[1].VegetationM = %v, want 15", v)
	}
	// Vegetation is only interpolated when both neighbours carry it.
	if prof.Samples[3].VegetationM != nil {
		t.Errorf("Samples[3].VegetationM = %v, want nil", *prof.Samples[3].VegetationM)
	}
	if got := prof.Samples[2].TerrainM; got != 400 {
		t.Errorf("midpoint TerrainM = %v, want 400 (verbatim)", got)
	}
}

func TestBuildMatchTolerance(t *testing.T) {
	path := testPath(t)
	total := path.TotalDistanceM()

	// Only samples near the ends; the midpoint has no neighbours within reach.
	src, _ := NewSliceSource([]ElevationSample{
		{DistanceM: 0.3, TerrainM: 301},
		{DistanceM: total - 0.3, TerrainM: 319},
	})

	prof, err := Builder{Count: 2}.Build(path, src)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if prof.Samples[0].TerrainM != 301 || prof.Samples[1].TerrainM != 319 {
		t.Errorf("matched samples = %v, %v; want 301, 319", prof.Samples[0].TerrainM, prof.Samples[1].TerrainM)
	}

	_, err = Builder{Count: 2, MatchToleranceM: 0.1}.Build(path, src)
	if !errors.Is(err, linkerr.ErrInsufficientData) {
		t.Errorf("Build() with tight tolerance error = %v, want insufficient data", err)
	}
}

func TestBuildInsufficientData(t *testing.T) {
	path := testPath(t)
	src, _ := NewSliceSource([]ElevationSample{{DistanceM: 0, TerrainM: 300}, {DistanceM: 100, TerrainM: 305}})

	_, err := Builder{Count: 11}.Build(path, src)
	if !errors.Is(err, linkerr.ErrInsufficientData) {
		t.Errorf("Build() error = %v, want insufficient data", err)
	}

	_, err = Builder{}.Build(path, nil)
	if !errors.Is(err, linkerr.ErrInsufficientData) {
		t.Errorf("Build(nil source) error = %v, want insufficient data", err)
	}
}

func TestBuildSpacing(t *testing.T) {
	path := testPath(t)
	total := path.TotalDistanceM()
	src, _ := NewSliceSource([]ElevationSample{{DistanceM: 0, TerrainM: 300}, {DistanceM: total, TerrainM: 320}})

	prof, err := Builder{SpacingM: 1000}.Build(path, src)
	if err != nil {
		t.Fatal(err)
	}
	want := int(math.Ceil(total/1000)) + 1
	if len(prof.Samples) != want {
		t.Errorf("len(Samples) = %d, want %d", len(prof.Samples), want)
	}

	tests := []struct {
		name string
		b    Builder
	}{
		{"single sample", Builder{Count: 1}},
		{"negative count", Builder{Count: -3}},
		{"negative spacing", Builder{SpacingM: -5}},
		{"too many samples", Builder{Count: MaxCount + 1}},
		{"spacing below the sample limit", Builder{SpacingM: total / MaxCount}},
		{"vanishing spacing", Builder{SpacingM: 1e-300}},
		{"denormal spacing", Builder{SpacingM: 5e-324}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(path, src); !errors.Is(err, linkerr.ErrInputValidation) {
				t.Errorf("Build() error = %v, want input validation", err)
			}
		})
	}
}

func TestReferenceHeight(t *testing.T) {
	path := testPath(t)
	total := path.TotalDistanceM()

	tests := []struct {
		d    float64
		want float64
	}{
		{0, 330},
		{total, 370},
		{total / 2, 350},
		{total / 4, 340},
		{-5, 330},
		{total + 5, 370},
	}
	for _, tt := range tests {
		if got := ReferenceHeight(path, tt.d); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ReferenceHeight(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestTerrainAt(t *testing.T) {
	prof := Profile{
		Samples:        []ElevationSample{{DistanceM: 0, TerrainM: 100}, {DistanceM: 100, TerrainM: 200}},
		TotalDistanceM: 100,
	}

	if got, err := prof.TerrainAt(25); err != nil || math.Abs(got-125) > 1e-9 {
		t.Errorf("TerrainAt(25) = %v, %v; want 125", got, err)
	}
	if got, err := prof.TerrainAt(100); err != nil || got != 200 {
		t.Errorf("TerrainAt(100) = %v, %v; want 200", got, err)
	}
	if _, err := prof.TerrainAt(101); !errors.Is(err, linkerr.ErrInsufficientData) {
		t.Errorf("TerrainAt(101) error = %v, want insufficient data", err)
	}
	if _, err := (Profile{}).TerrainAt(0); !errors.Is(err, linkerr.ErrInsufficientData) {
		t.Errorf("empty TerrainAt error = %v, want insufficient data", err)
	}
}

func TestSurface(t *testing.T) {
	if got := (ElevationSample{TerrainM: 10, VegetationM: ptr(5)}).SurfaceM(); got != 15 {
		t.Errorf("SurfaceM() = %v, want 15", got)
	}
	if got := (ElevationSample{TerrainM: 10}).SurfaceM(); got != 10 {
		t.Errorf("SurfaceM() = %v, want 10", got)
	}
}
