// Command clearance evaluates a link scenario file and writes a JSON report,
// optionally with a GeoJSON map of the corridor and results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/config"
	"github.com/NERVsystems/pathclear/pkg/corridor"
	"github.com/NERVsystems/pathclear/pkg/observability"
	"github.com/NERVsystems/pathclear/pkg/profile"
	"github.com/NERVsystems/pathclear/pkg/scenario"
	"github.com/NERVsystems/pathclear/pkg/version"
)

type Options struct {
	Scenario string `short:"s" long:"scenario" description:"Scenario YAML file" required:"true"`
	Output   string `short:"o" long:"out" description:"Report file path. Writes to stdout if empty"`
	GeoJSON  string `long:"geojson" description:"Also write the link, corridor and results as GeoJSON to this path"`
	Config   string `short:"c" long:"config" env:"PATHCLEAR_CONFIG" description:"YAML configuration file"`
	Workers  int    `short:"w" long:"workers" description:"Evaluation workers (0 uses the configured value)"`
	Version  bool   `short:"v" long:"version" description:"Display version information"`
}

// Report is the result of one scenario run. Clearances are in feet.
type Report struct {
	RunID        string  `json:"run_id"`
	Scenario     string  `json:"scenario"`
	FrequencyGHz float64 `json:"frequency_ghz"`
	DistanceM    float64 `json:"distance_m"`

	Summary  clearance.Summary   `json:"summary"`
	Closest  *clearance.Result   `json:"closest,omitempty"`
	Outcomes []clearance.Outcome `json:"outcomes"`
	Rejected []RejectedItem      `json:"rejected,omitempty"`

	OutsideCorridor []string       `json:"outside_corridor,omitempty"`
	Terrain         *TerrainResult `json:"terrain,omitempty"`
}

// RejectedItem is a scenario record that could not be evaluated.
type RejectedItem struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// TerrainResult condenses the terrain clearance of the scenario profile.
type TerrainResult struct {
	Samples             int              `json:"samples"`
	HasLOSClearance     bool             `json:"has_los_clearance"`
	HasEarthClearance   bool             `json:"has_earth_clearance"`
	HasFresnelClearance bool             `json:"has_fresnel_clearance"`
	MinClearanceM       float64          `json:"min_clearance_m"`
	Worst               clearance.Result `json:"worst"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println(version.String("clearance"))
		return
	}

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.Workers > 0 {
		cfg.Engine.Workers = opts.Workers
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	shutdown, err := observability.InitTracing(ctx, cfg.Tracing, os.Stderr, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, logger)

	sc, err := scenario.Load(opts.Scenario)
	if err != nil {
		return err
	}
	a, err := sc.Resolve(cfg.Engine.Earth())
	if err != nil {
		return fmt.Errorf("resolve scenario: %w", err)
	}
	engine, err := clearance.New(cfg.Engine.Clearance())
	if err != nil {
		return err
	}

	rep, col, err := analyze(ctx, logger, engine, cfg.Engine.Builder(), a)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.GeoJSON != "" {
		data, err := col.MarshalJSON()
		if err != nil {
			return fmt.Errorf("marshal geojson: %w", err)
		}
		if err := os.WriteFile(opts.GeoJSON, data, 0644); err != nil {
			return fmt.Errorf("write geojson: %w", err)
		}
	}
	return nil
}

// analyze evaluates every obstruction of a against the link. Obstructions
// outside the scenario corridor, when one is set, are listed but not
// evaluated. Terrain samples, when present, are resampled into a profile
// that supplies unknown base elevations.
func analyze(ctx context.Context, logger *slog.Logger, engine *clearance.Evaluator, builder profile.Builder, a *scenario.Analysis) (rep *Report, col *corridor.Collection, err error) {
	ctx, span := observability.StartSpan(ctx, "analyze scenario",
		attribute.String("scenario", a.Name),
		attribute.Int("obstructions", len(a.Obstructions)))
	defer func() { observability.EndSpan(span, err) }()

	rep = &Report{
		RunID:        uuid.NewString(),
		Scenario:     a.Name,
		FrequencyGHz: a.FrequencyGHz,
		DistanceM:    a.Path.TotalDistanceM(),
	}
	for _, r := range a.Rejected {
		rep.Rejected = append(rep.Rejected, RejectedItem{ID: r.ID, Error: r.Err.Error()})
	}

	col = corridor.NewCollection()
	col.AddPath(a.Path)

	obs := a.Obstructions
	if a.CorridorHalfWidthM > 0 {
		c, err := corridor.Build(a.Path, a.CorridorHalfWidthM, a.CorridorExtensionM)
		if err != nil {
			return nil, nil, fmt.Errorf("build corridor: %w", err)
		}
		col.AddCorridor(c)
		inside := c.Filter(obs)
		for _, o := range obs {
			if !c.Contains(o.Point) {
				rep.OutsideCorridor = append(rep.OutsideCorridor, o.ID)
			}
		}
		obs = inside
	}

	var prof *profile.Profile
	if len(a.Terrain) > 0 {
		src, err := profile.NewSliceSource(a.Terrain)
		if err != nil {
			return nil, nil, fmt.Errorf("terrain: %w", err)
		}
		p, err := builder.Build(a.Path, src)
		if err != nil {
			return nil, nil, fmt.Errorf("build profile: %w", err)
		}
		prof = &p

		tr, err := engine.TerrainClearance(a.Path, p, a.FrequencyGHz)
		if err != nil {
			return nil, nil, fmt.Errorf("terrain clearance: %w", err)
		}
		rep.Terrain = &TerrainResult{
			Samples:             len(p.Samples),
			HasLOSClearance:     tr.HasLOSClearance,
			HasEarthClearance:   tr.HasEarthClearance,
			HasFresnelClearance: tr.HasFresnelClearance,
			MinClearanceM:       tr.MinClearanceM(),
			Worst:               tr.Worst(),
		}
	}

	rep.Outcomes = engine.EvaluateAll(ctx, a.Path, prof, obs, a.FrequencyGHz)
	rep.Summary = clearance.Summarize(rep.Outcomes)
	if closest, ok := clearance.Closest(rep.Outcomes); ok {
		rep.Closest = &closest
	}
	col.AddObstructions(obs, rep.Outcomes)

	logger.Info("scenario evaluated",
		"run_id", rep.RunID,
		"scenario", a.Name,
		"evaluated", rep.Summary.Evaluated,
		"failed", rep.Summary.Failed,
		"rejected", len(rep.Rejected),
		"outside_corridor", len(rep.OutsideCorridor))
	return rep, col, nil
}
