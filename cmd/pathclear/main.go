// Command pathclear serves the microwave link clearance tools over MCP on
// stdin/stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/NERVsystems/pathclear/pkg/cache"
	"github.com/NERVsystems/pathclear/pkg/clearance"
	"github.com/NERVsystems/pathclear/pkg/config"
	"github.com/NERVsystems/pathclear/pkg/observability"
	"github.com/NERVsystems/pathclear/pkg/server"
	"github.com/NERVsystems/pathclear/pkg/tools"
	"github.com/NERVsystems/pathclear/pkg/version"
)

// Options are the command line flags.
type Options struct {
	Config         string `short:"c" long:"config" env:"PATHCLEAR_CONFIG" description:"YAML configuration file"`
	Debug          bool   `long:"debug" description:"Enable debug logging"`
	Version        bool   `short:"v" long:"version" description:"Display version information"`
	MetricsAddr    string `long:"metrics-addr" description:"Serve Prometheus metrics on this address, e.g. :9464"`
	GenerateConfig string `long:"generate-config" description:"Generate a Claude Desktop Client config file at the specified path"`
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
		fmt.Println(version.String("pathclear"))
		return
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	if opts.MetricsAddr != "" {
		cfg.Server.MetricsAddr = opts.MetricsAddr
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if opts.GenerateConfig != "" {
		if err := generateClientConfig(opts.GenerateConfig, opts.Config); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", opts.GenerateConfig)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting link clearance MCP server",
		"version", version.BuildVersion,
		"log_level", cfg.Log.Level,
		"k_factor", cfg.Engine.KFactor,
		"projection", cfg.Engine.ProjectionMethod)

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, os.Stderr, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	engine, err := clearance.New(cfg.Engine.Clearance())
	if err != nil {
		return fmt.Errorf("create evaluator: %w", err)
	}

	profiles := cache.NewProfileStore(cfg.Server.ProfileCacheSize, cfg.Server.ProfileCacheTTL)
	profiles.OnChange(metrics.SetCachedProfiles)

	srv, err := server.NewServer(logger, tools.Options{
		Engine:       engine,
		Builder:      cfg.Engine.Builder(),
		Profiles:     profiles,
		Metrics:      metrics,
		Limiter:      tools.NewRateLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst),
		MaxBatchSize: cfg.Server.MaxBatchSize,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		metricsSrv = serveMetrics(cfg.Server.MetricsAddr, metrics, logger)
	}

	logger.Info("server initialized, waiting for requests")
	err = srv.RunWithContext(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return err
}

func serveMetrics(addr string, metrics *observability.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server exited", "error", err)
		}
	}()

	logger.Info("serving Prometheus metrics", "addr", addr)
	return srv
}

// generateClientConfig creates or updates a Claude Desktop Client config file
// with an entry starting this server. configPath, if set, is passed on with
// --config.
func generateClientConfig(outputPath, configPath string) error {
	logger := slog.Default()

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	args := []string{}
	if configPath != "" {
		absConfig, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		args = append(args, "--config", absConfig)
	}
	serverConfig := map[string]any{
		"command": absExecPath,
		"args":    args,
	}

	config := make(map[string]any)
	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &config); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			config = make(map[string]any)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	mcpServers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		config["mcpServers"] = mcpServers
	}
	mcpServers["pathclear"] = serverConfig

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
