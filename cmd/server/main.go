package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agenthands/graphweave/internal/config"
	"github.com/agenthands/graphweave/internal/core"
	"github.com/agenthands/graphweave/internal/driver"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/logging"
	"github.com/agenthands/graphweave/internal/metrics"
	"github.com/agenthands/graphweave/internal/server"
)

const defaultConfigPath = "config/graphweave.toml"

func main() {
	os.Exit(run())
}

// run serves until the router stops and returns the process exit status.
func run() int {
	// Components built below pick up the process logger, so stamp it first.
	logging.SetDefault(logging.Default().With().Str("service", "graphweave").Logger())
	logger := logging.Default()
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file found, using the environment")
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return gwerrors.ExitCode(err)
	}

	ctx := logging.WithLogger(context.Background(), logger)
	var d driver.GraphDriver
	if cfg.Ontology.Source == "memgraph" {
		md, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to Memgraph")
			return gwerrors.ExitRun
		}
		defer func() {
			if err := md.Close(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to close Memgraph driver")
			}
		}()
		d = md
	}

	hierarchy, err := core.LoadHierarchy(ctx, cfg, d)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load type hierarchy")
		return gwerrors.ExitCode(err)
	}

	w, err := core.NewWeaver(cfg, hierarchy)
	if err != nil {
		logger.Error().Err(err).Msg("failed to configure reconciliation")
		return gwerrors.ExitCode(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	w.Metrics = metrics.New(reg)

	r := server.NewServer(w, reg).SetupRouter()

	logger.Info().Str("port", cfg.Server.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		return gwerrors.ExitRun
	}
	return gwerrors.ExitOK
}

// loadConfig reads GRAPHWEAVE_CONFIG, or the default path when it exists, and
// falls back to the built-in defaults.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("GRAPHWEAVE_CONFIG")
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, gwerrors.NewConfigError("config", "configuration file not found", err)
			}
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
