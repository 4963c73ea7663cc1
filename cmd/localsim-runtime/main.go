// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

// localsim-runtime is the simulated PLC runtime: a TCP server on
// loopback speaking the framed-JSON IDE protocol. One instance per
// port; a second instance exits 2 when the bind fails.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/knetx-controls/localsim/lib/bundle"
	"github.com/knetx-controls/localsim/lib/clock"
	"github.com/knetx-controls/localsim/lib/config"
	"github.com/knetx-controls/localsim/lib/process"
	"github.com/knetx-controls/localsim/lib/server"
	"github.com/knetx-controls/localsim/lib/sim"
	"github.com/knetx-controls/localsim/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
		host        string
		port        int
		logLevel    string
		logFormat   string
		autoload    string
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "path to localsim.yaml (default: $LOCALSIM_CONFIG)")
	flag.StringVar(&host, "host", "", "bind host (default: 127.0.0.1)")
	flag.IntVar(&port, "port", 0, "bind port (default: 1963)")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.StringVar(&logFormat, "log-format", "", "log format: text or json")
	flag.StringVar(&autoload, "project", "", "project directory to load at startup")
	flag.Parse()

	if showVersion {
		fmt.Printf("localsim-runtime %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Listen.Host = host
	}
	if port != 0 {
		cfg.Listen.Port = port
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if autoload != "" {
		cfg.Project.Autoload = autoload
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("localsim-runtime starting", "version", version.Short(), "addr", cfg.Addr())

	clk := clock.Real()
	runtime := sim.New(clk, logger)

	if cfg.Project.Autoload != "" {
		if err := autoloadProject(runtime, clk, cfg.Project.Autoload, logger); err != nil {
			return fmt.Errorf("autoloading project %s: %w", cfg.Project.Autoload, err)
		}
	}

	srv := server.New(cfg.Addr(), runtime, logger)
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, options))
}

// autoloadProject builds a bundle from a project directory on disk
// and loads it exactly as an IDE upload would, so the runtime comes
// up with project_loaded already true.
func autoloadProject(runtime *sim.Runtime, clk clock.Clock, dir string, logger *slog.Logger) error {
	built, err := bundle.BuildFromDir(dir, clk)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(built)
	if err != nil {
		return err
	}
	result, err := runtime.LoadProject(raw)
	if err != nil {
		return err
	}
	logger.Info("project autoloaded", "dir", dir, "name", result.ProjectInfo.Name)
	return nil
}
