// Command zonerecon is the batch driver: point it at a directory of
// captured packet logs and a set of static data tables, and it writes one
// zone-<id>.xml / zone_events-<id>.xml pair per zone touched by the
// captures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/zonerecon/internal/config"
	"github.com/l1jgo/zonerecon/internal/pipeline"
	"github.com/l1jgo/zonerecon/internal/xmlout"
	"github.com/l1jgo/zonerecon/internal/zone"
	"github.com/l1jgo/zonerecon/internal/zonedata"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "zonerecon.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := zonedata.Load(
		cfg.DataStore.HNPCPath,
		cfg.DataStore.ONPCPath,
		cfg.DataStore.ZonePath,
		cfg.DataStore.ZoneRelationPath,
	)
	if err != nil {
		// A bad static table is fatal: every zone's name resolution and
		// connection synthesis depends on it.
		return fmt.Errorf("load static data: %w", err)
	}

	captures, err := filepath.Glob(filepath.Join(cfg.Capture.Dir, cfg.Capture.Pattern))
	if err != nil {
		return fmt.Errorf("glob captures: %w", err)
	}
	if len(captures) == 0 {
		log.Warn("no capture files matched", zap.String("dir", cfg.Capture.Dir), zap.String("pattern", cfg.Capture.Pattern))
		return nil
	}
	log.Info("captures found", zap.Int("count", len(captures)))

	registry := zone.NewRegistry(store)
	p := pipeline.New(registry, xmlout.NewEncoder(), log, cfg.Pipeline.Workers, cfg.Output.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx, captures); err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	log.Info("reconstruction complete", zap.String("out", cfg.Output.Dir))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
