// Package config loads the batch driver's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Capture   CaptureConfig   `toml:"capture"`
	Output    OutputConfig    `toml:"output"`
	DataStore DataStoreConfig `toml:"data_store"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Logging   LoggingConfig   `toml:"logging"`
}

// CaptureConfig locates the input capture files.
type CaptureConfig struct {
	Dir     string `toml:"dir"`
	Pattern string `toml:"pattern"` // glob, relative to Dir
}

// OutputConfig locates where zone/event XML pairs are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// DataStoreConfig points at the four static YAML tables.
type DataStoreConfig struct {
	HNPCPath         string `toml:"hnpc_path"`
	ONPCPath         string `toml:"onpc_path"`
	ZonePath         string `toml:"zone_path"`
	ZoneRelationPath string `toml:"zone_relation_path"`
}

// PipelineConfig tunes concurrency across independent captures.
type PipelineConfig struct {
	Workers int `toml:"workers"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Capture: CaptureConfig{
			Dir:     "captures",
			Pattern: "*.cap",
		},
		Output: OutputConfig{
			Dir: "out",
		},
		DataStore: DataStoreConfig{
			HNPCPath:         "data/hnpc_list.yaml",
			ONPCPath:         "data/onpc_list.yaml",
			ZonePath:         "data/zone_list.yaml",
			ZoneRelationPath: "data/zone_relation_list.yaml",
		},
		Pipeline: PipelineConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
