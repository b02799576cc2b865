package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/canvasflow/internal/dynamo"
)

const (
	DefaultDt        = 1.0 / 60
	DefaultDuration  = 30.0
	DefaultFrameRate = 60
	DefaultLayout    = "cluster"
	DefaultOutputDir = "runs"
	DefaultSnapshots = "canvasflow.db"
)

// Config is a session file: which physics to run and where to put results.
type Config struct {
	Preset    string             `yaml:"preset"`
	Physics   dynamo.ConfigPatch `yaml:"physics"`
	Layout    string             `yaml:"layout"`
	Dt        float64            `yaml:"dt"`
	Duration  float64            `yaml:"duration"`
	FrameRate int                `yaml:"frame_rate"`
	OutputDir string             `yaml:"output_dir"`
	Snapshots string             `yaml:"snapshots"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:    "default",
		Layout:    DefaultLayout,
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		FrameRate: DefaultFrameRate,
		OutputDir: DefaultOutputDir,
		Snapshots: DefaultSnapshots,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.Engine(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Engine resolves the preset and the physics overrides into a validated
// engine config.
func (c *Config) Engine() (dynamo.Config, error) {
	cfg := dynamo.DefaultConfig()
	if c.Preset != "" {
		p, ok := Presets[c.Preset]
		if !ok {
			return cfg, fmt.Errorf("%w: %s", dynamo.ErrUnknownPreset, c.Preset)
		}
		cfg.Merge(p)
	}
	cfg.Merge(c.Physics)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
