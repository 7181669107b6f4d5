// Package config loads the kics YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"kics/internal/annotate"
	"kics/internal/errs"
	"kics/internal/matching"
)

// Config is the root of the configuration file.
type Config struct {
	Matching MatchingConfig   `yaml:"matching"`
	Segment  SegmentConfig    `yaml:"segment"`
	Estimate EstimateConfig   `yaml:"estimate"`
	Export   annotate.Options `yaml:"export"`
	Log      LogConfig        `yaml:"log"`
	Metrics  MetricsConfig    `yaml:"metrics"`
}

// MatchingConfig holds the matching engine parameters.
type MatchingConfig struct {
	UnmatchedPenalty float64 `yaml:"unmatched_penalty" validate:"gte=0"`
	MinScaffoldSize  int64   `yaml:"min_scaffold_size" validate:"gte=0"`
	// MaxScaffolds of 0 keeps every scaffold.
	MaxScaffolds int  `yaml:"max_scaffolds" validate:"gte=0"`
	ByName       bool `yaml:"by_name"`
	NoOptimize   bool `yaml:"no_optimize" validate:"excluded_if=ByName true"`
}

// SegmentConfig mirrors the segmentation parameters. It is kept separate
// from the segment package so that configuration does not link OpenCV.
type SegmentConfig struct {
	Sigma       float64 `yaml:"sigma" validate:"gte=0,lte=10"`
	Threshold   float64 `yaml:"threshold" validate:"gt=0,lt=1"`
	Invert      bool    `yaml:"invert"`
	MinArea     int     `yaml:"min_area" validate:"gte=0"`
	CloseKernel int     `yaml:"close_kernel" validate:"gte=0,lte=99"`
}

// EstimateConfig controls size estimation.
type EstimateConfig struct {
	// GenomeSize in Mb; 0 reports sizes in percent.
	GenomeSize float64 `yaml:"genome_size" validate:"gte=0"`
	// RelMin is the gap ratio used when guessing labels.
	RelMin int `yaml:"rel_min" validate:"gte=1"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig controls the metrics textfile.
type MetricsConfig struct {
	// File receives the metrics in text exposition format after each
	// command; empty disables.
	File string `yaml:"file"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Matching: MatchingConfig{
			UnmatchedPenalty: matching.DefaultUnmatchedPenalty,
			MinScaffoldSize:  100000,
			MaxScaffolds:     50,
		},
		Segment: SegmentConfig{
			Sigma:     0.5,
			Threshold: 0.5,
		},
		Estimate: EstimateConfig{RelMin: 4},
		Export:   annotate.DefaultOptions(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = validator.New()

// Validate checks value ranges and option combinations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %v: %w", err, errs.ErrInvalidInput)
	}
	return nil
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %v: %w", path, err, errs.ErrParse)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes c as YAML, creating the parent directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MatchingOptions converts the matching section.
func (c Config) MatchingOptions() matching.Options {
	return matching.Options{
		UnmatchedPenalty: c.Matching.UnmatchedPenalty,
		MinScaffoldSize:  c.Matching.MinScaffoldSize,
		MaxScaffolds:     c.Matching.MaxScaffolds,
		ByName:           c.Matching.ByName,
		NoOptimize:       c.Matching.NoOptimize,
	}
}
