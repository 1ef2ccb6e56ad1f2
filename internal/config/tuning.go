// Package config loads JSON-overridable tuning parameters for the
// locator's discovery cadence, the receiver's range-detection pacing,
// and the ARPA tracker's Kalman/lost-target thresholds.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the canonical location of the tuning file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration for every numeric default
// spec §4.E and §5 name as a constant. Fields are pointer-optional so
// a partial JSON document only overrides what it specifies; everything
// else falls back to the compiled-in default via the Get* accessors.
type TuningConfig struct {
	// Locator timing (spec §4.B).
	WakeInterval *string `json:"wake_interval,omitempty"` // duration string like "2s"
	IdleInterval *string `json:"idle_interval,omitempty"`
	LostAfter    *string `json:"lost_after,omitempty"`

	// Receiver timing (spec §4.C range detection, §4.D bootstrap).
	RangeDetectionStepInterval *string `json:"range_detection_step_interval,omitempty"`
	InitialCommandRetryBudget  *int    `json:"initial_command_retry_budget,omitempty"`

	// ARPA tracker tuning (spec §4.E).
	ProcessNoisePos  *float64 `json:"process_noise_pos,omitempty"`
	ProcessNoiseVel  *float64 `json:"process_noise_vel,omitempty"`
	MeasurementNoise *float64 `json:"measurement_noise,omitempty"`
	MaxLostCount     *int     `json:"max_lost_count,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field nil, so
// every Get* accessor falls back to its compiled-in default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must
// end in .json and the file must be under 1MB, mirroring the teacher's
// own defaults-file loader.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every set field parses/ranges correctly.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*string{
		"wake_interval":                 c.WakeInterval,
		"idle_interval":                 c.IdleInterval,
		"lost_after":                    c.LostAfter,
		"range_detection_step_interval": c.RangeDetectionStepInterval,
	} {
		if v == nil || *v == "" {
			continue
		}
		if _, err := time.ParseDuration(*v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, *v, err)
		}
	}
	if c.MaxLostCount != nil && *c.MaxLostCount < 1 {
		return fmt.Errorf("max_lost_count must be positive, got %d", *c.MaxLostCount)
	}
	return nil
}

func (c *TuningConfig) durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

// GetWakeInterval returns WakeInterval or its spec §4.B default (2s).
func (c *TuningConfig) GetWakeInterval() time.Duration {
	return c.durationOr(c.WakeInterval, 2*time.Second)
}

// GetIdleInterval returns IdleInterval or its spec §4.B default (20s).
func (c *TuningConfig) GetIdleInterval() time.Duration {
	return c.durationOr(c.IdleInterval, 20*time.Second)
}

// GetLostAfter returns LostAfter or its spec §4.B default (60s).
func (c *TuningConfig) GetLostAfter() time.Duration {
	return c.durationOr(c.LostAfter, 60*time.Second)
}

// GetRangeDetectionStepInterval returns the pacing between successive
// range-detection candidate commands, or its default (2s).
func (c *TuningConfig) GetRangeDetectionStepInterval() time.Duration {
	return c.durationOr(c.RangeDetectionStepInterval, 2*time.Second)
}

// GetInitialCommandRetryBudget returns InitialCommandRetryBudget or its
// default (3). No package reads this value: the receiver sends its
// initial-commands burst once and does not retry it.
func (c *TuningConfig) GetInitialCommandRetryBudget() int {
	if c.InitialCommandRetryBudget == nil {
		return 3
	}
	return *c.InitialCommandRetryBudget
}

// GetProcessNoisePos returns the Kalman position process noise, or the
// tracker's compiled-in default.
func (c *TuningConfig) GetProcessNoisePos() float64 {
	if c.ProcessNoisePos == nil {
		return 0.1
	}
	return *c.ProcessNoisePos
}

// GetProcessNoiseVel returns the Kalman velocity process noise, or the
// tracker's compiled-in default.
func (c *TuningConfig) GetProcessNoiseVel() float64 {
	if c.ProcessNoiseVel == nil {
		return 0.5
	}
	return *c.ProcessNoiseVel
}

// GetMeasurementNoise returns the Kalman measurement noise, or the
// tracker's compiled-in default.
func (c *TuningConfig) GetMeasurementNoise() float64 {
	if c.MeasurementNoise == nil {
		return 0.2
	}
	return *c.MeasurementNoise
}

// GetMaxLostCount returns the consecutive-miss threshold before a
// target is deleted (spec §4.E step 6), or its default (12).
func (c *TuningConfig) GetMaxLostCount() int {
	if c.MaxLostCount == nil {
		return 12
	}
	return *c.MaxLostCount
}
