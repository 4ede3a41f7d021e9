// Package config provides configuration types and defaults for theia.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default constants
const (
	// DefaultWorkHandle is the padding in frames around Cut In/Out for artist working space.
	DefaultWorkHandle int64 = 8

	// DefaultScanHandle is the padding in frames around Clip In/Out for scanning.
	DefaultScanHandle int64 = 24

	// DefaultBottomTrack is the lowest video track walked for elements.
	DefaultBottomTrack = 1

	// DefaultRetimeTolerance is the relative tolerance for treating per-segment
	// speeds as one constant speed (1 part in 1000).
	DefaultRetimeTolerance = 0.001

	// CounterTrackAuto selects the counter track by name ("counter" substring,
	// case-insensitive) instead of an explicit index.
	CounterTrackAuto = 0

	// TopTrackAll walks every video track above BottomTrack.
	TopTrackAll = 0
)

// Config holds all configuration for a reconstruction run. It is built once
// by the caller, validated, and then threaded read-only through every
// component; the pipeline itself never mutates it.
type Config struct {
	// Timeline selection
	Timeline    string `yaml:"timeline"`     // empty = current/active timeline
	OldTimeline string `yaml:"old_timeline"` // comparison mode target, empty = disabled
	Sequence    string `yaml:"sequence"`     // empty = derived from timeline name prefix

	// Track range walked for elements (1-based, inclusive)
	BottomTrack int `yaml:"bottom_track"`
	TopTrack    int `yaml:"top_track"` // TopTrackAll = highest track present

	// CounterTrack is the video track carrying frame-counter clips.
	// CounterTrackAuto picks the highest track whose name contains "counter".
	CounterTrack int `yaml:"counter_track"`

	// Handles (frames)
	WorkHandle int64 `yaml:"work_handle"`
	ScanHandle int64 `yaml:"scan_handle"`

	// HalfFrameCorrection subtracts half a frame from every source timestamp
	// before rounding, compensating for a known host reporting bias.
	HalfFrameCorrection bool `yaml:"half_frame_correction"`

	// RetimeTolerance is the maximum relative spread between per-segment
	// speeds still classified as one constant speed.
	RetimeTolerance float64 `yaml:"retime_tolerance"`

	// VerifyModel runs post-reconstruction consistency checks.
	VerifyModel bool `yaml:"verify_model"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BottomTrack:         DefaultBottomTrack,
		TopTrack:            TopTrackAll,
		CounterTrack:        CounterTrackAuto,
		WorkHandle:          DefaultWorkHandle,
		ScanHandle:          DefaultScanHandle,
		RetimeTolerance:     DefaultRetimeTolerance,
		VerifyModel:         true,
		HalfFrameCorrection: false,
	}
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigFile, path, err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigFile, path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BottomTrack < 1 {
		return fmt.Errorf("%w: bottom track must be >= 1, got %d", ErrInvalidTrackRange, c.BottomTrack)
	}

	if c.TopTrack != TopTrackAll && c.TopTrack < c.BottomTrack {
		return fmt.Errorf("%w: top track %d below bottom track %d", ErrInvalidTrackRange, c.TopTrack, c.BottomTrack)
	}

	if c.CounterTrack < 0 {
		return fmt.Errorf("%w: counter track must be >= 0, got %d", ErrInvalidTrackRange, c.CounterTrack)
	}

	if c.WorkHandle < 0 {
		return fmt.Errorf("%w: work handle must be >= 0, got %d", ErrInvalidHandle, c.WorkHandle)
	}

	if c.ScanHandle < 0 {
		return fmt.Errorf("%w: scan handle must be >= 0, got %d", ErrInvalidHandle, c.ScanHandle)
	}

	if c.RetimeTolerance <= 0 || c.RetimeTolerance >= 1 {
		return fmt.Errorf("%w: must be in (0, 1), got %v", ErrInvalidTolerance, c.RetimeTolerance)
	}

	return nil
}
