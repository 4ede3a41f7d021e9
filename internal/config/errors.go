// Package config provides configuration types and defaults for theia.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidTrackRange indicates a bottom/top/counter track outside the valid range.
	ErrInvalidTrackRange = errors.New("invalid track range")

	// ErrInvalidHandle indicates a negative work or scan handle.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrInvalidTolerance indicates a retime tolerance outside (0, 1).
	ErrInvalidTolerance = errors.New("retime tolerance out of range")

	// ErrConfigFile indicates an unreadable or malformed config file.
	ErrConfigFile = errors.New("config file error")
)
