package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrDuplicateLabID   = goerr.New("duplicate lab ID")
	ErrMissingLabID     = goerr.New("lab ID is required")
	ErrMissingLabName   = goerr.New("lab name is required")
	ErrInvalidLabID     = goerr.New("invalid lab ID format")
	ErrNoLabsConfigured = goerr.New("at least one lab must be configured")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	LabIDKey      = "lab_id"
	LabIndexKey   = "lab_index"
)
