package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound = goerr.New("configuration file not found")
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrDuplicateKey   = goerr.New("duplicate key")
	ErrMissingKey     = goerr.New("key is required")
	ErrMissingName    = goerr.New("name is required")
	ErrInvalidEffort  = goerr.New("invalid effort")
	ErrWeakSecret     = goerr.New("auth secret must be at least 32 bytes")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	SectionKey    = "section"
	KeyKey        = "key"
	IndexKey      = "index"
)
