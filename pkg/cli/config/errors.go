package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrInvalidChunkWindow = goerr.New("chunk overlap must be smaller than chunk size")
	ErrInvalidTopK        = goerr.New("top_k must be positive")
	ErrInvalidDimension   = goerr.New("embedding dimension must be positive")
	ErrUnknownProvider    = goerr.New("unknown LLM provider")
	ErrUnknownBackend     = goerr.New("unknown index backend")
	ErrMissingCredential  = goerr.New("required credential is not set")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	ProviderKey   = "provider"
	BackendKey    = "backend"
	FieldKey      = "field"
)
