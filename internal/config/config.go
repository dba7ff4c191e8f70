// Package config handles plasmid browser configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tOgg1/plasmid-browser/internal/query"
)

// Config is the root configuration structure.
type Config struct {
	// Endpoint settings for the data source.
	Endpoint EndpointConfig `yaml:"endpoint" mapstructure:"endpoint"`

	// Auth settings for the identity provider.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Browse settings for the interactive browser and query output.
	Browse BrowseConfig `yaml:"browse" mapstructure:"browse"`
}

// EndpointConfig describes the remote data endpoint.
type EndpointConfig struct {
	// URL is the data endpoint base URL.
	URL string `yaml:"url" mapstructure:"url"`

	// TokenParam is the query parameter the id token is appended as.
	TokenParam string `yaml:"token_param" mapstructure:"token_param"`

	// Timeout bounds a single fetch.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AuthConfig contains identity provider settings.
type AuthConfig struct {
	// ClientID is the OAuth client identifier the id token is issued for.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`

	// IDToken is a pre-acquired id token.
	IDToken string `yaml:"id_token" mapstructure:"id_token"`

	// TokenFile is a file holding the id token.
	TokenFile string `yaml:"token_file" mapstructure:"token_file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The browser logs nowhere else.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// BrowseConfig contains browser settings.
type BrowseConfig struct {
	// PageSize is the number of rows per page.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// MetricsAddr optionally serves load metrics while browsing.
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			TokenParam: "idToken",
			Timeout:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Browse: BrowseConfig{
			PageSize: query.PageSize,
			Theme:    "default",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	problems := &ValidationErrors{}

	if raw := strings.TrimSpace(c.Endpoint.URL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			problems.Add("endpoint.url", err)
		} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems.AddMessage("endpoint.url", "must be an absolute http(s) URL")
		}
	}
	if strings.TrimSpace(c.Endpoint.TokenParam) == "" {
		problems.AddMessage("endpoint.token_param", "is required")
	}
	if c.Endpoint.Timeout <= 0 {
		problems.AddMessage("endpoint.timeout", "must be positive")
	}
	if c.Browse.PageSize < 1 {
		problems.AddMessage("browse.page_size", "must be at least 1")
	}
	switch c.Browse.Theme {
	case "default", "high-contrast":
	default:
		problems.AddMessage("browse.theme", "must be one of default, high-contrast")
	}

	return problems.Err()
}

// RequireEndpoint reports a missing endpoint URL. Commands that fetch call
// it; configuration alone does not need one.
func (c *Config) RequireEndpoint() error {
	if strings.TrimSpace(c.Endpoint.URL) == "" {
		return fmt.Errorf("endpoint.url is not configured (set PLASMID_ENDPOINT_URL or VITE_DATA_URL)")
	}
	return nil
}

// IDToken returns the configured id token, reading TokenFile when no token
// is set inline. An empty result means the user has not signed in.
func (c *Config) IDToken() (string, error) {
	if token := strings.TrimSpace(c.Auth.IDToken); token != "" {
		return token, nil
	}
	if c.Auth.TokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Auth.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
