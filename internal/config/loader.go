package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Variables from the original web deployment's .env that are still honored
// when the PLASMID_* equivalents are unset.
const (
	legacyDataURLEnv  = "VITE_DATA_URL"
	legacyClientIDEnv = "VITE_CLIENT_ID"
)

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
	envFiles   []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:        viper.New(),
		envFiles: []string{".env"},
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetEnvFiles replaces the dotenv files read before the environment is
// consulted. Missing files are skipped.
func (l *Loader) SetEnvFiles(paths ...string) {
	l.envFiles = append([]string(nil), paths...)
}

// Load loads configuration with proper precedence:
// defaults < config file < .env < env vars < CLI flags
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		// Config file is optional, only error if explicitly specified
		if l.configFile != "" {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyLegacyEnv(cfg)
	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFiles exports dotenv entries without overriding variables that are
// already set.
func (l *Loader) loadEnvFiles() error {
	for _, path := range l.envFiles {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// setupViper configures Viper with defaults and environment bindings.
func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "plasmid"))
	}
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "plasmid"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("PLASMID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.setDefaults(cfg)

	// Viper's Unmarshal ignores env vars for nested keys unless bound.
	for _, key := range configKeys {
		_ = v.BindEnv(key, "PLASMID_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	v.AutomaticEnv()
}

var configKeys = []string{
	"endpoint.url",
	"endpoint.token_param",
	"endpoint.timeout",
	"auth.client_id",
	"auth.id_token",
	"auth.token_file",
	"logging.level",
	"logging.format",
	"logging.file",
	"logging.enable_caller",
	"browse.page_size",
	"browse.theme",
	"browse.metrics_addr",
}

// setDefaults sets all default values in Viper.
func (l *Loader) setDefaults(cfg *Config) {
	v := l.v

	v.SetDefault("endpoint.url", cfg.Endpoint.URL)
	v.SetDefault("endpoint.token_param", cfg.Endpoint.TokenParam)
	v.SetDefault("endpoint.timeout", cfg.Endpoint.Timeout)

	v.SetDefault("auth.client_id", cfg.Auth.ClientID)
	v.SetDefault("auth.id_token", cfg.Auth.IDToken)
	v.SetDefault("auth.token_file", cfg.Auth.TokenFile)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.enable_caller", cfg.Logging.EnableCaller)

	v.SetDefault("browse.page_size", cfg.Browse.PageSize)
	v.SetDefault("browse.theme", cfg.Browse.Theme)
	v.SetDefault("browse.metrics_addr", cfg.Browse.MetricsAddr)
}

// loadConfigFile attempts to load the configuration file.
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// ConfigFileUsed returns the config file that was loaded.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying Viper instance so commands can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

func applyLegacyEnv(cfg *Config) {
	if strings.TrimSpace(cfg.Endpoint.URL) == "" {
		cfg.Endpoint.URL = strings.TrimSpace(os.Getenv(legacyDataURLEnv))
	}
	if strings.TrimSpace(cfg.Auth.ClientID) == "" {
		cfg.Auth.ClientID = strings.TrimSpace(os.Getenv(legacyClientIDEnv))
	}
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandPaths(cfg *Config) {
	cfg.Auth.TokenFile = expandTilde(cfg.Auth.TokenFile)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
}
