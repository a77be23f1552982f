// Package config manages application configuration using viper.
// It supports configuration from YAML files (.latamai.yaml), environment
// variables (LATAMAI_ prefix, plus the legacy LATAM_BACKEND_URL and
// LATAM_SOURCES_BACKEND_URL), and command-line flags with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds all application configuration values.
// It is populated from config files, environment variables, and command-line flags.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"` // Backend endpoints and bounded waits
	Server  ServerConfig  `mapstructure:"server"`  // HTTP server settings
	UI      UIConfig      `mapstructure:"ui"`      // Terminal chat settings
	Log     LogConfig     `mapstructure:"log"`     // Logging settings
}

// BackendConfig holds the backend endpoints.
type BackendConfig struct {
	ChatURL        string        `mapstructure:"chat_url"`        // Chat endpoint
	SourcesURL     string        `mapstructure:"sources_url"`     // Sources listing endpoint
	ChatTimeout    time.Duration `mapstructure:"chat_timeout"`    // Bounded wait for chat calls
	SourcesTimeout time.Duration `mapstructure:"sources_timeout"` // Bounded wait for sources calls
}

// ServerConfig holds configuration for `latamai serve`.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`       // Listen address
	RateLimit float64 `mapstructure:"rate_limit"` // Requests per second per client, 0 disables
	RateBurst int     `mapstructure:"rate_burst"` // Burst size per client
}

// UIConfig holds configuration for the terminal chat.
type UIConfig struct {
	SettingsPath string `mapstructure:"settings_path"` // Theme preference file
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	File   string `mapstructure:"file"`   // Log file used by the terminal chat
	Format string `mapstructure:"format"` // text, json or logfmt
}

// Defaults for the backend, mirrored by the backend client.
const (
	DefaultChatURL        = "http://127.0.0.1:8000/v1/chat"
	DefaultSourcesURL     = "http://127.0.0.1:8000/v1/sources"
	DefaultChatTimeout    = 22 * time.Second
	DefaultSourcesTimeout = 14 * time.Second
	DefaultAddr           = ":3000"
)

var (
	cfg        Config
	configFile string
)

// Init initializes the configuration system by setting defaults,
// loading config files from current and home directories, and
// enabling environment variable overrides with the LATAMAI_ prefix.
func Init() {
	setDefaults()
	loadConfigFile()
	loadEnvVars()
}

func setDefaults() {
	// Backend defaults match the local FastAPI backend
	viper.SetDefault("backend.chat_url", DefaultChatURL)
	viper.SetDefault("backend.sources_url", DefaultSourcesURL)
	viper.SetDefault("backend.chat_timeout", DefaultChatTimeout)
	viper.SetDefault("backend.sources_timeout", DefaultSourcesTimeout)

	// Server defaults
	viper.SetDefault("server.addr", DefaultAddr)
	viper.SetDefault("server.rate_limit", 5.0)
	viper.SetDefault("server.rate_burst", 10)

	// Files live under ~/.latamai
	dir := dataDir()
	viper.SetDefault("ui.settings_path", filepath.Join(dir, "settings.toml"))

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(dir, "latamai.log"))
	viper.SetDefault("log.format", "text")
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".latamai"
	}
	return filepath.Join(home, ".latamai")
}

func loadConfigFile() {
	viper.SetConfigName(".latamai")
	viper.SetConfigType("yaml")

	// Add config paths in priority order
	// 1. Current directory (project config)
	viper.AddConfigPath(".")
	// 2. Home directory (global config)
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err == nil {
		configFile = viper.ConfigFileUsed()
	}
}

func loadEnvVars() {
	viper.SetEnvPrefix("LATAMAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Legacy names used by the web proxy deployment
	_ = viper.BindEnv("backend.chat_url", "LATAMAI_BACKEND_CHAT_URL", "LATAM_BACKEND_URL")
	_ = viper.BindEnv("backend.sources_url", "LATAMAI_BACKEND_SOURCES_URL", "LATAM_SOURCES_BACKEND_URL")
}

// BindFlags binds cobra command-line flags to viper configuration values.
// This enables flags like --backend-url and --log-level to override config file settings.
func BindFlags(cmd *cobra.Command) {
	// Bind persistent flags - errors are ignored as flags are guaranteed to exist
	_ = viper.BindPFlag("backend.chat_url", cmd.PersistentFlags().Lookup("backend-url"))
	_ = viper.BindPFlag("backend.sources_url", cmd.PersistentFlags().Lookup("sources-url"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
}

// BindServeFlags binds the flags of the serve command.
func BindServeFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
}

// Get returns the current configuration by unmarshaling all viper values.
// Call this after Init and BindFlags to get the final merged configuration.
func Get() *Config {
	// Error is ignored as defaults are always valid
	_ = viper.Unmarshal(&cfg)
	return &cfg
}

// GetConfigPath returns the path to the config file that was loaded,
// or an empty string if no config file was found.
func GetConfigPath() string {
	return configFile
}

// GetDefaultConfigPath returns the default global config file path (~/.latamai.yaml).
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".latamai.yaml")
}

// Validate checks that endpoints are absolute http(s) URLs and that waits
// and limits are usable.
func (c *Config) Validate() error {
	var errs []error
	for key, raw := range map[string]string{
		"backend.chat_url":    c.Backend.ChatURL,
		"backend.sources_url": c.Backend.SourcesURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: %q is not an http(s) URL", key, raw))
		}
	}
	if c.Backend.ChatTimeout <= 0 {
		errs = append(errs, errors.New("backend.chat_timeout must be positive"))
	}
	if c.Backend.SourcesTimeout <= 0 {
		errs = append(errs, errors.New("backend.sources_timeout must be positive"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}
