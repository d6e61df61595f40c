package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration options for exploitscout
type Config struct {
	// NVD configures the vulnerability database API
	NVD APIConfig `mapstructure:"nvd"`

	// GitHub configures the code-host API used for repository popularity
	GitHub APIConfig `mapstructure:"github"`

	// Timeout bounds each upstream HTTP request
	Timeout time.Duration `mapstructure:"timeout"`

	// Workers is the number of concurrent repository lookups per CVE
	Workers int `mapstructure:"workers"`

	// MinSeverity is the minimum CVSS score to report (inclusive)
	MinSeverity float64 `mapstructure:"min-severity"`

	// Verbose enables debug logging
	Verbose bool `mapstructure:"verbose"`

	// MetricsFile, if set, receives prometheus metrics in text format after each run
	MetricsFile string `mapstructure:"metrics-file"`
}

// APIConfig holds the location of one upstream API
type APIConfig struct {
	BaseURL string `mapstructure:"base-url"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		NVD:         APIConfig{BaseURL: "https://services.nvd.nist.gov/rest/json"},
		GitHub:      APIConfig{BaseURL: "https://api.github.com"},
		Timeout:     30 * time.Second,
		Workers:     4,
		MinSeverity: 0.0,
		Verbose:     false,
		MetricsFile: "",
	}
}

// SetupViper configures Viper to read from config file, env vars, and set defaults
func SetupViper() {
	// Values already in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: failed to load .env:", err)
	}

	defaults := Default()
	viper.SetDefault("nvd.base-url", defaults.NVD.BaseURL)
	viper.SetDefault("github.base-url", defaults.GitHub.BaseURL)
	viper.SetDefault("timeout", defaults.Timeout)
	viper.SetDefault("workers", defaults.Workers)
	viper.SetDefault("min-severity", defaults.MinSeverity)
	viper.SetDefault("verbose", defaults.Verbose)
	viper.SetDefault("metrics-file", defaults.MetricsFile)

	// Config file settings
	viper.SetConfigName(".exploitscout")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	// Environment variable settings
	viper.SetEnvPrefix("EXPLOITSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// Load reads the configuration from all sources and returns a Config struct
func Load() (*Config, error) {
	SetupViper()

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	return Get()
}

// Get returns a validated Config populated from Viper's current state
func Get() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and clamps Workers to at least one
func (c *Config) Validate() error {
	if strings.TrimSpace(c.NVD.BaseURL) == "" {
		return errors.New("nvd.base-url must not be empty")
	}
	if strings.TrimSpace(c.GitHub.BaseURL) == "" {
		return errors.New("github.base-url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MinSeverity < 0 || c.MinSeverity > 10 {
		return fmt.Errorf("min-severity must be between 0 and 10, got %.1f", c.MinSeverity)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}
