// Package config loads jervis settings from jervis.yaml, .env files and
// JERVIS_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "jervis.yaml"

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	// Documentation overrides documentation URLs by topic name, for
	// organizations that host their own copy of the docs.
	Documentation map[string]string `yaml:"documentation,omitempty"`
	Metrics       MetricsConfig     `yaml:"metrics"`
	GitHubApp     GitHubAppConfig   `yaml:"github_app"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// GitHubAppConfig holds the credentials of a GitHub App installation.
type GitHubAppConfig struct {
	AppID          int64  `yaml:"app_id,omitempty"`
	InstallationID int64  `yaml:"installation_id,omitempty"`
	PrivateKeyFile string `yaml:"private_key_file,omitempty"`
	APIURL         string `yaml:"api_url,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path, then applies environment
// overrides. A missing file at DefaultPath is not an error; a missing file
// that was asked for explicitly is.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("configuration file not found: %s", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses YAML after expanding ${VAR} references, rejecting unknown
// fields so typos surface immediately.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.GitHubApp.APIURL == "" {
		cfg.GitHubApp.APIURL = "https://api.github.com/"
	}
}

// Validate checks enum fields after normalization.
func (c *Config) Validate() error {
	if _, err := logLevelNormalizer.Parse(string(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logFormatNormalizer.Parse(string(c.Logging.Format)); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	return nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Config{
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Documentation: map[string]string{
			"lifecycles-spec": "https://wiki.example.com/lifecycle_explanation.html",
		},
		Metrics: MetricsConfig{Textfile: "/var/lib/node_exporter/textfile/jervis.prom"},
		GitHubApp: GitHubAppConfig{
			AppID:          12345,
			InstallationID: 67890,
			PrivateKeyFile: "github-app.pem",
			APIURL:         "https://api.github.com/",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
