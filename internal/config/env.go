package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/jervis/internal/doclinks"
)

// Environment variables understood by Load.
const (
	EnvLogLevel        = "JERVIS_LOG_LEVEL"
	EnvLogFormat       = "JERVIS_LOG_FORMAT"
	EnvMetricsTextfile = "JERVIS_METRICS_TEXTFILE"
	EnvDocsPrefix      = "JERVIS_DOCS_"

	EnvGitHubAppID             = "JERVIS_GITHUB_APP_ID"
	EnvGitHubAppInstallationID = "JERVIS_GITHUB_APP_INSTALLATION_ID"
	EnvGitHubAppPrivateKeyFile = "JERVIS_GITHUB_APP_PRIVATE_KEY_FILE"
	EnvGitHubAppAPIURL         = "JERVIS_GITHUB_APP_API_URL"
)

// envFiles are loaded in order; variables already set are never overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() error {
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// applyEnv overlays JERVIS_* variables on cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = LogFormat(v)
	}
	if v := os.Getenv(EnvMetricsTextfile); v != "" {
		cfg.Metrics.Textfile = v
	}

	for _, t := range doclinks.Topics() {
		name := EnvDocsPrefix + strings.ToUpper(strings.ReplaceAll(string(t), "-", "_"))
		if v := os.Getenv(name); v != "" {
			if cfg.Documentation == nil {
				cfg.Documentation = make(map[string]string)
			}
			// The env var wins over any spelling of the topic in the file.
			for key := range cfg.Documentation {
				if parsed, err := doclinks.ParseTopic(key); err == nil && parsed == t {
					delete(cfg.Documentation, key)
				}
			}
			cfg.Documentation[string(t)] = v
		}
	}

	if err := envInt64(EnvGitHubAppID, &cfg.GitHubApp.AppID); err != nil {
		return err
	}
	if err := envInt64(EnvGitHubAppInstallationID, &cfg.GitHubApp.InstallationID); err != nil {
		return err
	}
	if v := os.Getenv(EnvGitHubAppPrivateKeyFile); v != "" {
		cfg.GitHubApp.PrivateKeyFile = v
	}
	if v := os.Getenv(EnvGitHubAppAPIURL); v != "" {
		cfg.GitHubApp.APIURL = v
	}
	return nil
}

func envInt64(name string, dst *int64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}
