package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the account and session settings for the render farm client.
type Config struct {
	AccessID       string
	AccessKey      string
	Domain         string
	Protocol       string
	Platform       string
	APIVersion     string
	TimeoutSeconds int
	RetryAttempts  int
}

const (
	defaultConfigPath = "~/.config/rayvision/config.toml"
	defaultDomain     = "task.renderbus.com"
	defaultProtocol   = "https"
	defaultPlatform   = "2"
	defaultAPIVersion = "1"
	defaultTimeout    = 30
)

// Environment variables that override file values.
const (
	EnvAccessID = "RAYVISION_API_ACCESS_ID"
	EnvAPIKey   = "RAYVISION_API_KEY"
	EnvDomain   = "RAYVISION_DOMAIN"
	EnvPlatform = "RAYVISION_PLATFORM"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Domain:         defaultDomain,
		Protocol:       defaultProtocol,
		Platform:       defaultPlatform,
		APIVersion:     defaultAPIVersion,
		TimeoutSeconds: defaultTimeout,
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		AccessID       string `toml:"access_id"`
		AccessKey      string `toml:"access_key"`
		Domain         string `toml:"domain"`
		Protocol       string `toml:"protocol"`
		Platform       string `toml:"platform"`
		APIVersion     string `toml:"api_version"`
		TimeoutSeconds *int   `toml:"timeout_seconds"`
		RetryAttempts  int    `toml:"retry_attempts"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.AccessID = strings.TrimSpace(raw.AccessID)
	cfg.AccessKey = strings.TrimSpace(raw.AccessKey)
	cfg.Domain = orDefault(raw.Domain, defaultDomain)
	cfg.Protocol = strings.ToLower(orDefault(raw.Protocol, defaultProtocol))
	cfg.Platform = orDefault(raw.Platform, defaultPlatform)
	cfg.APIVersion = orDefault(raw.APIVersion, defaultAPIVersion)
	if raw.TimeoutSeconds != nil && *raw.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = *raw.TimeoutSeconds
	}
	cfg.RetryAttempts = max(raw.RetryAttempts, 0)

	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports settings the client cannot start without.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.AccessID) == "" {
		missing = append(missing, "access_id")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		missing = append(missing, "access_key")
	}
	if strings.TrimSpace(c.Domain) == "" {
		missing = append(missing, "domain")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	if c.Protocol != "http" && c.Protocol != "https" {
		return fmt.Errorf("config: protocol must be http or https, got %q", c.Protocol)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeout * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		name string
		dst  *string
	}{
		{EnvAccessID, &cfg.AccessID},
		{EnvAPIKey, &cfg.AccessKey},
		{EnvDomain, &cfg.Domain},
		{EnvPlatform, &cfg.Platform},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.name)); v != "" {
			*o.dst = v
		}
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
