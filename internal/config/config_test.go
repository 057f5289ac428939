package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvAccessID, EnvAPIKey, EnvDomain, EnvPlatform} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load = %#v, want %#v", cfg, Default())
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "access_id, access_key") {
		t.Fatalf("Validate error = %v, want missing credentials", err)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
access_id = "  AID  "
access_key = "secret"
domain = " jop.foxrenderfarm.com "
protocol = "HTTP"
platform = "6"
api_version = "v1"
timeout_seconds = 5
retry_attempts = 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Config{
		AccessID:       "AID",
		AccessKey:      "secret",
		Domain:         "jop.foxrenderfarm.com",
		Protocol:       "http",
		Platform:       "6",
		APIVersion:     "v1",
		TimeoutSeconds: 5,
		RetryAttempts:  3,
	}
	if cfg != want {
		t.Fatalf("Load = %#v, want %#v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", cfg.Timeout())
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
domain = "   "
protocol = ""
timeout_seconds = 0
retry_attempts = -2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load = %#v, want %#v", cfg, Default())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
access_id = "file-id"
access_key = "file-key"
platform = "2"
`)
	t.Setenv(EnvAccessID, "env-id")
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvDomain, "task.example.com")
	t.Setenv(EnvPlatform, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AccessID != "env-id" || cfg.AccessKey != "env-key" || cfg.Domain != "task.example.com" {
		t.Fatalf("Load = %#v, want env overrides", cfg)
	}
	if cfg.Platform != "2" {
		t.Fatalf("Platform = %q, want file value when env is empty", cfg.Platform)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `access_id = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestValidate_RejectsProtocol(t *testing.T) {
	cfg := Default()
	cfg.AccessID, cfg.AccessKey = "a", "k"
	cfg.Protocol = "ftp"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "protocol") {
		t.Fatalf("Validate error = %v, want protocol error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
