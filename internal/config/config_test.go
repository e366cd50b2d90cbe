package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "from-file"
squads:
  single_membership: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "from-file" {
		t.Errorf("secret = %s", cfg.JWT.Secret)
	}
	if cfg.Squads.SingleMembership {
		t.Error("file value for single_membership should override default")
	}
	if cfg.OTP.StaticCode != "123456" {
		t.Errorf("otp default = %s", cfg.OTP.StaticCode)
	}
	if cfg.Invites.BaseURL != "https://pamoja.vote" {
		t.Errorf("base url default = %s", cfg.Invites.BaseURL)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SENTRY_SAMPLE_RATE", "0.25")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("secret = %s", cfg.JWT.Secret)
	}
	if !cfg.Redis.Enabled || cfg.Redis.DB != 3 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Sentry.SampleRate != 0.25 {
		t.Errorf("sample rate = %v", cfg.Sentry.SampleRate)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "JWT secret") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestLoadConfigRejectsBadEnvValue(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("REDIS_DB", "three")
	if _, err := LoadConfig("nope.yaml"); err == nil {
		t.Fatal("expected error for non-numeric REDIS_DB")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{}
	cfg.Server.CORSOrigins = "https://a.example, https://b.example ,"
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", got)
	}
}
