package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reel/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := config.Default()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != cfgPath {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", cfgPath, resolved, exists)
	}
	if loaded.Generation.BaseURL != cfg.Generation.BaseURL {
		t.Fatalf("expected default generation base url, got %q", loaded.Generation.BaseURL)
	}
	if loaded.Timeline.PixelsPerSecond <= 0 {
		t.Fatal("expected positive pixels_per_second default")
	}
}

func TestLoadExpandsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	body := `
[paths]
spool_dir = "` + filepath.Join(dir, "spool") + `"
api_bind = "127.0.0.1:9000"

[generation]
retry_attempts = 3

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("api_bind override lost: %q", cfg.Paths.APIBind)
	}
	if cfg.Generation.RetryAttempts != 3 {
		t.Fatalf("retry_attempts override lost: %d", cfg.Generation.RetryAttempts)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging overrides lost: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.Socket) {
		t.Fatalf("expected socket path expanded, got %q", cfg.Paths.Socket)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad bind", "[paths]\napi_bind = \"nonsense\"\n", "api_bind"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad level", "[logging]\nlevel = \"verbose\"\n", "logging.level"},
		{"bad url", "[generation]\nbase_url = \"ftp://host\"\n", "base_url"},
		{"too many retries", "[generation]\nretry_attempts = 50\n", "retry_attempts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(cfgPath, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(cfgPath)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(cfgPath); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}
