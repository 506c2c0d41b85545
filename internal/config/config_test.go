package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envMap(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("", WithEnv(envMap(nil)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rentalform.yaml")
	content := `
server:
  addr: ":9000"
  sessionTTL: 5m
api:
  baseURL: http://localhost:8081
  timeout: 2s
places:
  addresses:
    - 1 Main St, Springfield, IL, USA
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path, WithEnv(envMap(map[string]string{
		EnvAddr:         ":7000",
		EnvLocale:       "es",
		EnvPlacesAPIKey: "secret",
		EnvLogLevel:     "  ",
	})))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Fatalf("env should override addr, got %q", cfg.Server.Addr)
	}
	if cfg.Server.SessionTTL.Duration != 5*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.Server.SessionTTL)
	}
	if cfg.API.BaseURL != "http://localhost:8081" || cfg.API.Timeout.Duration != 2*time.Second {
		t.Fatalf("unexpected api config %+v", cfg.API)
	}
	if cfg.API.Path != Default().API.Path {
		t.Fatalf("unset keys should keep defaults, got %q", cfg.API.Path)
	}
	if cfg.Locale != "es" || cfg.Places.APIKey != "secret" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("blank env must not clear file values, got %q", cfg.Log.Level)
	}
	if len(cfg.Places.Addresses) != 1 {
		t.Fatalf("unexpected addresses %v", cfg.Places.Addresses)
	}
}

func TestLoad_JSONFile(t *testing.T) {
	files := map[string][]byte{
		"cfg.json": []byte(`{"api":{"timeout":"3s","validateContract":false},"log":{"format":"json"}}`),
	}
	cfg, err := Load("cfg.json",
		WithEnv(envMap(nil)),
		WithReadFile(func(name string) ([]byte, error) {
			data, ok := files[name]
			if !ok {
				return nil, os.ErrNotExist
			}
			return data, nil
		}),
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Timeout.Duration != 3*time.Second || cfg.API.ValidateContract {
		t.Fatalf("unexpected api config %+v", cfg.API)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("unexpected log format %q", cfg.Log.Format)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	_, err := Load("", WithEnv(envMap(map[string]string{
		EnvAPIURL:   "not a url",
		EnvLogLevel: "verbose",
	})))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	for _, fragment := range []string{"api.baseURL", "log.level"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load("empty.yaml",
		WithEnv(envMap(nil)),
		WithReadFile(func(string) ([]byte, error) { return []byte("  \n"), nil }),
	)
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestNewLogger_RespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("unexpected json output: %s", out)
	}
}

func TestThemeConfig_Manifest(t *testing.T) {
	if m, err := (ThemeConfig{}).Manifest(); m != nil || err != nil {
		t.Fatalf("expected no manifest without a file, got %v %v", m, err)
	}

	path := filepath.Join(t.TempDir(), "theme.yaml")
	content := "name: acme\nversion: 1.0.0\ntokens:\n  brand: \"#123456\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	manifest, err := (ThemeConfig{File: path}).Manifest()
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if manifest.Name != "acme" || manifest.Tokens["brand"] != "#123456" {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
}
