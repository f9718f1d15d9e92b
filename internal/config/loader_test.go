package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")

	path := writeConfig(t, `
telegram:
  token: ${TEST_BOT_TOKEN}
provider:
  api_key: ${TEST_MISSING_KEY:-fallback-key}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q, want %q", cfg.Telegram.Token, "123:abc")
	}
	if cfg.Provider.APIKey != "fallback-key" {
		t.Errorf("api_key = %q, want default applied", cfg.Provider.APIKey)
	}
}

func TestLoadUnresolvedVariable(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: ${TGAIBOT_DEFINITELY_UNSET}\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() succeeded with unresolved variable")
	}
	if !strings.Contains(err.Error(), "TGAIBOT_DEFINITELY_UNSET") {
		t.Errorf("error %q does not name the unresolved variable", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: t
provider:
  api_key: k
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Mode != ModePolling {
		t.Errorf("mode = %q, want %q", cfg.Telegram.Mode, ModePolling)
	}
	if cfg.Telegram.PollingTimeout != 30 {
		t.Errorf("polling_timeout = %d, want 30", cfg.Telegram.PollingTimeout)
	}
	if cfg.Provider.Model != "auto" {
		t.Errorf("model = %q, want auto", cfg.Provider.Model)
	}
	if cfg.Provider.Timeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s", cfg.Provider.Timeout)
	}
	if cfg.Downloads.Dir != "downloads" || cfg.Downloads.MaxFileSizeMB != 20 {
		t.Errorf("downloads defaults = %+v", cfg.Downloads)
	}
	if cfg.Cleanup.CacheDir != "cache" || cfg.Cleanup.LogSuffix != ".log" {
		t.Errorf("cleanup defaults = %+v", cfg.Cleanup)
	}
	if cfg.Gateway.Addr != ":8080" {
		t.Errorf("gateway addr = %q, want :8080", cfg.Gateway.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() succeeded on missing file")
	}
}

func TestFindPathPrefersXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "tgaibot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, FileName)
	if err := os.WriteFile(want, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := FindPath(); got != want {
		t.Errorf("FindPath() = %q, want %q", got, want)
	}
}
