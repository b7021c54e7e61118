package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/deskmate/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if strings.HasPrefix(cfg.Notes.Path, "~") {
		t.Errorf("notes path not expanded: %q", cfg.Notes.Path)
	}
	if cfg.Reminders.PollInterval != 30*time.Second {
		t.Errorf("poll interval = %v", cfg.Reminders.PollInterval)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	cases := map[string]string{
		"~":            home,
		"~/Desktop":    filepath.Join(home, "Desktop"),
		"./reminders":  "./reminders",
		"/abs/path":    "/abs/path",
		"~other/Notes": "~other/Notes",
	}
	for in, want := range cases {
		if got := expandHome(in); got != want {
			t.Errorf("expandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPConfig_PortCheckedOnlyWhenEnabled(t *testing.T) {
	cfg := HTTPConfig{Enabled: false, Port: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled http should skip validation: %v", err)
	}
	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled http without port should fail")
	}
	cfg.Port = 9090
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid port rejected: %v", err)
	}
	if cfg.Address() != ":9090" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestRemindersConfig_PollIntervalTooShort(t *testing.T) {
	cfg := RemindersConfig{Path: "r.json", PollInterval: 10 * time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second poll interval should fail")
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `app:
  log_level: debug
  http:
    enabled: true
    port: 9000
reminders:
  path: ` + filepath.Join(dir, "r.json") + `
  poll_interval: 5s
voice:
  listen_timeout: 2s
  speak_command: espeak
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Reminders.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %v", cfg.Reminders.PollInterval)
	}
	if cfg.Voice.ListenTimeout != 2*time.Second || cfg.Voice.SpeakCommand != "espeak" {
		t.Errorf("voice = %+v", cfg.Voice)
	}
	if cfg.App.HTTP.Port != 9000 || !cfg.App.HTTP.Enabled {
		t.Errorf("http = %+v", cfg.App.HTTP)
	}
	if cfg.SQLite.Path != "./deskmate.db" {
		t.Errorf("unset sections should keep defaults, sqlite = %q", cfg.SQLite.Path)
	}
}
