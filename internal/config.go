package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Run modes.
const (
	ModeConsole = "console"
	ModeServe   = "serve"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Reminders RemindersConfig   `yaml:"reminders"`
	Voice     VoiceConfig       `yaml:"voice"`
	Notes     NotesConfig       `yaml:"notes"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Files     FilesConfig       `yaml:"files"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates every section and expands ~ in paths.
func (c *Config) Validate() error {
	sections := []interface{ Validate() error }{
		&c.App, &c.Reminders, &c.Voice, &c.Notes, &c.SQLite, &c.Files, &c.Auth,
	}
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel      slog.Level `yaml:"log_level"`
	LogFile       string     `yaml:"log_file"`
	LogMaxSizeMB  int        `yaml:"log_max_size_mb"`
	LogMaxBackups int        `yaml:"log_max_backups"`
	HTTP          HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	c.LogFile = expandHome(c.LogFile)
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogMaxSizeMB, validation.Min(0)),
		validation.Field(&c.LogMaxBackups, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// RemindersConfig holds the reminder store and scheduler settings.
type RemindersConfig struct {
	Path         string        `yaml:"path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Validate validates the reminders configuration.
func (c *RemindersConfig) Validate() error {
	c.Path = expandHome(c.Path)
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.PollInterval, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("reminders: %w", err)
	}
	return nil
}

// VoiceConfig holds the console conversation settings. SpeakCommand, when
// set, is run with each spoken line as its last argument (e.g. "espeak").
type VoiceConfig struct {
	ListenTimeout time.Duration `yaml:"listen_timeout"`
	SpeakCommand  string        `yaml:"speak_command"`
}

// Validate validates the voice configuration.
func (c *VoiceConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.ListenTimeout, validation.Required, validation.Min(100*time.Millisecond)),
	); err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	return nil
}

// NotesConfig holds the path to the notes directory.
type NotesConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	c.Path = expandHome(c.Path)
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	c.Path = expandHome(c.Path)
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// FilesConfig holds the directories the file commands work on.
type FilesConfig struct {
	Desktop    string `yaml:"desktop"`
	Downloads  string `yaml:"downloads"`
	SearchRoot string `yaml:"search_root"`
}

// Validate validates the files configuration.
func (c *FilesConfig) Validate() error {
	c.Desktop = expandHome(c.Desktop)
	c.Downloads = expandHome(c.Downloads)
	c.SearchRoot = expandHome(c.SearchRoot)
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Desktop, validation.Required),
		validation.Field(&c.Downloads, validation.Required),
		validation.Field(&c.SearchRoot, validation.Required),
	); err != nil {
		return fmt.Errorf("files: %w", err)
	}
	return nil
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, fine on localhost.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// NewDefaultConfig returns a Config with the default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:      slog.LevelInfo,
			LogMaxSizeMB:  10,
			LogMaxBackups: 3,
			HTTP: HTTPConfig{
				Enabled: false,
				Port:    8080,
			},
		},
		Reminders: RemindersConfig{
			Path:         "./reminders.json",
			PollInterval: 30 * time.Second,
		},
		Voice: VoiceConfig{
			ListenTimeout: 5 * time.Second,
		},
		Notes: NotesConfig{
			Path: "~/Documents/Notes",
		},
		SQLite: SQLiteConfig{
			Path: "./deskmate.db",
		},
		Files: FilesConfig{
			Desktop:    "~/Desktop",
			Downloads:  "~/Downloads",
			SearchRoot: "~",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
