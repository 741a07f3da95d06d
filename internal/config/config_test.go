package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marianecozta/Pomodoro/internal/domain"
)

func TestDefaultConfig_MatchesDomainDefaults(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ToSessionConfig()
	want := domain.DefaultSessionConfig()

	if got.FocusMinutes != want.FocusMinutes || got.RestMinutes != want.RestMinutes {
		t.Errorf("ToSessionConfig() = %d/%d, want %d/%d",
			got.FocusMinutes, got.RestMinutes, want.FocusMinutes, want.RestMinutes)
	}
	if got.Behavior != want.Behavior {
		t.Errorf("ToSessionConfig().Behavior = %+v, want %+v", got.Behavior, want.Behavior)
	}
}

func TestLoadFrom_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if cfg.Timer.FocusMinutes != 25 || cfg.Timer.RestMinutes != 5 {
		t.Errorf("timer = %+v, want 25/5", cfg.Timer)
	}
	if cfg.Theme.Night.Focus != DefaultThemeConfig().Night.Focus {
		t.Errorf("theme.night.focus = %q", cfg.Theme.Night.Focus)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Timer.FocusMinutes = 50
	cfg.Timer.RestMinutes = 10
	cfg.Behavior.RestAfterEveryExpiry = false
	cfg.Sounds.End = "/usr/share/sounds/bell.wav"
	cfg.Log.Level = "debug"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Timer != cfg.Timer {
		t.Errorf("Timer = %+v, want %+v", loaded.Timer, cfg.Timer)
	}
	if loaded.Behavior.RestAfterEveryExpiry {
		t.Error("behavior.rest_after_every_expiry should be false")
	}
	if loaded.Sounds.PathFor(domain.CueEnd) != "/usr/share/sounds/bell.wav" {
		t.Errorf("Sounds.End = %q", loaded.Sounds.End)
	}
	if loaded.Sounds.PathFor(domain.CueStart) != "" {
		t.Errorf("Sounds.Start = %q, want empty", loaded.Sounds.Start)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("POMODORO_TIMER_FOCUS_MINUTES", "45")
	t.Setenv("POMODORO_NOTIFICATIONS_ENABLED", "false")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Timer.FocusMinutes != 45 {
		t.Errorf("FocusMinutes = %d, want 45", cfg.Timer.FocusMinutes)
	}
	if cfg.Notifications.Enabled {
		t.Error("notifications should be disabled by env")
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[timer\nfocus_minutes = "), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should fail on malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero focus is allowed", func(c *Config) { c.Timer.FocusMinutes = 0 }, false},
		{"negative rest is allowed", func(c *Config) { c.Timer.RestMinutes = -5 }, false},
		{"volume too loud", func(c *Config) { c.Sounds.Volume = 11 }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/sons/fim.wav"); got != filepath.Join(home, "sons", "fim.wav") {
		t.Errorf("expandHome() = %q", got)
	}
	if got := expandHome("/abs/fim.wav"); got != "/abs/fim.wav" {
		t.Errorf("expandHome() = %q", got)
	}
}
