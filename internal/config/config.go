// Package config provides configuration management for the study timer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"

	"github.com/marianecozta/Pomodoro/internal/domain"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides, e.g. POMODORO_TIMER_FOCUS_MINUTES.
const EnvPrefix = "POMODORO"

// Config holds all configuration for the application.
type Config struct {
	Timer         TimerConfig        `mapstructure:"timer"`
	Behavior      BehaviorConfig     `mapstructure:"behavior"`
	Sounds        SoundConfig        `mapstructure:"sounds"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Theme         ThemeConfig        `mapstructure:"theme"`
	Log           LogConfig          `mapstructure:"log"`
	MCP           MCPConfig          `mapstructure:"mcp"`
}

// TimerConfig holds the initial block lengths.
type TimerConfig struct {
	FocusMinutes int  `mapstructure:"focus_minutes"`
	RestMinutes  int  `mapstructure:"rest_minutes"`
	NightMode    bool `mapstructure:"night_mode"`
}

// BehaviorConfig mirrors domain.Behavior.
type BehaviorConfig struct {
	FixedStudyCredit         bool `mapstructure:"fixed_study_credit"`
	FixedResetSeconds        bool `mapstructure:"fixed_reset_seconds"`
	RestAfterEveryExpiry     bool `mapstructure:"rest_after_every_expiry"`
	FixedProgressDenominator bool `mapstructure:"fixed_progress_denominator"`
}

// SoundConfig holds audio cue settings. Empty paths fall back to a beep.
type SoundConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Volume       float64 `mapstructure:"volume"`
	Start        string  `mapstructure:"start"`
	End          string  `mapstructure:"end"`
	TaskComplete string  `mapstructure:"task_complete"`
}

// PathFor returns the file configured for cue.
func (c SoundConfig) PathFor(cue domain.Cue) string {
	switch cue {
	case domain.CueStart:
		return c.Start
	case domain.CueEnd:
		return c.End
	case domain.CueTaskComplete:
		return c.TaskComplete
	default:
		return ""
	}
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Palette is one colour scheme.
type Palette struct {
	Focus  string `mapstructure:"focus"`
	Rest   string `mapstructure:"rest"`
	Paused string `mapstructure:"paused"`
	Text   string `mapstructure:"text"`
	Muted  string `mapstructure:"muted"`
	Done   string `mapstructure:"done"`
}

// ThemeConfig holds the day and night palettes.
type ThemeConfig struct {
	Day   Palette `mapstructure:"day"`
	Night Palette `mapstructure:"night"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		Day: Palette{
			Focus:  "#D9480F",
			Rest:   "#2B8A3E",
			Paused: "#868E96",
			Text:   "#212529",
			Muted:  "#868E96",
			Done:   "#ADB5BD",
		},
		Night: Palette{
			Focus:  "#FF8787",
			Rest:   "#69DB7C",
			Paused: "#6B7280",
			Text:   "#E9ECEF",
			Muted:  "#6B7280",
			Done:   "#495057",
		},
	}
}

// LogConfig holds logging settings. An empty File discards logs.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	b := domain.DefaultBehavior()
	return &Config{
		Timer: TimerConfig{
			FocusMinutes: domain.DefaultFocusMinutes,
			RestMinutes:  domain.DefaultRestMinutes,
		},
		Behavior: BehaviorConfig{
			FixedStudyCredit:         b.FixedStudyCredit,
			FixedResetSeconds:        b.FixedResetSeconds,
			RestAfterEveryExpiry:     b.RestAfterEveryExpiry,
			FixedProgressDenominator: b.FixedProgressDenominator,
		},
		Sounds: SoundConfig{
			Enabled: true,
			Volume:  0,
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Theme: DefaultThemeConfig(),
		Log: LogConfig{
			Level: "info",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}

// Load loads the configuration from the default path, creating it with
// defaults when missing.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath. Environment variables
// prefixed with POMODORO_ override file values.
func LoadFrom(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig(), configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.File = expandHome(cfg.Log.File)
	cfg.Sounds.Start = expandHome(cfg.Sounds.Start)
	cfg.Sounds.End = expandHome(cfg.Sounds.End)
	cfg.Sounds.TaskComplete = expandHome(cfg.Sounds.TaskComplete)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to configPath as TOML.
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.Set("timer.focus_minutes", cfg.Timer.FocusMinutes)
	v.Set("timer.rest_minutes", cfg.Timer.RestMinutes)
	v.Set("timer.night_mode", cfg.Timer.NightMode)
	v.Set("behavior.fixed_study_credit", cfg.Behavior.FixedStudyCredit)
	v.Set("behavior.fixed_reset_seconds", cfg.Behavior.FixedResetSeconds)
	v.Set("behavior.rest_after_every_expiry", cfg.Behavior.RestAfterEveryExpiry)
	v.Set("behavior.fixed_progress_denominator", cfg.Behavior.FixedProgressDenominator)
	v.Set("sounds.enabled", cfg.Sounds.Enabled)
	v.Set("sounds.volume", cfg.Sounds.Volume)
	v.Set("sounds.start", cfg.Sounds.Start)
	v.Set("sounds.end", cfg.Sounds.End)
	v.Set("sounds.task_complete", cfg.Sounds.TaskComplete)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	setPalette(v, "theme.day", cfg.Theme.Day)
	setPalette(v, "theme.night", cfg.Theme.Night)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.level", cfg.Log.Level)
	v.Set("mcp.enabled", cfg.MCP.Enabled)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pomodoro", "config.toml"), nil
}

// Validate reports settings no component can work with. Non-positive
// durations are allowed; the timer treats them as already expired.
func (c *Config) Validate() error {
	if c.Sounds.Volume < -10 || c.Sounds.Volume > 10 {
		return fmt.Errorf("%w: sounds.volume %v outside [-10, 10]", ErrInvalidConfig, c.Sounds.Volume)
	}
	if c.Log.Level != "" && hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// ToSessionConfig converts the config to the domain seed.
func (c *Config) ToSessionConfig() domain.SessionConfig {
	return domain.SessionConfig{
		FocusMinutes: c.Timer.FocusMinutes,
		RestMinutes:  c.Timer.RestMinutes,
		NightMode:    c.Timer.NightMode,
		Behavior: domain.Behavior{
			FixedStudyCredit:         c.Behavior.FixedStudyCredit,
			FixedResetSeconds:        c.Behavior.FixedResetSeconds,
			RestAfterEveryExpiry:     c.Behavior.RestAfterEveryExpiry,
			FixedProgressDenominator: c.Behavior.FixedProgressDenominator,
		},
	}
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("timer.focus_minutes", d.Timer.FocusMinutes)
	v.SetDefault("timer.rest_minutes", d.Timer.RestMinutes)
	v.SetDefault("timer.night_mode", d.Timer.NightMode)
	v.SetDefault("behavior.fixed_study_credit", d.Behavior.FixedStudyCredit)
	v.SetDefault("behavior.fixed_reset_seconds", d.Behavior.FixedResetSeconds)
	v.SetDefault("behavior.rest_after_every_expiry", d.Behavior.RestAfterEveryExpiry)
	v.SetDefault("behavior.fixed_progress_denominator", d.Behavior.FixedProgressDenominator)
	v.SetDefault("sounds.enabled", d.Sounds.Enabled)
	v.SetDefault("sounds.volume", d.Sounds.Volume)
	v.SetDefault("sounds.start", "")
	v.SetDefault("sounds.end", "")
	v.SetDefault("sounds.task_complete", "")
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("mcp.enabled", d.MCP.Enabled)

	// Theme defaults
	for prefix, p := range map[string]Palette{"theme.day": d.Theme.Day, "theme.night": d.Theme.Night} {
		v.SetDefault(prefix+".focus", p.Focus)
		v.SetDefault(prefix+".rest", p.Rest)
		v.SetDefault(prefix+".paused", p.Paused)
		v.SetDefault(prefix+".text", p.Text)
		v.SetDefault(prefix+".muted", p.Muted)
		v.SetDefault(prefix+".done", p.Done)
	}
}

func setPalette(v *viper.Viper, prefix string, p Palette) {
	v.Set(prefix+".focus", p.Focus)
	v.Set(prefix+".rest", p.Rest)
	v.Set(prefix+".paused", p.Paused)
	v.Set(prefix+".text", p.Text)
	v.Set(prefix+".muted", p.Muted)
	v.Set(prefix+".done", p.Done)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
