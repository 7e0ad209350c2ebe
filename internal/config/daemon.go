package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jakestephens/banner/internal/banner"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "10s", "1m", "1h30m", or integer milliseconds for backwards compatibility.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds) for backwards compatibility
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	// Parse as duration string (e.g., "5s", "1m", "1h30m")
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for bannerd.
// Loaded from ~/.config/banner/bannerd.toml
type DaemonConfig struct {
	Banner   BannerConfig   `toml:"banner"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Behavior BehaviorConfig `toml:"behavior"`
	Feedback FeedbackConfig `toml:"feedback"`
	History  HistoryConfig  `toml:"history"`
	DnD      DnDConfig      `toml:"dnd"`
	Shell    ShellConfig    `toml:"shell"`
}

// BannerConfig contains presentation settings applied to every banner.
type BannerConfig struct {
	Edge             string   `toml:"edge"`              // "top" or "bottom"
	ShowAnimation    Duration `toml:"show_animation"`    // Entrance animation length
	DismissAnimation Duration `toml:"dismiss_animation"` // Exit animation length
	DismissOnTap     bool     `toml:"dismiss_on_tap"`
	DismissOnSwipe   bool     `toml:"dismiss_on_swipe"`
	TitleFormat      string   `toml:"title_format"` // e.g. "{summary}"
	BodyFormat       string   `toml:"body_format"`  // e.g. "{body}"
}

// TimeoutConfig contains on-screen time per level.
// Durations can be specified as "5s", "10s", "1m", etc. or as integer milliseconds.
// A value of "0" or 0 means the banner stays until dismissed.
type TimeoutConfig struct {
	Low      Duration `toml:"low"`      // e.g., "5s", "1m", or 5000
	Normal   Duration `toml:"normal"`   // e.g., "5s", "1m", or 5000
	Critical Duration `toml:"critical"` // e.g., "0" for never expire
}

// BehaviorConfig contains queueing behavior settings.
type BehaviorConfig struct {
	CriticalToFront bool `toml:"critical_to_front"` // Critical banners preempt the active one
	MaxQueued       int  `toml:"max_queued"`        // Drop new banners past this depth (0 = unlimited)
}

// FeedbackConfig contains sound feedback settings.
type FeedbackConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-level sound file paths.
type SoundConfig struct {
	Low      string `toml:"low"`
	Normal   string `toml:"normal"`
	Critical string `toml:"critical"`
}

// HistoryConfig contains persistence settings.
type HistoryConfig struct {
	Enabled    bool `toml:"enabled"`     // Journal presented banners
	MaxRecords int  `toml:"max_records"` // Prune past this count (0 = unlimited)
}

// DnDConfig contains Do Not Disturb settings.
type DnDConfig struct {
	Enabled        bool `toml:"enabled"`         // Initial state
	CriticalBypass bool `toml:"critical_bypass"` // Show critical even in DnD mode
}

// ShellConfig contains layer-shell surface settings.
type ShellConfig struct {
	Monitor int  `toml:"monitor"` // 0 = primary, 1+ = specific monitor
	Notched bool `toml:"notched"` // Surface has a top cutout banners must clear
}

// Edge represents a surface edge banners slide in from.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// ValidEdges returns all valid edge values.
func ValidEdges() []Edge {
	return []Edge{EdgeTop, EdgeBottom}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	stock := banner.DefaultConfig()
	return &DaemonConfig{
		Banner: BannerConfig{
			Edge:             string(EdgeTop),
			ShowAnimation:    Duration(stock.ShowAnimationDuration),
			DismissAnimation: Duration(stock.DismissAnimationDuration),
			DismissOnTap:     true,
			DismissOnSwipe:   true,
			TitleFormat:      "{summary}",
			BodyFormat:       "{body}",
		},
		Timeouts: TimeoutConfig{
			Low:      Duration(stock.Duration),
			Normal:   Duration(stock.Duration),
			Critical: Duration(0), // Never expires
		},
		Behavior: BehaviorConfig{
			CriticalToFront: true,
			MaxQueued:       0,
		},
		Feedback: FeedbackConfig{
			Enabled: true,
			Volume:  80,
			Sounds:  SoundConfig{},
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxRecords: 1000,
		},
		DnD: DnDConfig{
			Enabled:        false,
			CriticalBypass: true,
		},
		Shell: ShellConfig{
			Monitor: 0,
			Notched: false,
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "banner", "bannerd.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from disk.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig() (*DaemonConfig, error) {
	path, err := DaemonConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadDaemonConfigFrom(path)
}

// LoadDaemonConfigFrom loads the daemon configuration from an explicit path.
func LoadDaemonConfigFrom(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to disk.
func SaveDaemonConfig(config *DaemonConfig) error {
	path, err := DaemonConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	validEdge := false
	for _, e := range ValidEdges() {
		if c.Banner.Edge == string(e) {
			validEdge = true
			break
		}
	}
	if !validEdge {
		return fmt.Errorf("invalid edge %q, must be one of: %v", c.Banner.Edge, ValidEdges())
	}

	if c.Feedback.Volume < 0 || c.Feedback.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Feedback.Volume)
	}

	if c.Behavior.MaxQueued < 0 {
		return fmt.Errorf("max_queued must be >= 0, got %d", c.Behavior.MaxQueued)
	}
	if c.History.MaxRecords < 0 {
		return fmt.Errorf("max_records must be >= 0, got %d", c.History.MaxRecords)
	}

	return nil
}

// TimeoutForLevel returns the configured on-screen time for a level.
// Zero means the banner never auto-dismisses.
func (c *DaemonConfig) TimeoutForLevel(level banner.Level) time.Duration {
	switch level {
	case banner.LevelLow:
		return c.Timeouts.Low.Duration()
	case banner.LevelCritical:
		return c.Timeouts.Critical.Duration()
	default:
		return c.Timeouts.Normal.Duration()
	}
}

// SoundForLevel returns the sound file path for a level.
// Expands ~ to home directory.
func (c *DaemonConfig) SoundForLevel(level banner.Level) string {
	var path string
	switch level {
	case banner.LevelLow:
		path = c.Feedback.Sounds.Low
	case banner.LevelCritical:
		path = c.Feedback.Sounds.Critical
	default:
		path = c.Feedback.Sounds.Normal
	}
	return expandPath(path)
}

// BannerConfigForLevel builds the presentation settings for one banner.
// A zero timeout disables auto-dismissal, which also forces the gesture
// dismissal flags off.
func (c *DaemonConfig) BannerConfigForLevel(level banner.Level) banner.Config {
	timeout := c.TimeoutForLevel(level)
	return banner.Config{
		Duration:                 timeout,
		AutoDismiss:              timeout > 0,
		ShowAnimationDuration:    c.Banner.ShowAnimation.Duration(),
		DismissAnimationDuration: c.Banner.DismissAnimation.Duration(),
		DismissOnTap:             c.Banner.DismissOnTap,
		DismissOnSwipeUp:         c.Banner.DismissOnSwipe,
		Haptic:                   HapticForLevel(level),
	}
}

// HapticForLevel maps a level to the feedback strength fired when its
// banner enters the screen.
func HapticForLevel(level banner.Level) banner.Haptic {
	switch level {
	case banner.LevelLow:
		return banner.HapticLight
	case banner.LevelCritical:
		return banner.HapticHeavy
	default:
		return banner.HapticMedium
	}
}

// BannerEdge returns the configured edge as the core type.
func (c *DaemonConfig) BannerEdge() banner.Edge {
	if c.Banner.Edge == string(EdgeBottom) {
		return banner.EdgeBottom
	}
	return banner.EdgeTop
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
