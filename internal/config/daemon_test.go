package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakestephens/banner/internal/banner"
)

func TestDurationUnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "5s", 5 * time.Second, false},
		{"compound duration", "1h30m", 90 * time.Minute, false},
		{"integer milliseconds", "5000", 5 * time.Second, false},
		{"zero", "0", 0, false},
		{"garbage", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDurationMarshalText(t *testing.T) {
	d := Duration(5 * time.Second)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5s", string(text))
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, "top", cfg.Banner.Edge)
	assert.True(t, cfg.Banner.DismissOnTap)
	assert.True(t, cfg.Banner.DismissOnSwipe)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Normal.Duration())
	assert.Equal(t, time.Duration(0), cfg.Timeouts.Critical.Duration())
	assert.True(t, cfg.Behavior.CriticalToFront)
	assert.True(t, cfg.Feedback.Enabled)
	assert.Equal(t, 80, cfg.Feedback.Volume)
	assert.True(t, cfg.History.Enabled)
	assert.False(t, cfg.DnD.Enabled)
	assert.True(t, cfg.DnD.CriticalBypass)

	require.NoError(t, cfg.Validate())
}

func TestLoadDaemonConfigFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bannerd.toml")

	content := `
[banner]
edge = "bottom"
show_animation = "250ms"
dismiss_on_tap = false

[timeouts]
low = "3s"
normal = 7000
critical = "1m"

[behavior]
critical_to_front = false

[feedback]
enabled = false
volume = 50

[dnd]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadDaemonConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "bottom", cfg.Banner.Edge)
	assert.Equal(t, 250*time.Millisecond, cfg.Banner.ShowAnimation.Duration())
	assert.False(t, cfg.Banner.DismissOnTap)
	assert.True(t, cfg.Banner.DismissOnSwipe, "untouched fields keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Low.Duration())
	assert.Equal(t, 7*time.Second, cfg.Timeouts.Normal.Duration())
	assert.Equal(t, time.Minute, cfg.Timeouts.Critical.Duration())
	assert.False(t, cfg.Behavior.CriticalToFront)
	assert.False(t, cfg.Feedback.Enabled)
	assert.Equal(t, 50, cfg.Feedback.Volume)
	assert.True(t, cfg.DnD.Enabled)
}

func TestLoadDaemonConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadDaemonConfigFrom("/nonexistent/bannerd.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig().Banner.Edge, cfg.Banner.Edge)
}

func TestDaemonConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DaemonConfig)
	}{
		{"bad edge", func(c *DaemonConfig) { c.Banner.Edge = "sideways" }},
		{"volume too high", func(c *DaemonConfig) { c.Feedback.Volume = 150 }},
		{"volume negative", func(c *DaemonConfig) { c.Feedback.Volume = -1 }},
		{"negative max_queued", func(c *DaemonConfig) { c.Behavior.MaxQueued = -2 }},
		{"negative max_records", func(c *DaemonConfig) { c.History.MaxRecords = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTimeoutForLevel(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Timeouts.Low = Duration(3 * time.Second)
	cfg.Timeouts.Normal = Duration(5 * time.Second)
	cfg.Timeouts.Critical = Duration(0)

	assert.Equal(t, 3*time.Second, cfg.TimeoutForLevel(banner.LevelLow))
	assert.Equal(t, 5*time.Second, cfg.TimeoutForLevel(banner.LevelNormal))
	assert.Equal(t, time.Duration(0), cfg.TimeoutForLevel(banner.LevelCritical))
}

func TestBannerConfigForLevel(t *testing.T) {
	cfg := DefaultDaemonConfig()

	normal := cfg.BannerConfigForLevel(banner.LevelNormal)
	assert.True(t, normal.AutoDismiss)
	assert.True(t, normal.DismissOnTap)
	assert.Equal(t, 5*time.Second, normal.Duration)

	// Critical has a zero timeout by default: sticky, and the lifecycle
	// forces the gesture dismissal flags off.
	critical := cfg.BannerConfigForLevel(banner.LevelCritical)
	assert.False(t, critical.AutoDismiss)
}

func TestHapticForLevel(t *testing.T) {
	assert.Equal(t, banner.HapticLight, HapticForLevel(banner.LevelLow))
	assert.Equal(t, banner.HapticMedium, HapticForLevel(banner.LevelNormal))
	assert.Equal(t, banner.HapticHeavy, HapticForLevel(banner.LevelCritical))
}

func TestBannerEdge(t *testing.T) {
	cfg := DefaultDaemonConfig()
	assert.Equal(t, banner.EdgeTop, cfg.BannerEdge())

	cfg.Banner.Edge = "bottom"
	assert.Equal(t, banner.EdgeBottom, cfg.BannerEdge())
}

func TestSoundForLevel(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Feedback.Sounds.Low = "/sounds/low.wav"
	cfg.Feedback.Sounds.Normal = "/sounds/normal.wav"
	cfg.Feedback.Sounds.Critical = "/sounds/critical.wav"

	assert.Equal(t, "/sounds/low.wav", cfg.SoundForLevel(banner.LevelLow))
	assert.Equal(t, "/sounds/normal.wav", cfg.SoundForLevel(banner.LevelNormal))
	assert.Equal(t, "/sounds/critical.wav", cfg.SoundForLevel(banner.LevelCritical))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "s.wav"), expandPath("~/s.wav"))
	assert.Equal(t, "/abs/s.wav", expandPath("/abs/s.wav"))
	assert.Equal(t, "", expandPath(""))
}
