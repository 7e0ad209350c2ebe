package feedback

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/config"
)

// Engine plays the entrance chime matching a banner's feedback strength.
// It satisfies banner.Feedback, so a queue fires it when an entrance
// animation starts.
type Engine struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	cfg     *config.DaemonConfig

	// Feedback strength to sound path mapping
	sounds map[banner.Haptic]string
}

// NewEngine creates a new feedback engine.
func NewEngine(cfg *config.DaemonConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)

	e := &Engine{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		cfg:     cfg,
		sounds:  make(map[banner.Haptic]string),
	}

	e.loadSoundConfig()

	return e
}

// loadSoundConfig loads chimes from the configuration.
func (e *Engine) loadSoundConfig() {
	if e.cfg == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Config uses 0-100, player uses 0.0-1.0
	if e.cfg.Feedback.Volume > 0 {
		e.player.SetVolume(float64(e.cfg.Feedback.Volume) / 100.0)
	}

	levels := []banner.Level{banner.LevelLow, banner.LevelNormal, banner.LevelCritical}
	for _, level := range levels {
		path := e.cfg.SoundForLevel(level)
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err != nil {
			e.logger.Warn("sound file not found", "level", level.String(), "path", path)
			continue
		}

		e.sounds[config.HapticForLevel(level)] = path
		e.logger.Debug("loaded sound", "level", level.String(), "path", path)
	}
}

// Start preloads the configured chimes and starts the file watcher.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.RLock()
	sounds := make(map[banner.Haptic]string, len(e.sounds))
	maps.Copy(sounds, e.sounds)
	e.mu.RUnlock()

	for _, path := range sounds {
		if err := e.player.Preload(path); err != nil {
			e.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		e.watcher.Watch(path)
	}

	if err := e.watcher.Start(ctx); err != nil {
		return err
	}

	e.logger.Info("feedback engine started", "sounds", len(sounds))
	return nil
}

// Stop shuts down the feedback engine.
func (e *Engine) Stop() {
	e.watcher.Stop()
	e.player.Close()
	e.logger.Debug("feedback engine stopped")
}

// Impact plays the chime configured for the given feedback strength.
func (e *Engine) Impact(h banner.Haptic) {
	if h == banner.HapticNone {
		return
	}

	e.mu.RLock()
	enabled := e.cfg != nil && e.cfg.Feedback.Enabled
	path, ok := e.sounds[h]
	e.mu.RUnlock()

	if !enabled {
		return
	}
	if !ok {
		e.logger.Debug("no sound configured for strength", "haptic", h.String())
		return
	}

	if err := e.player.Play(path); err != nil {
		e.logger.Warn("failed to play sound", "path", path, "error", err)
	}
}

// PlayFile plays a specific sound file.
func (e *Engine) PlayFile(path string) error {
	e.mu.RLock()
	enabled := e.cfg != nil && e.cfg.Feedback.Enabled
	e.mu.RUnlock()

	if !enabled {
		return nil
	}
	return e.player.Play(path)
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (e *Engine) SetVolume(volume float64) {
	e.player.SetVolume(volume)
}

// GetVolume returns the current volume.
func (e *Engine) GetVolume() float64 {
	return e.player.GetVolume()
}

// Reload reloads the sound configuration.
func (e *Engine) Reload() {
	e.player.ClearCache()
	e.loadSoundConfig()

	e.mu.RLock()
	sounds := make(map[banner.Haptic]string, len(e.sounds))
	maps.Copy(sounds, e.sounds)
	e.mu.RUnlock()

	for _, path := range sounds {
		if err := e.player.Preload(path); err != nil {
			e.logger.Warn("failed to preload sound on reload", "path", path, "error", err)
		}
		e.watcher.Watch(path)
	}

	e.logger.Debug("feedback engine reloaded")
}

// UpdateConfig swaps in a new configuration and reloads chimes.
// Called when the config file is hot-reloaded.
func (e *Engine) UpdateConfig(cfg *config.DaemonConfig) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()

	e.logger.Debug("feedback engine config updated")
	e.Reload()
}
