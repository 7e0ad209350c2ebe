package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jakestephens/banner/internal/config"
)

// PollWatcher watches a file for modification-time changes by polling.
// Used for the shared state file (CLI DnD flips) and the history journal
// (CLI dismissals of records whose banners are still on screen), both of
// which are rewritten atomically and may not exist yet.
type PollWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	path         string
	lastModTime  time.Time
	pollInterval time.Duration

	onChange func()

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewPollWatcher creates a watcher for the given file path.
func NewPollWatcher(path string, logger *slog.Logger) *PollWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollWatcher{
		logger:       logger,
		path:         path,
		pollInterval: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// SetPollInterval sets the polling interval for file changes.
func (w *PollWatcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetChangeCallback sets the callback invoked when the file changes.
func (w *PollWatcher) SetChangeCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Start begins watching the file for changes.
func (w *PollWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true

	if info, err := os.Stat(w.path); err == nil {
		w.lastModTime = info.ModTime()
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.watchLoop(ctx)

	w.logger.Debug("poll watcher started", "path", w.path, "interval", w.pollInterval)
	return nil
}

// Stop stops watching and waits for the poll loop to exit.
func (w *PollWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("poll watcher stopped", "path", w.path)
}

func (w *PollWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

func (w *PollWatcher) checkForChanges() {
	w.mu.RLock()
	callback := w.onChange
	lastModTime := w.lastModTime
	w.mu.RUnlock()

	info, err := os.Stat(w.path)
	if err != nil {
		// File might not exist yet or was deleted
		if !os.IsNotExist(err) {
			w.logger.Debug("failed to stat watched file", "path", w.path, "error", err)
		}
		return
	}

	modTime := info.ModTime()
	if !modTime.After(lastModTime) {
		return
	}

	w.mu.Lock()
	w.lastModTime = modTime
	w.mu.Unlock()

	w.logger.Debug("watched file changed", "path", w.path, "mod_time", modTime)

	if callback != nil {
		callback()
	}
}

// ConfigWatcher watches the daemon config file and validates new configs
// before handing them to the reload callback. Invalid edits keep the last
// good config and fire the error callback instead.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	watcher    *fsnotify.Watcher
	configPath string
	current    *config.DaemonConfig

	onReload func(newConfig *config.DaemonConfig)
	onError  func(err error)

	done    chan struct{}
	running bool
}

// NewConfigWatcher creates a ConfigWatcher for the daemon config file.
func NewConfigWatcher(logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	configPath, err := config.DaemonConfigPath()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		logger:     logger,
		watcher:    watcher,
		configPath: configPath,
		done:       make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the callback invoked with each validated config.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed config fails
// to load or validate.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start begins watching the config file. initialConfig seeds Current.
func (w *ConfigWatcher) Start(initialConfig *config.DaemonConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.current = initialConfig
	w.mu.Unlock()

	// Watch the directory containing the file (more reliable for writes)
	dir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watch()

	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// Stop stops the config watcher.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)
	return w.watcher.Close()
}

// Current returns the last valid configuration.
func (w *ConfigWatcher) Current() *config.DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) watch() {
	filename := filepath.Base(w.configPath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	reloadCallback := w.onReload
	errorCallback := w.onError
	w.mu.RUnlock()

	newConfig, err := config.LoadDaemonConfigFrom(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.mu.Lock()
	w.current = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.configPath)
	if reloadCallback != nil {
		reloadCallback(newConfig)
	}
}
