// Package main is the entry point for the bannerd notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/daemon"
	"github.com/jakestephens/banner/internal/dbus"
	"github.com/jakestephens/banner/internal/feedback"
	"github.com/jakestephens/banner/internal/history"
	"github.com/jakestephens/banner/internal/orientation"
	"github.com/jakestephens/banner/internal/runloop"
	"github.com/jakestephens/banner/internal/surface/shell"
)

const (
	appID   = "io.github.jakestephens.bannerd"
	appName = "bannerd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	// Parse command line flags
	monitorMode := flag.Bool("monitor", false, "Run in monitor mode (passive, no banners or sounds, works alongside another notification daemon)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("bannerd version", version)
		os.Exit(0)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if *monitorMode {
		runMonitorMode(logger)
		return
	}

	runDaemonMode(logger)
}

// runMonitorMode runs bannerd in passive monitor mode. It observes D-Bus
// notification traffic without claiming the notification service name, so
// another daemon keeps presenting while bannerd records history.
func runMonitorMode(logger *slog.Logger) {
	logger.Info("starting bannerd in monitor mode", "version", version)

	journal, err := history.NewJSONLJournal(config.HistoryPath())
	if err != nil {
		logger.Error("failed to open history journal", "error", err)
		os.Exit(1)
	}

	historyStore := history.NewStore(journal)
	tombstones := history.NewTombstoneFile(config.TombstonePath())
	if hashes, err := tombstones.Load(); err != nil {
		logger.Warn("failed to load tombstones", "error", err)
	} else if len(hashes) > 0 {
		historyStore.LoadTombstones(hashes)
	}
	if err := historyStore.Hydrate(); err != nil {
		logger.Warn("failed to hydrate store", "error", err)
	}
	logger.Info("history store initialized", "path", config.HistoryPath(), "count", historyStore.Count())

	monitor := dbus.NewMonitor(logger)
	monitor.SetNotifyHandler(func(n *dbus.Notification, id uint32) {
		if n.Transient() {
			logger.Debug("skipped transient notification", "id", id, "app", n.AppName)
			return
		}

		r, err := history.FromContent("bannerd-monitor", n.Content())
		if err != nil {
			logger.Error("failed to create history record", "error", err)
			return
		}

		if err := historyStore.Add(*r); err != nil {
			logger.Error("failed to persist notification", "id", id, "error", err)
		} else {
			logger.Info("captured notification", "id", id, "app", r.App, "summary", r.Summary)
		}
	})

	if err := monitor.Start(); err != nil {
		logger.Error("failed to start D-Bus monitor", "error", err)
		os.Exit(1)
	}

	logger.Info("bannerd monitor ready, passively capturing notifications")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := monitor.Stop(); err != nil {
		logger.Warn("error stopping monitor", "error", err)
	}
	if err := historyStore.Close(); err != nil {
		logger.Warn("error closing store", "error", err)
	}

	logger.Info("bannerd monitor stopped")
}

// runDaemonMode runs bannerd as the primary notification daemon.
func runDaemonMode(logger *slog.Logger) {
	logger.Info("starting bannerd", "version", version)

	cfg, err := config.LoadDaemonConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app := adw.NewApplication(appID, 0)

	// Shared state between the GTK main loop, the presentation loop, and
	// the D-Bus delivery goroutine. mu guards cfg and sharedState, which
	// the watchers swap at runtime.
	var (
		mu          sync.Mutex
		sharedState *history.SharedState

		loop           *runloop.Loop
		host           *shell.Host
		queue          *banner.Queue
		feed           *orientation.Feed
		engine         *feedback.Engine
		server         *dbus.Server
		registry       *dbus.Registry
		historyStore   *history.Store
		journalWatcher *daemon.PollWatcher
		stateWatcher   *daemon.PollWatcher
		configWatcher  *daemon.ConfigWatcher
		notifier       *daemon.Notifier
		running        atomic.Bool
	)

	currentConfig := func() *config.DaemonConfig {
		mu.Lock()
		defer mu.Unlock()
		return cfg
	}
	currentState := func() *history.SharedState {
		mu.Lock()
		defer mu.Unlock()
		return sharedState
	}

	shutdown := func() {
		if configWatcher != nil {
			_ = configWatcher.Stop()
		}
		if stateWatcher != nil {
			stateWatcher.Stop()
		}
		if journalWatcher != nil {
			journalWatcher.Stop()
		}
		if engine != nil {
			engine.Stop()
		}
		if server != nil {
			_ = server.Stop()
		}
		if host != nil {
			host.CloseAll()
		}
		if loop != nil {
			loop.Stop()
		}
		if historyStore != nil {
			_ = historyStore.Close()
		}
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		// Stop components in GTK main loop context
		glib.IdleAdd(func() {
			if running.Load() {
				shutdown()
				app.Quit()
			}
		})
	}()

	// recordReason maps a close reason to the history dismissal reason.
	recordReason := func(reason dbus.CloseReason) string {
		switch reason {
		case dbus.CloseReasonDismissed:
			return history.ReasonDismissed
		case dbus.CloseReasonClosed:
			return history.ReasonClosed
		default:
			return history.ReasonExpired
		}
	}

	// retireBanner settles a banner's close reason, emits the D-Bus signal,
	// and records the dismissal. Runs on the presentation loop after the
	// exit animation.
	retireBanner := func(b *banner.Banner) {
		b.StopOrientationUpdates()

		// First close wins: a tap or CloseNotification that got here first
		// already set the reason.
		entry := registry.CloseBanner(b, dbus.CloseReasonExpired)
		if entry == nil {
			entry = registry.ByBanner(b)
		}
		if entry == nil {
			// Replaced banners lose their registry mapping; nothing to emit.
			return
		}

		if server.IsActive(entry.ID) {
			if err := server.CloseWithReason(entry.ID, entry.Reason); err != nil {
				logger.Warn("failed to emit close signal", "id", entry.ID, "error", err)
			}
		}

		if entry.RecordID != "" {
			if err := historyStore.MarkDismissed(entry.RecordID, recordReason(entry.Reason)); err != nil {
				logger.Warn("failed to mark record dismissed", "record_id", entry.RecordID, "error", err)
			}
		}

		registry.Remove(entry.ID)
	}

	// handleNotify is the daemon's core path: persist the notification,
	// apply Do Not Disturb, and present a banner.
	handleNotify := func(n *dbus.Notification, id uint32) {
		c := currentConfig()
		level := n.Level()

		var recordID string
		if !n.Transient() && c.History.Enabled {
			r, err := history.FromContent(appName, n.Content())
			if err != nil {
				logger.Error("failed to create history record", "error", err)
			} else if err := historyStore.Add(*r); err != nil {
				logger.Error("failed to persist notification", "id", id, "error", err)
			} else {
				recordID = r.ID
			}
		}

		state := currentState()
		suppressed := state.DnDActive() && !(c.DnD.CriticalBypass && level == banner.LevelCritical)
		if suppressed {
			logger.Debug("notification suppressed by DnD", "id", id, "level", level.String())
			registry.Register(id, nil, recordID)
			return
		}

		mu.Lock()
		sharedState.UpdateLastBanner()
		if err := history.SaveSharedState(config.StatePath(), sharedState); err != nil {
			logger.Debug("failed to save shared state", "error", err)
		}
		mu.Unlock()

		bcfg := c.BannerConfigForLevel(level)
		duration, _ := n.Duration(c.TimeoutForLevel(level))
		bcfg.Duration = duration
		bcfg.AutoDismiss = duration > 0

		// Resident notifications with a default action survive the tap
		// that invokes it.
		if n.Resident() && n.DefaultAction() != "" {
			bcfg.DismissOnTap = false
		}

		// The sound-file hint overrides the per-level chime.
		soundFile := n.SoundFile()
		if soundFile != "" || n.SuppressSound() {
			bcfg.Haptic = banner.HapticNone
		}
		if n.SuppressSound() {
			soundFile = ""
		}

		pos := banner.QueueBack
		if level == banner.LevelCritical && c.Behavior.CriticalToFront {
			pos = banner.QueueFront
		}

		content := n.Content()
		defaultAction := n.DefaultAction()
		edge := c.BannerEdge()

		loop.Post(func() {
			if max := c.Behavior.MaxQueued; max > 0 && queue.Len() >= max {
				logger.Warn("queue full, dropping banner", "id", id, "max_queued", max)
				registry.Register(id, nil, recordID)
				return
			}

			// Sender-driven replacement: retire the old banner quietly
			// before the new one takes its id.
			if old := registry.Get(id); old != nil && old.Banner != nil && !old.Closed() {
				old.Banner.Dismiss()
				if old.RecordID != "" {
					_ = historyStore.MarkDismissed(old.RecordID, history.ReasonClosed)
				}
			}

			b := banner.New(queue, bcfg)
			b.SetContent(content)
			b.SetOnTap(func(b *banner.Banner) {
				e := registry.ByBanner(b)
				if e == nil {
					return
				}
				if defaultAction != "" {
					if err := server.InvokeAction(e.ID, defaultAction, n.Resident()); err != nil {
						logger.Warn("failed to invoke action", "id", e.ID, "error", err)
					}
				}
				if b.DismissOnTap() {
					registry.CloseBanner(b, dbus.CloseReasonDismissed)
				}
			})
			b.SetOnSwipeUp(func(b *banner.Banner) {
				registry.CloseBanner(b, dbus.CloseReasonDismissed)
			})
			b.SetEvents(banner.EventFuncs{
				OnWillAppear: func(b *banner.Banner) {
					if soundFile != "" {
						go func() {
							if err := engine.PlayFile(soundFile); err != nil {
								logger.Debug("failed to play sound file", "file", soundFile, "error", err)
							}
						}()
					}
				},
				OnDidDisappear: retireBanner,
			})

			registry.Register(id, b, recordID)
			b.StartOrientationUpdates(feed)
			b.Show(pos, edge, nil)
		})
	}

	// Handle application activation
	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		// History store
		journal, err := history.NewJSONLJournal(config.HistoryPath())
		if err != nil {
			logger.Error("failed to open history journal", "error", err)
			app.Quit()
			return
		}
		historyStore = history.NewStore(journal)
		tombstones := history.NewTombstoneFile(config.TombstonePath())
		if hashes, err := tombstones.Load(); err != nil {
			logger.Warn("failed to load tombstones", "error", err)
		} else if len(hashes) > 0 {
			historyStore.LoadTombstones(hashes)
		}
		if err := historyStore.Hydrate(); err != nil {
			logger.Warn("failed to hydrate store", "error", err)
		}
		logger.Info("history store initialized", "path", config.HistoryPath(), "count", historyStore.Count())

		// Shared state (DnD, last banner)
		sharedState, err = history.LoadSharedState(config.StatePath())
		if err != nil {
			logger.Warn("failed to load shared state", "error", err)
			sharedState = history.DefaultSharedState()
		}
		// The config's dnd.enabled only seeds a state file that has never
		// seen a transition; after that the state file wins.
		if cfg.DnD.Enabled && !sharedState.DnDEnabled && sharedState.DnDLastTransition == nil {
			sharedState.SetDnD(true, history.DnDTriggerSystem, "config initial state", appName)
			if err := history.SaveSharedState(config.StatePath(), sharedState); err != nil {
				logger.Warn("failed to save shared state", "error", err)
			}
		}
		logger.Info("shared state loaded", "dnd_enabled", sharedState.DnDEnabled)

		// Presentation stack
		loop = runloop.New(logger)
		loop.Start()
		feed = orientation.NewFeed()
		host = shell.NewHost(&app.Application, loop, feed, cfg, logger)
		queue = banner.NewQueue(loop, host, logger)
		registry = dbus.NewRegistry()

		engine = feedback.NewEngine(cfg, logger)
		if err := engine.Start(ctx); err != nil {
			logger.Warn("failed to start feedback engine", "error", err)
		}
		queue.SetFeedback(engine)

		// D-Bus server
		server = dbus.NewServer(logger)
		server.SetServerInfo(dbus.ServerInfo{
			Name:        appName,
			Vendor:      "banner",
			Version:     version,
			SpecVersion: "1.2",
		})
		server.SetNotifyHandler(handleNotify)
		server.SetCloseHandler(func(id uint32) {
			entry := registry.Close(id, dbus.CloseReasonClosed)
			if entry == nil {
				return
			}
			if entry.Banner != nil {
				b := entry.Banner
				loop.Post(b.Dismiss)
				return
			}
			if entry.RecordID != "" {
				_ = historyStore.MarkDismissed(entry.RecordID, history.ReasonClosed)
			}
			registry.Remove(id)
		})

		if err := server.Start(); err != nil {
			logger.Error("failed to start D-Bus server", "error", err,
				"hint", "another notification daemon is running; try bannerd -monitor")
			shutdown()
			app.Quit()
			return
		}

		// Journal watcher picks up CLI writes: imports hydrate into the
		// store, deletions and dismissals retire on-screen banners.
		journalWatcher = daemon.NewPollWatcher(config.HistoryPath(), logger)
		journalWatcher.SetChangeCallback(func() {
			if err := historyStore.Hydrate(); err != nil {
				logger.Debug("failed to hydrate after journal change", "error", err)
			}
			checkExternalDismissals(historyStore, registry, loop, logger)
		})
		if err := journalWatcher.Start(ctx); err != nil {
			logger.Warn("failed to start journal watcher", "error", err)
		}

		// State watcher picks up CLI DnD flips
		stateWatcher = daemon.NewPollWatcher(config.StatePath(), logger)
		stateWatcher.SetChangeCallback(func() {
			newState, err := history.LoadSharedState(config.StatePath())
			if err != nil {
				logger.Warn("failed to reload shared state", "error", err)
				return
			}

			mu.Lock()
			old := sharedState
			sharedState = newState
			mu.Unlock()

			if old.DnDEnabled != newState.DnDEnabled {
				logger.Info("DnD state changed", "enabled", newState.DnDEnabled)
				reason := ""
				if t := newState.DnDLastTransition; t != nil {
					reason = t.Reason
				}
				notifier.NotifyDnDChanged(newState.DnDEnabled, reason)
			}
		})
		if err := stateWatcher.Start(ctx); err != nil {
			logger.Warn("failed to start state watcher", "error", err)
		}

		// Self-notifications take the same path as external ones
		notifier = daemon.NewNotifier(logger)
		notifier.SetNotifyHandler(server.NotifyInternal)

		// Config watcher for hot-reload
		configWatcher, err = daemon.NewConfigWatcher(logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
				mu.Lock()
				cfg = newConfig
				mu.Unlock()

				host.UpdateConfig(newConfig)
				engine.UpdateConfig(newConfig)
				notifier.NotifyConfigReloaded()
			})
			configWatcher.SetErrorCallback(func(err error) {
				notifier.NotifyConfigError(err)
			})
			if err := configWatcher.Start(cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		// Retention: cap the journal at the configured record count
		if max := cfg.History.MaxRecords; max > 0 {
			if removed, err := historyStore.Prune(0, max); err != nil {
				logger.Warn("failed to prune history", "error", err)
			} else if removed > 0 {
				logger.Info("pruned history to record cap", "removed", removed, "max_records", max)
			}
		}
		go retentionLoop(ctx, historyStore, currentConfig, logger)

		notifier.NotifyStartup(version)
		logger.Info("bannerd ready", "dbus_interface", dbus.Interface)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	// Handle shutdown
	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if running.Load() {
			shutdown()
		}
		running.Store(false)
	})

	// Run the application
	status := app.Run(os.Args)

	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("bannerd stopped")
}

// checkExternalDismissals closes on-screen banners whose history records
// were dismissed or deleted by the CLI. The journal is re-read from disk
// because the in-memory store only learns about additions.
func checkExternalDismissals(historyStore *history.Store, registry *dbus.Registry, loop *runloop.Loop, logger *slog.Logger) {
	var watched []*dbus.Entry
	for _, e := range registry.Active() {
		if e.Banner != nil && e.RecordID != "" {
			watched = append(watched, e)
		}
	}
	if len(watched) == 0 {
		return
	}

	journal, err := history.NewJSONLJournal(config.HistoryPath())
	if err != nil {
		logger.Warn("failed to open journal for external check", "error", err)
		return
	}
	defer func() { _ = journal.Close() }()

	records, err := journal.Load()
	if err != nil {
		logger.Warn("failed to load journal for external check", "error", err)
		return
	}

	current := make(map[string]*history.Record, len(records))
	for i := range records {
		current[records[i].ID] = &records[i]
	}

	for _, e := range watched {
		r, exists := current[e.RecordID]
		if exists && !r.IsDismissed() {
			continue
		}

		logger.Debug("record changed externally, closing banner", "record_id", e.RecordID)
		if entry := registry.Close(e.ID, dbus.CloseReasonDismissed); entry != nil {
			b := entry.Banner
			loop.Post(b.Dismiss)
		}
	}
}

// retentionLoop enforces the history record cap periodically so a
// long-running daemon does not grow the journal without bound.
func retentionLoop(ctx context.Context, historyStore *history.Store, currentConfig func() *config.DaemonConfig, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			max := currentConfig().History.MaxRecords
			if max <= 0 {
				continue
			}
			if removed, err := historyStore.Prune(0, max); err != nil {
				logger.Warn("failed to prune history", "error", err)
			} else if removed > 0 {
				logger.Debug("pruned history to record cap", "removed", removed, "max_records", max)
			}
		}
	}
}
