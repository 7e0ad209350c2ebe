package shell

import (
	_ "embed"
	"log/slog"
	"sync"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/geometry"
	"github.com/jakestephens/banner/internal/orientation"
	"github.com/jakestephens/banner/internal/render"
)

//go:embed style.css
var styleCSS string

// fallbackSize stands in when no monitor geometry is available yet.
var fallbackSize = geometry.Size{Width: 1920, Height: 1080}

// Host is the layer-shell implementation of banner.Surface. Construct it
// on the GTK main loop (inside the application's activate handler).
type Host struct {
	app    *gtk.Application
	sched  banner.Scheduler
	feed   *orientation.Feed
	logger *slog.Logger

	mu          sync.Mutex
	size        geometry.Size
	notched     bool
	monitor     int
	titleFormat string
	bodyFormat  string

	// windows is confined to the GTK main loop.
	windows map[*banner.Banner]*bannerWindow
}

var _ banner.Surface = (*Host)(nil)

// NewHost creates the surface, applies the embedded stylesheet, and
// starts tracking monitor changes. Geometry changes are published to
// feed, which may be nil.
func NewHost(app *gtk.Application, sched banner.Scheduler, feed *orientation.Feed, cfg *config.DaemonConfig, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		app:     app,
		sched:   sched,
		feed:    feed,
		logger:  logger,
		size:    fallbackSize,
		windows: make(map[*banner.Banner]*bannerWindow),
	}
	h.applyConfig(cfg)
	h.applyStylesheet()
	h.watchMonitors()
	h.refreshGeometry()
	return h
}

// UpdateConfig picks up a hot-reloaded daemon config. Windows already on
// screen keep the settings they were built with.
func (h *Host) UpdateConfig(cfg *config.DaemonConfig) {
	h.applyConfig(cfg)
	glib.IdleAdd(func() {
		h.refreshGeometry()
	})
}

func (h *Host) applyConfig(cfg *config.DaemonConfig) {
	titleFormat := render.DefaultTitlePattern
	bodyFormat := render.DefaultBodyPattern
	notched := false
	monitor := 0
	if cfg != nil {
		if cfg.Banner.TitleFormat != "" {
			titleFormat = cfg.Banner.TitleFormat
		}
		if cfg.Banner.BodyFormat != "" {
			bodyFormat = cfg.Banner.BodyFormat
		}
		notched = cfg.Shell.Notched
		monitor = cfg.Shell.Monitor
	}

	h.mu.Lock()
	h.titleFormat = titleFormat
	h.bodyFormat = bodyFormat
	h.notched = notched
	h.monitor = monitor
	h.mu.Unlock()
}

// Traits reports the cached monitor geometry. Safe to call from the
// presentation loop.
func (h *Host) Traits() banner.Traits {
	h.mu.Lock()
	defer h.mu.Unlock()
	return banner.Traits{
		Size:        h.size,
		Orientation: orientation.FromSize(h.size.Width, h.size.Height),
		Notched:     h.notched,
		Supported:   orientation.MaskAll,
	}
}

// Attach builds a layer-shell window for the banner and presents it
// parked off-screen. The entrance's first SetFrame lands on the same
// margins, so nothing flashes at a resting position.
func (h *Host) Attach(b *banner.Banner) {
	content := b.Content()
	edge := b.Edge()
	height := int(b.Height())
	var bottomBase float64
	if f := b.Frame(); f != nil && edge == banner.EdgeBottom {
		bottomBase = f.Start().Y
	}

	h.mu.Lock()
	titleFormat := h.titleFormat
	bodyFormat := h.bodyFormat
	h.mu.Unlock()

	glib.IdleAdd(func() {
		if old, ok := h.windows[b]; ok {
			old.close()
		}
		w := newBannerWindow(h.app, content, edge, height, titleFormat, bodyFormat)
		w.bottomBase = bottomBase
		w.connectGestures(h.sched, b)
		if mon := h.targetMonitor(); mon != nil {
			layershell.SetMonitor(w.window, mon)
		}
		h.windows[b] = w
		w.window.Present()
	})
}

// Detach closes the banner's window.
func (h *Host) Detach(b *banner.Banner) {
	glib.IdleAdd(func() {
		w, ok := h.windows[b]
		if !ok {
			return
		}
		delete(h.windows, b)
		w.close()
	})
}

// SetFrame maps the banner's rectangle onto the margin of the anchored
// edge. Negative margins push the window past the edge, which is how
// entrance and exit animations travel off-screen.
func (h *Host) SetFrame(b *banner.Banner, r geometry.Rect) {
	glib.IdleAdd(func() {
		w, ok := h.windows[b]
		if !ok {
			return
		}
		w.setFrame(r)
	})
}

// SetChromeHidden satisfies banner.Surface. Layer-shell windows float
// above everything and own no chrome, so there is nothing to hide.
func (h *Host) SetChromeHidden(hidden bool) {}

// CloseAll tears down every banner window. Call on the GTK main loop
// during shutdown.
func (h *Host) CloseAll() {
	for b, w := range h.windows {
		delete(h.windows, b)
		w.close()
	}
}

// applyStylesheet installs the embedded CSS for every banner window.
func (h *Host) applyStylesheet() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		h.logger.Warn("no display available, stylesheet not applied")
		return
	}
	provider := gtk.NewCSSProvider()
	provider.LoadFromString(styleCSS)
	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// watchMonitors refreshes geometry whenever the monitor list changes.
func (h *Host) watchMonitors() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}
	monitors := display.Monitors()
	if monitors == nil {
		return
	}
	monitors.ConnectItemsChanged(func(position, removed, added uint) {
		h.refreshGeometry()
	})
}

// refreshGeometry re-reads the target monitor's bounds and publishes the
// resulting orientation. Runs on the GTK main loop.
func (h *Host) refreshGeometry() {
	mon := h.targetMonitor()
	if mon == nil {
		h.logger.Warn("no monitor available, keeping last known geometry")
		return
	}
	geo := mon.Geometry()
	size := geometry.Size{Width: float64(geo.Width()), Height: float64(geo.Height())}

	h.mu.Lock()
	changed := size != h.size
	h.size = size
	h.mu.Unlock()

	if changed {
		h.logger.Info("surface geometry changed", "width", size.Width, "height", size.Height)
	}
	if h.feed != nil {
		h.feed.Publish(orientation.FromSize(size.Width, size.Height))
	}
}

// targetMonitor resolves the configured monitor: 0 means primary, 1 and
// up pick a specific one, falling back to primary when unavailable.
func (h *Host) targetMonitor() *gdk.Monitor {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}

	h.mu.Lock()
	want := h.monitor
	h.mu.Unlock()

	index := uint(0)
	if want > 0 {
		index = uint(want - 1)
		if index >= monitors.NItems() {
			h.logger.Warn("configured monitor not available, using primary",
				"configured", want,
				"available", monitors.NItems(),
			)
			index = 0
		}
	}

	obj := monitors.Item(index)
	if obj == nil {
		return nil
	}
	return wrapMonitor(obj)
}

// wrapMonitor casts a list-model item to a gdk.Monitor. The bindings do
// not expose a wrapper for this, so we rebuild the struct around the
// shared object pointer the way the generated code does internally.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
