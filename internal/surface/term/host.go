package term

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/geometry"
	"github.com/jakestephens/banner/internal/orientation"
)

// Terminal cells are roughly twice as tall as wide, so banner units map
// onto cells at different scales per axis. A stock 64-unit banner is
// four rows tall.
const (
	UnitsPerRow = 16
	UnitsPerCol = 8
)

// Overlay is a snapshot of one attached banner, in banner units.
type Overlay struct {
	Content banner.Content
	Edge    banner.Edge
	Rect    geometry.Rect
}

// OverlaysMsg carries the current overlay set into the bubbletea
// program. One is sent for every attach, detach, frame change, and
// chrome flip.
type OverlaysMsg struct {
	Overlays     []Overlay
	ChromeHidden bool
}

// Host is the terminal implementation of banner.Surface. Attached
// banners become overlay snapshots pushed into a bubbletea program,
// which composites them over its own view. Surface calls arrive on the
// presentation loop; Resize arrives from the program's update loop.
type Host struct {
	logger *slog.Logger
	feed   *orientation.Feed

	mu           sync.Mutex
	size         geometry.Size
	chromeHidden bool
	program      *tea.Program
	order        []*banner.Banner
	overlays     map[*banner.Banner]*Overlay
}

var _ banner.Surface = (*Host)(nil)

// NewHost creates a terminal surface. Resizes publish to feed, which may
// be nil. The size starts at a conventional 80x24 until the program
// reports real dimensions.
func NewHost(feed *orientation.Feed, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		logger:   logger,
		feed:     feed,
		size:     geometry.Size{Width: 80 * UnitsPerCol, Height: 24 * UnitsPerRow},
		overlays: make(map[*banner.Banner]*Overlay),
	}
}

// SetProgram binds the program overlay snapshots are sent to.
func (h *Host) SetProgram(p *tea.Program) {
	h.mu.Lock()
	h.program = p
	h.mu.Unlock()
}

// Resize records new terminal dimensions, in cells, and publishes the
// resulting orientation. Call from the WindowSizeMsg handler.
func (h *Host) Resize(cols, rows int) {
	size := geometry.Size{
		Width:  float64(cols * UnitsPerCol),
		Height: float64(rows * UnitsPerRow),
	}
	h.mu.Lock()
	h.size = size
	h.mu.Unlock()

	if h.feed != nil {
		h.feed.Publish(orientation.FromSize(size.Width, size.Height))
	}
}

// Traits reports the terminal's bounds in banner units.
func (h *Host) Traits() banner.Traits {
	h.mu.Lock()
	defer h.mu.Unlock()
	return banner.Traits{
		Size:        h.size,
		Orientation: orientation.FromSize(h.size.Width, h.size.Height),
		Notched:     false,
		Supported:   orientation.MaskAll,
	}
}

// Attach snapshots the banner and pushes the new overlay set.
func (h *Host) Attach(b *banner.Banner) {
	h.mu.Lock()
	if _, ok := h.overlays[b]; !ok {
		h.order = append(h.order, b)
	}
	h.overlays[b] = &Overlay{
		Content: b.Content(),
		Edge:    b.Edge(),
		Rect:    b.CurrentRect(),
	}
	h.mu.Unlock()
	h.push()
}

// Detach drops the banner's overlay.
func (h *Host) Detach(b *banner.Banner) {
	h.mu.Lock()
	delete(h.overlays, b)
	for i, o := range h.order {
		if o == b {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
	h.push()
}

// SetFrame moves the banner's overlay.
func (h *Host) SetFrame(b *banner.Banner, r geometry.Rect) {
	h.mu.Lock()
	if o, ok := h.overlays[b]; ok {
		o.Rect = r
	}
	h.mu.Unlock()
	h.push()
}

// SetChromeHidden tells the program to drop its own edge chrome while a
// banner occupies it.
func (h *Host) SetChromeHidden(hidden bool) {
	h.mu.Lock()
	h.chromeHidden = hidden
	h.mu.Unlock()
	h.push()
}

// Snapshot returns the current overlays in attach order, so later
// attachments composite over earlier ones.
func (h *Host) Snapshot() ([]Overlay, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Overlay, 0, len(h.order))
	for _, b := range h.order {
		if o, ok := h.overlays[b]; ok {
			out = append(out, *o)
		}
	}
	return out, h.chromeHidden
}

// push sends the overlay set to the program, when one is bound.
func (h *Host) push() {
	h.mu.Lock()
	p := h.program
	h.mu.Unlock()
	if p == nil {
		return
	}
	overlays, chromeHidden := h.Snapshot()
	p.Send(OverlaysMsg{Overlays: overlays, ChromeHidden: chromeHidden})
}
