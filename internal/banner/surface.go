package banner

import (
	"github.com/jakestephens/banner/internal/geometry"
	"github.com/jakestephens/banner/internal/orientation"
)

// Traits describes what a host surface looks like right now.
type Traits struct {
	// Size is the surface's bounds in banner units.
	Size geometry.Size

	// Orientation is the surface's current posture.
	Orientation orientation.Orientation

	// Notched marks surfaces with a sensor housing cutout along the top
	// edge; banners grow to clear it.
	Notched bool

	// Supported is the set of orientations the host declares. A zero mask
	// means no information, and orientation changes become no-ops.
	Supported orientation.Mask
}

// Surface is the host a banner attaches to. Implementations decide what
// attaching means (a terminal overlay row, a layer-shell window) and how
// unit rectangles map onto it. Calls arrive on the presentation loop.
type Surface interface {
	// Traits returns the surface's current characteristics.
	Traits() Traits

	// Attach makes the banner part of the surface.
	Attach(b *Banner)

	// Detach removes the banner from the surface.
	Detach(b *Banner)

	// SetFrame moves an attached banner to the given rectangle. Called
	// once per animation frame.
	SetFrame(b *Banner, r geometry.Rect)

	// SetChromeHidden hides or restores window-level chrome (status bar
	// region) while banners occupy it.
	SetChromeHidden(hidden bool)
}

// Banner heights and overshoot insets are derived constants, not
// configuration: a notched surface in portrait with no custom host gets
// the taller variant so content clears the cutout.
const (
	heightNotched = 88
	heightDefault = 64
	spacerNotched = 40
	spacerDefault = 10
)

// heightFor returns the banner height for a surface. custom marks a
// caller-provided host rather than the queue's root surface.
func heightFor(t Traits, custom bool) float64 {
	if t.Notched && t.Orientation.IsPortrait() && !custom {
		return heightNotched
	}
	return heightDefault
}

// spacerFor returns the overshoot inset height under the same policy.
func spacerFor(t Traits, custom bool) float64 {
	if t.Notched && t.Orientation.IsPortrait() && !custom {
		return spacerNotched
	}
	return spacerDefault
}
