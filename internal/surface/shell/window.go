package shell

import (
	"math"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/geometry"
	"github.com/jakestephens/banner/internal/render"
)

// swipeThreshold is how far a drag must travel upward, in pixels, to
// count as a swipe.
const swipeThreshold = 24.0

// bannerWindow is one on-screen banner. Everything here runs on the GTK
// main loop.
type bannerWindow struct {
	window *gtk.Window
	box    *gtk.Box

	edge banner.Edge
	// bottomBase is the frame's off-screen Y for bottom-edge banners,
	// the reference the bottom margin is measured against.
	bottomBase float64
	closed     bool
}

// newBannerWindow builds the window parked off-screen on its edge.
func newBannerWindow(app *gtk.Application, content banner.Content, edge banner.Edge, height int, titleFormat, bodyFormat string) *bannerWindow {
	w := &bannerWindow{edge: edge}

	w.window = gtk.NewWindow()
	w.window.SetApplication(app)
	w.window.SetDecorated(false)
	w.window.SetResizable(false)
	w.window.SetDefaultSize(-1, height)

	layershell.InitForWindow(w.window)
	layershell.SetLayer(w.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(w.window, 0)
	layershell.SetKeyboardMode(w.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(w.window, "banner")

	// Stretch across the surface; the animated axis is the margin on the
	// anchored edge.
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeLeft, true)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeRight, true)
	if edge == banner.EdgeBottom {
		layershell.SetAnchor(w.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetMargin(w.window, layershell.LayerShellEdgeBottom, -height)
	} else {
		layershell.SetAnchor(w.window, layershell.LayerShellEdgeTop, true)
		layershell.SetMargin(w.window, layershell.LayerShellEdgeTop, -height)
	}

	w.buildUI(content, titleFormat, bodyFormat)
	return w
}

// buildUI constructs the banner's widget row: icon, then app name over
// title over body.
func (w *bannerWindow) buildUI(content banner.Content, titleFormat, bodyFormat string) {
	w.box = gtk.NewBox(gtk.OrientationHorizontal, 10)
	w.box.AddCSSClass("banner")
	w.box.AddCSSClass("level-" + content.Level.String())
	w.box.AddCSSClass("edge-" + string(w.edge))
	w.box.SetMarginTop(8)
	w.box.SetMarginBottom(8)
	w.box.SetMarginStart(12)
	w.box.SetMarginEnd(12)

	icon := gtk.NewImage()
	icon.AddCSSClass("banner-icon")
	icon.SetPixelSize(36)
	if content.Icon != "" {
		icon.SetFromIconName(content.Icon)
	} else {
		icon.SetFromIconName("dialog-information")
	}
	w.box.Append(icon)

	textBox := gtk.NewBox(gtk.OrientationVertical, 2)
	textBox.SetHExpand(true)
	textBox.SetVAlign(gtk.AlignCenter)

	if content.App != "" {
		appLbl := gtk.NewLabel(content.App)
		appLbl.AddCSSClass("banner-app")
		appLbl.SetXAlign(0)
		textBox.Append(appLbl)
	}

	if title := render.Format(titleFormat, content); title != "" {
		titleLbl := gtk.NewLabel(title)
		titleLbl.AddCSSClass("banner-title")
		titleLbl.SetXAlign(0)
		titleLbl.SetEllipsize(3) // PANGO_ELLIPSIZE_END
		titleLbl.SetHExpand(true)
		textBox.Append(titleLbl)
	}

	if body := render.Format(bodyFormat, content); body != "" {
		bodyLbl := gtk.NewLabel("")
		bodyLbl.AddCSSClass("banner-body")
		bodyLbl.SetXAlign(0)
		bodyLbl.SetEllipsize(3) // PANGO_ELLIPSIZE_END
		if render.HasMarkup(body) {
			bodyLbl.SetMarkup(render.SanitizeMarkup(body))
		} else {
			bodyLbl.SetText(body)
		}
		textBox.Append(bodyLbl)
	}

	w.box.Append(textBox)
	w.window.SetChild(w.box)
}

// connectGestures wires pointer input back onto the presentation loop.
// Banner methods are not safe to call from the GTK thread.
func (w *bannerWindow) connectGestures(sched banner.Scheduler, b *banner.Banner) {
	click := gtk.NewGestureClick()
	click.ConnectReleased(func(nPress int, x, y float64) {
		sched.Post(b.HandleTap)
	})
	w.window.AddController(click)

	drag := gtk.NewGestureDrag()
	drag.ConnectDragEnd(func(offsetX, offsetY float64) {
		if offsetY <= -swipeThreshold {
			sched.Post(b.HandleSwipeUp)
		}
	})
	w.window.AddController(drag)
}

// setFrame converts a banner rectangle to a margin on the anchored edge.
// Zero is resting flush with the edge, negative is off-screen, positive
// is animation overshoot past the resting position.
func (w *bannerWindow) setFrame(r geometry.Rect) {
	if w.closed {
		return
	}
	switch w.edge {
	case banner.EdgeBottom:
		layershell.SetMargin(w.window, layershell.LayerShellEdgeBottom, int(math.Round(w.bottomBase-r.MaxY())))
	default:
		layershell.SetMargin(w.window, layershell.LayerShellEdgeTop, int(math.Round(r.Y)))
	}
}

func (w *bannerWindow) close() {
	if w.closed {
		return
	}
	w.closed = true
	w.window.Close()
}
