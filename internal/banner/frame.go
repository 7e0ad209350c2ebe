package banner

import "github.com/jakestephens/banner/internal/geometry"

// Edge is the surface edge a banner rests against.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// Valid reports whether the edge is a known value.
func (e Edge) Valid() bool {
	return e == EdgeTop || e == EdgeBottom
}

// PositionFrame owns a banner's start (off-surface) and end (resting)
// rectangles. It is created once per banner on the first Show and keeps
// its edge for life; width updates recompute both rectangles in place.
type PositionFrame struct {
	edge   Edge
	width  float64
	height float64
	maxY   float64

	start geometry.Rect
	end   geometry.Rect
}

// NewPositionFrame computes the frame pair for a banner of the given
// dimensions against a surface extending to maxY.
func NewPositionFrame(edge Edge, width, height, maxY float64) *PositionFrame {
	if !edge.Valid() {
		edge = EdgeTop
	}
	f := &PositionFrame{
		edge:   edge,
		width:  width,
		height: height,
		maxY:   maxY,
	}
	f.recompute()
	return f
}

// recompute derives both rectangles from the stored inputs. The start
// rectangle sits fully off-surface on the frame's edge; the end rectangle
// is the visible resting position.
func (f *PositionFrame) recompute() {
	switch f.edge {
	case EdgeBottom:
		f.start = geometry.NewRect(0, f.maxY, f.width, f.height)
		f.end = geometry.NewRect(0, f.maxY-f.height, f.width, f.height)
	default:
		f.start = geometry.NewRect(0, -f.height, f.width, f.height)
		f.end = geometry.NewRect(0, 0, f.width, f.height)
	}
}

// UpdateWidth recomputes both rectangles with a new width, preserving
// edge, height, and maxY. Called on orientation changes.
func (f *PositionFrame) UpdateWidth(width float64) {
	f.width = width
	f.recompute()
}

// Start returns the off-surface rectangle.
func (f *PositionFrame) Start() geometry.Rect { return f.start }

// End returns the resting rectangle.
func (f *PositionFrame) End() geometry.Rect { return f.end }

// Edge returns the edge the frame is bound to.
func (f *PositionFrame) Edge() Edge { return f.edge }

// Height returns the banner height the frame was built with.
func (f *PositionFrame) Height() float64 { return f.height }
