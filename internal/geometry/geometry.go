// Package geometry provides the rectangle and size primitives shared by
// banner frame math, the animation driver, and the host surfaces.
package geometry

// Size holds a width/height pair in surface units.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect creates a rectangle from origin and dimensions.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// MaxY returns the bottom edge coordinate.
func (r Rect) MaxY() float64 {
	return r.Y + r.Height
}

// MaxX returns the right edge coordinate.
func (r Rect) MaxX() float64 {
	return r.X + r.Width
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Lerp linearly interpolates between a and b. Values of t outside [0, 1]
// extrapolate, which is what overshooting easings rely on.
func Lerp(a, b Rect, t float64) Rect {
	return Rect{
		X:      a.X + (b.X-a.X)*t,
		Y:      a.Y + (b.Y-a.Y)*t,
		Width:  a.Width + (b.Width-a.Width)*t,
		Height: a.Height + (b.Height-a.Height)*t,
	}
}
