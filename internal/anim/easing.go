package anim

// EasingFunc maps linear progress in [0, 1] to eased progress. Results
// may leave [0, 1] for overshooting curves.
type EasingFunc func(t float64) float64

// Linear applies no easing.
func Linear(t float64) float64 { return t }

// EaseInCubic accelerates from rest.
func EaseInCubic(t float64) float64 { return t * t * t }

// EaseOutCubic decelerates to rest.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutQuad accelerates then decelerates.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := 1 - t
	return 1 - 2*u*u
}

// EaseOutBack overshoots the target before settling, the spring feel
// banner entrances use. The overshoot region is covered by the spacer
// inset above/below the banner.
func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}
