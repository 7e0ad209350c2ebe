package banner

// Haptic selects the feedback strength fired when a banner's entrance
// animation starts.
type Haptic int

const (
	HapticNone Haptic = iota
	HapticLight
	HapticMedium
	HapticHeavy
)

// String returns the haptic level name.
func (h Haptic) String() string {
	switch h {
	case HapticLight:
		return "light"
	case HapticMedium:
		return "medium"
	case HapticHeavy:
		return "heavy"
	default:
		return "none"
	}
}

// Feedback generates physical or audible feedback keyed by a haptic
// level. Implementations must tolerate being called for HapticNone.
type Feedback interface {
	Impact(h Haptic)
}
