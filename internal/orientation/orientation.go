// Package orientation describes host surface orientation and distributes
// orientation change events to interested banners.
package orientation

// Orientation is the rotational posture of a host surface.
type Orientation int

const (
	Unknown Orientation = iota
	Portrait
	PortraitUpsideDown
	LandscapeLeft
	LandscapeRight
)

// String returns a human-readable orientation name.
func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case PortraitUpsideDown:
		return "portrait-upside-down"
	case LandscapeLeft:
		return "landscape-left"
	case LandscapeRight:
		return "landscape-right"
	default:
		return "unknown"
	}
}

// IsPortrait reports whether the orientation is a portrait variant.
func (o Orientation) IsPortrait() bool {
	return o == Portrait || o == PortraitUpsideDown
}

// IsLandscape reports whether the orientation is a landscape variant.
func (o Orientation) IsLandscape() bool {
	return o == LandscapeLeft || o == LandscapeRight
}

// FromSize derives an orientation from surface dimensions. Square or
// taller-than-wide surfaces read as portrait.
func FromSize(width, height float64) Orientation {
	if width > height {
		return LandscapeLeft
	}
	return Portrait
}

// Mask is a set of supported orientations. The zero Mask means the host
// declared no supported-orientation information; consumers treat changes
// as no-ops in that case.
type Mask uint8

const (
	MaskPortrait Mask = 1 << iota
	MaskPortraitUpsideDown
	MaskLandscapeLeft
	MaskLandscapeRight

	MaskAll = MaskPortrait | MaskPortraitUpsideDown | MaskLandscapeLeft | MaskLandscapeRight
)

// Contains reports whether o is in the mask. The zero mask contains
// nothing.
func (m Mask) Contains(o Orientation) bool {
	switch o {
	case Portrait:
		return m&MaskPortrait != 0
	case PortraitUpsideDown:
		return m&MaskPortraitUpsideDown != 0
	case LandscapeLeft:
		return m&MaskLandscapeLeft != 0
	case LandscapeRight:
		return m&MaskLandscapeRight != 0
	default:
		return false
	}
}

// IsZero reports whether no supported-orientation information exists.
func (m Mask) IsZero() bool {
	return m == 0
}
