package banner

// Level grades a banner's visual urgency. Surfaces map levels to styling;
// the lifecycle itself does not branch on them.
type Level int

const (
	LevelLow Level = iota
	LevelNormal
	LevelCritical
)

// String returns the level name used for styling class lookups.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Content is what a banner shows. The lifecycle treats it as opaque;
// surfaces render it however they like.
type Content struct {
	App     string
	Summary string
	Body    string
	Icon    string
	Level   Level
}
