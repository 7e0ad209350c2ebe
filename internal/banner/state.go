package banner

// State is a banner's lifecycle position.
type State int

const (
	// StateIdle is the initial state before the first Show.
	StateIdle State = iota

	// StateQueued means the banner is enqueued, waiting to be presented.
	StateQueued

	// StatePresenting means the banner is attached and its entrance
	// animation is running; it is not yet displaying.
	StatePresenting

	// StateDisplaying means the banner is at rest on the surface and, if
	// auto-dismiss is on, counting down.
	StateDisplaying

	// StateSuspended means a front insertion preempted the banner; it is
	// detached and its countdown is canceled.
	StateSuspended

	// StateDismissing means the exit animation is running.
	StateDismissing

	// StateRemoved is terminal for one presentation; a removed banner may
	// be shown again.
	StateRemoved
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueued:
		return "queued"
	case StatePresenting:
		return "presenting"
	case StateDisplaying:
		return "displaying"
	case StateSuspended:
		return "suspended"
	case StateDismissing:
		return "dismissing"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
