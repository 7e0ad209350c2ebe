package banner

import "time"

// Scheduler is the deferred-call facility the lifecycle runs on: Post
// marshals work onto the presentation loop, After schedules a call and
// returns its cancellation token. runloop.Loop implements it; surfaces
// with their own main loop provide equivalents.
type Scheduler interface {
	Post(fn func())
	After(d time.Duration, fn func()) func()
}
