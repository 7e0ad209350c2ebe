// Package banner implements the notification banner lifecycle and its
// presentation queue. A Banner is a single transient overlay that slides
// into a host surface, displays for a duration (or indefinitely), and
// slides out; the Queue serializes competing banners so at most one is
// ever actively displaying, suspending and resuming entries as front
// insertions preempt each other.
//
// All Banner and Queue methods must run on the presentation loop that
// owns the queue. Producers on other goroutines marshal calls onto the
// loop with its Post facility.
package banner
