// Package daemon provides the supporting services for bannerd: config
// hot-reload, shared state and journal polling, and rate-limited
// self-notifications.
package daemon
