// Package term presents banners inside a terminal: a bubbletea program
// composites lipgloss banner boxes over its own view, sliding them in
// and out one cell row at a time. The package also carries the
// interactive demo model the CLI's demo command runs.
package term
