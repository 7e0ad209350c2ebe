// Package shell presents banners as GTK4 layer-shell windows, one per
// attached banner. Surface calls arrive on the presentation loop and hop
// onto the GTK main loop via glib.IdleAdd; pointer gestures hop the
// other way.
package shell
