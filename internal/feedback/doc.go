// Package feedback provides banner entrance sound playback.
// It uses the beep library to play WAV, OGG, and MP3 audio files
// with volume control and per-strength chime configuration.
package feedback
