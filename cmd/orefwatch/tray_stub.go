//go:build !windows
// +build !windows

package main

// startTray is a no-op on non-Windows platforms; present to satisfy
// cross-platform builds. The tray: true config option only has effect on
// Windows.
func startTray(onQuit func()) {
	_ = onQuit
}
