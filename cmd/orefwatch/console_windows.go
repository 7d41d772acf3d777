//go:build windows

package main

import "syscall"

// hideConsoleWindow detaches from the console and hides any visible console
// window, so tray mode does not leave a terminal lying around.
func hideConsoleWindow() {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	user32 := syscall.NewLazyDLL("user32.dll")
	freeConsole := kernel32.NewProc("FreeConsole")
	getConsoleWindow := kernel32.NewProc("GetConsoleWindow")
	showWindow := user32.NewProc("ShowWindow")

	_, _, _ = freeConsole.Call()

	hwnd, _, _ := getConsoleWindow.Call()
	if hwnd != 0 {
		const SW_HIDE = 0
		showWindow.Call(hwnd, uintptr(SW_HIDE))
	}
}
