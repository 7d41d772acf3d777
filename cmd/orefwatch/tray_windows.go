//go:build windows

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getlantern/systray"
)

// startTray runs a minimal Windows system tray with a Quit option, so the
// watcher can live in the background on a desktop machine.
func startTray(onQuit func()) {
	hideConsoleWindow()
	systray.Run(func() {
		systray.SetTitle("Orefwatch")
		systray.SetTooltip("התרעות פיקוד העורף — פועל ברקע")
		mQuit := systray.AddMenuItem("יציאה", "סגירת המעקב")
		go func() {
			for {
				select {
				case <-mQuit.ClickedCh:
					if onQuit != nil {
						onQuit()
					}
					systray.Quit()
					return
				case <-time.After(24 * time.Hour):
					// keep goroutine alive
				}
			}
		}()
	}, func() {
		fmt.Fprintln(os.Stderr, "Tray terminated")
	})
}
