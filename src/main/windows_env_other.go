//go:build !windows

package main

import (
	"log"

	"screen-capture-ocr/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	if b, err := screenshot.VirtualBounds(); err == nil {
		log.Printf("MONITOR: virtual screen %v", b)
	}
	if b, err := screenshot.PrimaryBounds(); err == nil {
		log.Printf("MONITOR: primary screen %v", b)
	}
}
