//go:build windows

package main

import (
	"log"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const processPerMonitorDPIAware = 2

// enableDPIAwareness makes screen metrics and captures use physical pixels so
// the overlay maps onto the captured bitmap one to one.
func enableDPIAwareness() {
	shcore := windows.NewLazySystemDLL("shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness enabled")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed, code 0x%x", ret)
		}
		return
	}

	log.Printf("DPI: SetProcessDpiAwareness not available, trying fallback")
	user32 := windows.NewLazySystemDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Printf("DPI: SetProcessDPIAware not available, no DPI awareness set")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret != 0 {
		log.Printf("DPI: system awareness enabled (fallback)")
	} else {
		log.Printf("DPI: SetProcessDPIAware failed")
	}
}

func logMonitorConfiguration() {
	log.Printf("MONITOR: %d monitors", win.GetSystemMetrics(win.SM_CMONITORS))
	log.Printf("MONITOR: virtual screen x:%d y:%d w:%d h:%d",
		win.GetSystemMetrics(win.SM_XVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN))
	log.Printf("MONITOR: primary screen w:%d h:%d",
		win.GetSystemMetrics(win.SM_CXSCREEN),
		win.GetSystemMetrics(win.SM_CYSCREEN))
}
