//go:build windows

package main

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
)

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
	smCMonitors       = 80

	processPerMonitorDPIAware = 2
)

var (
	shcore = windows.NewLazySystemDLL("Shcore.dll")
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
	procGetSystemMetrics       = user32.NewProc("GetSystemMetrics")
)

// enableDPIAwareness makes overlay and capture coordinates physical pixels.
// It must run before any window is created.
func enableDPIAwareness() {
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Debug().Msg("DPI: per-monitor awareness enabled")
		} else {
			log.Warn().Uint64("code", uint64(ret)).Msg("DPI: SetProcessDpiAwareness failed")
		}
		return
	}

	if err := procSetProcessDPIAware.Find(); err != nil {
		log.Warn().Msg("DPI: no DPI awareness API available")
		return
	}
	if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
		log.Debug().Msg("DPI: system awareness enabled (fallback)")
	} else {
		log.Warn().Msg("DPI: SetProcessDPIAware failed")
	}
}

func systemMetric(index int) int {
	ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int(int32(ret))
}

func logMonitorConfiguration() {
	log.Info().
		Int("monitors", systemMetric(smCMonitors)).
		Int("x", systemMetric(smXVirtualScreen)).
		Int("y", systemMetric(smYVirtualScreen)).
		Int("width", systemMetric(smCXVirtualScreen)).
		Int("height", systemMetric(smCYVirtualScreen)).
		Msg("MONITOR: virtual screen")
}
