//go:build !windows

package main

import (
	"github.com/rs/zerolog/log"

	"screen-clipper/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	monitors, err := screenshot.Monitors()
	if err != nil {
		log.Warn().Err(err).Msg("MONITOR: enumeration failed")
		return
	}
	v := screenshot.VirtualBounds(monitors)
	log.Info().
		Int("monitors", len(monitors)).
		Int("x", v.X).
		Int("y", v.Y).
		Int("width", v.Width).
		Int("height", v.Height).
		Msg("MONITOR: virtual screen")
}
