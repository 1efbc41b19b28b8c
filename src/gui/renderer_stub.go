//go:build !windows

package gui

import (
	"github.com/rs/zerolog"

	"screen-clipper/src/overlay"
)

type headless struct {
	*overlay.LogRenderer
}

// New returns a renderer that only logs. It never produces pointer events.
func New(log zerolog.Logger) (Renderer, error) {
	log.Warn().Msg("Overlay windows are not supported on this platform; using headless renderer")
	return headless{overlay.NewLogRenderer(log)}, nil
}

func (headless) Events() <-chan overlay.PointerEvent { return nil }
func (headless) Close() error                        { return nil }
