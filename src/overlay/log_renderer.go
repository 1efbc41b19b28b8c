package overlay

import (
	"github.com/rs/zerolog"

	"screen-clipper/src/selection"
)

// LogRenderer is the headless renderer. It only records what would be drawn.
type LogRenderer struct {
	log zerolog.Logger
}

func NewLogRenderer(log zerolog.Logger) *LogRenderer {
	return &LogRenderer{log: log}
}

func (r *LogRenderer) Show(index int, bounds selection.Rect) {
	r.log.Debug().Int("overlay", index).Interface("bounds", bounds).Msg("show")
}

func (r *LogRenderer) Hide(index int) {
	r.log.Debug().Int("overlay", index).Msg("hide")
}

func (r *LogRenderer) DrawRect(index int, rect selection.Rect) {
	r.log.Trace().Int("overlay", index).Interface("rect", rect).Msg("draw")
}

func (r *LogRenderer) Clear(index int) {
	r.log.Trace().Int("overlay", index).Msg("clear")
}
