// Package gui hosts the platform overlay windows. It implements
// overlay.Renderer and reports mouse input back as overlay.PointerEvent values.
package gui

import (
	"screen-clipper/src/overlay"
)

// Renderer draws overlays and produces pointer events.
type Renderer interface {
	overlay.Renderer
	// Events delivers pointer transitions. Nil when the platform has no input.
	Events() <-chan overlay.PointerEvent
	Close() error
}

const eventBuffer = 64

// Overlay appearance: a translucent black veil that darkens the monitor, and
// a red selection outline. COLORREF values are 0x00BBGGRR.
const (
	overlayAlpha    = 100
	overlayFillRGB  = 0x00000000
	selectionPenRGB = 0x000000FF
)

// send queues ev without blocking the UI thread. Moves are dropped when the
// buffer is full; presses and releases wait for room.
func send(ch chan overlay.PointerEvent, ev overlay.PointerEvent) {
	if ev.Kind == overlay.PointerMoveEvent {
		select {
		case ch <- ev:
		default:
		}
		return
	}
	ch <- ev
}
