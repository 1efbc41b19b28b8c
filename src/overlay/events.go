package overlay

import "screen-clipper/src/selection"

// PointerKind identifies a pointer transition reported by the UI layer.
type PointerKind int

const (
	PointerDownEvent PointerKind = iota
	PointerMoveEvent
	PointerUpEvent
	// CancelEvent asks for every overlay to be reset, e.g. on Escape.
	CancelEvent
)

// PointerEvent is a transition on overlay Index at a local Point.
type PointerEvent struct {
	Kind  PointerKind
	Index int
	Point selection.Point
}

// Dispatch applies ev and reports whether the capture coordinator should run.
func (s *Set) Dispatch(ev PointerEvent) bool {
	switch ev.Kind {
	case PointerDownEvent:
		s.PointerDown(ev.Index, ev.Point)
	case PointerMoveEvent:
		s.PointerMove(ev.Index, ev.Point)
	case PointerUpEvent:
		return s.PointerUp(ev.Index, ev.Point)
	case CancelEvent:
		s.ResetAll()
	}
	return false
}
