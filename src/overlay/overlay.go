// Package overlay owns the per-monitor selection overlays.
//
// The state machine here has no UI dependency. A Renderer is told what to show
// and the UI layer feeds pointer transitions back in as local coordinates. All
// mutation happens on the event-loop goroutine.
package overlay

import (
	"github.com/rs/zerolog"

	"screen-clipper/src/screenshot"
	"screen-clipper/src/selection"
)

// Renderer draws overlays. Index is the overlay's position in the Set.
type Renderer interface {
	Show(index int, bounds selection.Rect)
	Hide(index int)
	DrawRect(index int, r selection.Rect)
	Clear(index int)
}

// Overlay covers one monitor.
type Overlay struct {
	index    int
	monitor  screenshot.Monitor
	visible  bool
	armed    bool
	selector *selection.Selector
	renderer Renderer
}

func (o *Overlay) Index() int                    { return o.index }
func (o *Overlay) Monitor() screenshot.Monitor   { return o.monitor }
func (o *Overlay) Visible() bool                 { return o.visible }
func (o *Overlay) Armed() bool                   { return o.armed }
func (o *Overlay) Selector() *selection.Selector { return o.selector }

// HasCapture reports whether a selector is present, finished or not.
func (o *Overlay) HasCapture() bool { return o.selector != nil }

// Reset unarms, drops the selector and hides the overlay.
func (o *Overlay) Reset() {
	o.armed = false
	o.selector = nil
	o.visible = false
	o.renderer.Clear(o.index)
	o.renderer.Hide(o.index)
}

// Set is the ordered collection of overlays, one per monitor index.
type Set struct {
	overlays []*Overlay
	renderer Renderer
	log      zerolog.Logger
}

// NewSet returns an empty set drawing through renderer.
func NewSet(renderer Renderer, log zerolog.Logger) *Set {
	if renderer == nil {
		renderer = NewLogRenderer(log)
	}
	return &Set{renderer: renderer, log: log}
}

// Refresh binds monitors to overlays by position. Existing overlays keep their
// selector and visibility; new indices get a hidden overlay. Nothing is removed,
// so a vanished monitor leaves its overlay bound to the last known bounds.
func (s *Set) Refresh(monitors []screenshot.Monitor) {
	for i, m := range monitors {
		if i < len(s.overlays) {
			o := s.overlays[i]
			if o.monitor == m {
				continue
			}
			o.monitor = m
			if o.visible {
				s.renderer.Show(i, m.Bounds)
			}
			continue
		}
		s.overlays = append(s.overlays, &Overlay{index: i, monitor: m, renderer: s.renderer})
		s.log.Debug().Int("overlay", i).Interface("bounds", m.Bounds).Msg("Overlay created")
	}
}

// ToggleAll flips every overlay's visibility. Overlays going hidden are reset.
func (s *Set) ToggleAll() {
	for _, o := range s.overlays {
		if o.visible {
			o.Reset()
			continue
		}
		o.visible = true
		s.renderer.Show(o.index, o.monitor.Bounds)
	}
}

// ResetAll resets every overlay.
func (s *Set) ResetAll() {
	for _, o := range s.overlays {
		o.Reset()
	}
}

// AnyVisible reports whether at least one overlay is showing.
func (s *Set) AnyVisible() bool {
	for _, o := range s.overlays {
		if o.visible {
			return true
		}
	}
	return false
}

func (s *Set) Len() int { return len(s.overlays) }

// At returns the overlay at index i, or nil when out of range.
func (s *Set) At(i int) *Overlay {
	if i < 0 || i >= len(s.overlays) {
		return nil
	}
	return s.overlays[i]
}

// Overlays returns the overlays in index order. The slice is a copy.
func (s *Set) Overlays() []*Overlay {
	out := make([]*Overlay, len(s.overlays))
	copy(out, s.overlays)
	return out
}

// PointerDown arms a visible, unarmed overlay and anchors a selector at p.
func (s *Set) PointerDown(i int, p selection.Point) {
	o := s.At(i)
	if o == nil || !o.visible || o.armed {
		return
	}
	o.armed = true
	o.selector = selection.Begin(p)
}

// PointerMove extends the selection of an armed overlay and redraws it.
func (s *Set) PointerMove(i int, p selection.Point) {
	o := s.At(i)
	if o == nil || !o.armed || o.selector == nil {
		return
	}
	o.selector.Update(p)
	s.renderer.DrawRect(i, o.selector.NormalizedRect())
}

// PointerUp finishes the drag on an armed overlay. It returns true when the
// capture coordinator should run. The selector stays populated.
func (s *Set) PointerUp(i int, p selection.Point) bool {
	o := s.At(i)
	if o == nil || !o.armed || o.selector == nil {
		return false
	}
	o.selector.Update(p)
	return true
}
