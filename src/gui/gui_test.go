package gui

import (
	"testing"
	"time"

	"screen-clipper/src/overlay"
	"screen-clipper/src/selection"
)

func TestSendDropsMovesWhenFull(t *testing.T) {
	ch := make(chan overlay.PointerEvent, 1)
	send(ch, overlay.PointerEvent{Kind: overlay.PointerMoveEvent})
	send(ch, overlay.PointerEvent{Kind: overlay.PointerMoveEvent, Point: selection.Point{X: 9}})
	if len(ch) != 1 {
		t.Fatalf("len = %d, want 1", len(ch))
	}
	if ev := <-ch; ev.Point.X != 0 {
		t.Fatalf("kept the wrong move: %+v", ev)
	}
}

func TestSendBlocksForRelease(t *testing.T) {
	ch := make(chan overlay.PointerEvent, 1)
	ch <- overlay.PointerEvent{Kind: overlay.PointerMoveEvent}

	done := make(chan struct{})
	go func() {
		send(ch, overlay.PointerEvent{Kind: overlay.PointerUpEvent, Index: 2})
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("release was dropped instead of waiting")
	case <-time.After(20 * time.Millisecond):
	}
	<-ch
	<-done
	if ev := <-ch; ev.Kind != overlay.PointerUpEvent || ev.Index != 2 {
		t.Fatalf("ev = %+v", ev)
	}
}

func TestOverlayDarkensScreen(t *testing.T) {
	if overlayFillRGB != 0 {
		t.Fatalf("overlay fill = %#08x, want black", overlayFillRGB)
	}
	if overlayAlpha != 100 {
		t.Fatalf("overlay alpha = %d, want 100", overlayAlpha)
	}
	if selectionPenRGB&0xFF != 0xFF || selectionPenRGB>>8 != 0 {
		t.Fatalf("selection pen = %#08x, want pure red", selectionPenRGB)
	}
}
