// Package eventloop is the single goroutine that owns the overlay set. Hotkey
// presses, tray clicks, forwarded IPC commands and pointer events all arrive
// here as channel messages and are handled one at a time.
package eventloop

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"screen-clipper/src/capture"
	"screen-clipper/src/overlay"
	"screen-clipper/src/screenshot"
	"screen-clipper/src/singleinstance"
)

// MonitorSource enumerates displays.
type MonitorSource func() ([]screenshot.Monitor, error)

// Coordinator handles a finished drag.
type Coordinator interface {
	HandleCaptureRequest(ctx context.Context) capture.Result
}

// Options wires a Loop. Server and Pointer may be nil.
type Options struct {
	Overlays    *overlay.Set
	Coordinator Coordinator
	Monitors    MonitorSource
	Server      singleinstance.Server
	Pointer     <-chan overlay.PointerEvent
	Log         zerolog.Logger
}

// Loop is the single-threaded coordinator for toggle and pointer flows.
type Loop struct {
	overlays *overlay.Set
	coord    Coordinator
	monitors MonitorSource
	srv      singleinstance.Server
	pointer  <-chan overlay.PointerEvent
	toggleCh chan struct{}
	log      zerolog.Logger

	// captures observes coordinator results; tests use it.
	captures chan capture.Result
}

func New(opts Options) *Loop {
	monitors := opts.Monitors
	if monitors == nil {
		monitors = screenshot.Monitors
	}
	return &Loop{
		overlays: opts.Overlays,
		coord:    opts.Coordinator,
		monitors: monitors,
		srv:      opts.Server,
		pointer:  opts.Pointer,
		toggleCh: make(chan struct{}, 4),
		log:      opts.Log,
	}
}

// Toggle asks the loop to refresh monitors and flip overlay visibility. It is
// safe to call from any goroutine; excess requests are dropped.
func (l *Loop) Toggle() {
	select {
	case l.toggleCh <- struct{}{}:
	default:
		l.log.Debug().Msg("Toggle dropped, queue full")
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	reqCh := make(chan singleinstance.Conn, 4)
	if l.srv != nil {
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				if ctx.Err() != nil {
					_ = conn.Close()
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			l.overlays.ResetAll()
			return ctx.Err()
		case <-l.toggleCh:
			l.handleToggle()
		case ev, ok := <-l.pointer:
			if !ok {
				l.pointer = nil
				continue
			}
			l.handlePointer(ctx, ev)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(conn)
		}
	}
}

func (l *Loop) handleToggle() {
	monitors, err := l.monitors()
	if err != nil {
		// Toggle what we already know about; an empty set stays empty.
		l.log.Error().Err(err).Msg("Failed to enumerate monitors")
	} else {
		l.overlays.Refresh(monitors)
	}
	l.overlays.ToggleAll()
	l.log.Debug().Int("overlays", l.overlays.Len()).Bool("visible", l.overlays.AnyVisible()).Msg("Overlays toggled")
}

func (l *Loop) handlePointer(ctx context.Context, ev overlay.PointerEvent) {
	if !l.overlays.Dispatch(ev) {
		return
	}
	res := l.coord.HandleCaptureRequest(ctx)
	l.log.Debug().Str("capture_id", res.ID).Str("outcome", res.Outcome.String()).Msg("Capture request handled")
	if l.captures != nil {
		l.captures <- res
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	switch cmd := conn.Request().Command; cmd {
	case singleinstance.CommandToggle:
		l.handleToggle()
		if err := conn.RespondSuccess(""); err != nil {
			l.log.Warn().Err(err).Msg("Failed to answer toggle request")
		}
	default:
		_ = conn.RespondError(fmt.Sprintf("unknown command %q", cmd))
	}
}
