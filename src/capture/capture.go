// Package capture resolves which overlay produced a selection, translates it
// to global coordinates and hands it to the pipeline.
package capture

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"screen-clipper/src/overlay"
	"screen-clipper/src/selection"
	"screen-clipper/src/session"
	"screen-clipper/src/worker"
)

// Outcome of one capture request.
type Outcome int

const (
	// NoSelection means no overlay held a selector.
	NoSelection Outcome = iota
	// DegenerateSelection means the winning rectangle had no area.
	DegenerateSelection
	// Submitted means the region was queued for the pipeline.
	Submitted
	// Busy means the worker queue was full and the request was dropped.
	Busy
)

func (o Outcome) String() string {
	switch o {
	case NoSelection:
		return "NoSelection"
	case DegenerateSelection:
		return "DegenerateSelection"
	case Submitted:
		return "Submitted"
	case Busy:
		return "Busy"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result reports what HandleCaptureRequest did. Region is in global
// coordinates and is zero for NoSelection.
type Result struct {
	ID      string
	Outcome Outcome
	Region  selection.Rect
}

// Submitter queues work without blocking.
type Submitter interface {
	Submit(ctx context.Context, id string, fn worker.Job) bool
}

// Runner processes a global region.
type Runner interface {
	Run(ctx context.Context, id string, region selection.Rect) (session.Result, error)
}

const (
	busyTitle = "Screen Clipper"
	busyBody  = "Busy, please retry"
)

// Coordinator turns a finished drag into a pipeline job.
type Coordinator struct {
	overlays *overlay.Set
	pool     Submitter
	runner   Runner
	notifier session.Notifier
	log      zerolog.Logger
	newID    func() string
}

func New(overlays *overlay.Set, pool Submitter, runner Runner, notifier session.Notifier, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		overlays: overlays,
		pool:     pool,
		runner:   runner,
		notifier: notifier,
		log:      log,
		newID:    uuid.NewString,
	}
}

// HandleCaptureRequest picks the first overlay holding a selector, resets
// every overlay and submits the translated region. Pipeline failures surface
// through the pipeline's own target; they are not returned here.
func (c *Coordinator) HandleCaptureRequest(ctx context.Context) Result {
	id := c.newID()
	log := c.log.With().Str("capture_id", id).Logger()

	var (
		found  bool
		local  selection.Rect
		origin selection.Point
		winner int
	)
	for _, o := range c.overlays.Overlays() {
		if !o.HasCapture() {
			continue
		}
		found = true
		winner = o.Index()
		local = o.Selector().NormalizedRect()
		origin = o.Monitor().Bounds.Origin()
		break
	}

	c.overlays.ResetAll()

	if !found {
		log.Debug().Msg("No overlay holds a selection")
		return Result{ID: id, Outcome: NoSelection}
	}

	global := local.Translate(origin)
	if global.Empty() {
		log.Info().Int("overlay", winner).Int("width", global.Width).Int("height", global.Height).Msg("DegenerateSelection: nothing to capture")
		return Result{ID: id, Outcome: DegenerateSelection, Region: global}
	}

	submitted := c.pool.Submit(ctx, id, func(ctx context.Context) {
		if _, err := c.runner.Run(ctx, id, global); err != nil {
			log.Warn().Err(err).Msg("Capture pipeline aborted")
		}
	})
	if !submitted {
		log.Warn().Msg("Worker busy, capture dropped")
		if c.notifier != nil {
			c.notifier.Info(busyTitle, busyBody)
		}
		return Result{ID: id, Outcome: Busy, Region: global}
	}

	log.Info().Int("overlay", winner).Int("x", global.X).Int("y", global.Y).Int("width", global.Width).Int("height", global.Height).Msg("Capture submitted")
	return Result{ID: id, Outcome: Submitted, Region: global}
}
