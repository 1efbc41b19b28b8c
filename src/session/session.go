// Package session runs one capture through the OCR pipeline and delivers the
// outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"screen-clipper/src/normalize"
	"screen-clipper/src/ocr"
	"screen-clipper/src/selection"
)

// Capturer grabs the pixels of a global screen rectangle.
type Capturer interface {
	Capture(region selection.Rect) (image.Image, error)
}

// Normalizer rewrites the artifact in place.
type Normalizer interface {
	NormalizeFile(path string) (float64, error)
}

// Recognizer runs OCR on the artifact and removes it.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath, languageCode string) ocr.Result
}

// ResultTarget receives the final outcome of a run.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

// ErrCaptureFailed wraps pixel capture errors.
var ErrCaptureFailed = errors.New("capture failed")

// Options wires a Pipeline. Capturer is only needed for Run; a nil
// Normalizer skips normalization.
type Options struct {
	Capturer     Capturer
	Normalizer   Normalizer
	Recognizer   Recognizer
	Target       ResultTarget
	Language     *Language
	ArtifactPath string
	// Settle is waited before capturing so hidden overlays are gone from the screen.
	Settle   time.Duration
	Deadline time.Duration
	Log      zerolog.Logger
}

// Pipeline runs capture, artifact write, normalization, recognition and
// delivery. Runs are serialized.
type Pipeline struct {
	mu   sync.Mutex
	opts Options
}

// Result summarizes a run.
type Result struct {
	Outcome ocr.Outcome
	Text    string
	Skew    float64
}

func New(opts Options) (*Pipeline, error) {
	if opts.Recognizer == nil {
		return nil, errors.New("Recognizer is required")
	}
	if opts.Target == nil {
		return nil, errors.New("Target is required")
	}
	if opts.Language == nil {
		return nil, errors.New("Language is required")
	}
	if opts.ArtifactPath == "" {
		return nil, errors.New("ArtifactPath is required")
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 20 * time.Second
	}
	return &Pipeline{opts: opts}, nil
}

// Run captures region and processes it. The returned error is non-nil only for
// failures before recognition; recognition outcomes are in Result.
func (p *Pipeline) Run(ctx context.Context, id string, region selection.Rect) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.opts.Log.With().Str("capture_id", id).Logger()
	if p.opts.Capturer == nil {
		return Result{}, p.fail(log, errors.New("no capturer configured"))
	}

	if p.opts.Settle > 0 {
		select {
		case <-time.After(p.opts.Settle):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	log.Info().Int("x", region.X).Int("y", region.Y).Int("width", region.Width).Int("height", region.Height).Msg("Capturing region")
	img, err := p.opts.Capturer.Capture(region)
	if err != nil {
		return Result{}, p.fail(log, fmt.Errorf("%w: %w", ErrCaptureFailed, err))
	}
	return p.process(ctx, log, img)
}

// RecognizeImage runs the pipeline on an image that is already in memory.
func (p *Pipeline) RecognizeImage(ctx context.Context, id string, img image.Image) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.process(ctx, p.opts.Log.With().Str("capture_id", id).Logger(), img)
}

func (p *Pipeline) process(ctx context.Context, log zerolog.Logger, img image.Image) (Result, error) {
	path := p.opts.ArtifactPath
	if err := writeArtifact(path, img); err != nil {
		return Result{}, p.fail(log, err)
	}

	var skew float64
	if p.opts.Normalizer != nil {
		s, err := p.opts.Normalizer.NormalizeFile(path)
		if err != nil {
			removeQuietly(path)
			return Result{}, p.fail(log, err)
		}
		skew = s
		log.Debug().Float64("skew", skew).Msg("Artifact normalized")
	}

	code := p.opts.Language.Get()
	ocrCtx, cancel := context.WithTimeout(ctx, p.opts.Deadline)
	defer cancel()
	res := p.opts.Recognizer.Recognize(ocrCtx, path, code)
	log.Info().Str("outcome", res.Outcome.String()).Str("language", code).Msg("Recognition finished")

	out := Result{Outcome: res.Outcome, Text: res.Text, Skew: skew}
	if res.Outcome == ocr.TextFound {
		if err := p.opts.Target.OnSuccess(res.Text); err != nil {
			log.Error().Err(err).Msg("Failed to deliver text")
			_ = p.opts.Target.OnFailure(err)
			return out, err
		}
		return out, nil
	}
	if err := p.opts.Target.OnFailure(res.Err); err != nil {
		log.Warn().Err(err).Msg("Failure target returned error")
	}
	return out, nil
}

func (p *Pipeline) fail(log zerolog.Logger, err error) error {
	log.Error().Err(err).Msg("Capture attempt aborted")
	if terr := p.opts.Target.OnFailure(err); terr != nil {
		log.Warn().Err(terr).Msg("Failure target returned error")
	}
	return err
}

func writeArtifact(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create artifact dir: %v", normalize.ErrArtifactIO, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: write artifact: %v", normalize.ErrArtifactIO, err)
	}
	return nil
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}

// StdoutTarget writes recognized text to Writer. Failures are not printed.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}
