// Package ocr runs text recognition on the capture artifact and classifies
// the result.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Engine recognizes text in an image file using the named trained data.
type Engine interface {
	Recognize(ctx context.Context, imagePath, languageCode string) (string, error)
}

// Outcome classifies a recognition attempt.
type Outcome int

const (
	TextFound Outcome = iota
	NoTextFound
	LanguageDataMissing
	RecognitionFailed
)

func (o Outcome) String() string {
	switch o {
	case TextFound:
		return "TextFound"
	case NoTextFound:
		return "NoTextFound"
	case LanguageDataMissing:
		return "LanguageDataMissing"
	case RecognitionFailed:
		return "RecognitionFailed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is what Recognize reports. Text is set only for TextFound and Err
// only for the failure outcomes.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

// TrainedDataPath returns where the trained data for code is expected.
func TrainedDataPath(tessdataDir, code string) string {
	return filepath.Join(tessdataDir, code+".traineddata")
}

// HasTrainedData reports whether the trained data file for code exists.
func HasTrainedData(tessdataDir, code string) bool {
	info, err := os.Stat(TrainedDataPath(tessdataDir, code))
	return err == nil && !info.IsDir()
}

// Invoker checks language availability, calls the engine and cleans up the
// artifact.
type Invoker struct {
	engine      Engine
	tessdataDir string
	keepInput   bool
	log         zerolog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// KeepInput leaves the image file in place after recognition. clipper-ocr
// uses it when --out names the artifact.
func KeepInput() Option {
	return func(i *Invoker) { i.keepInput = true }
}

func NewInvoker(engine Engine, tessdataDir string, log zerolog.Logger, opts ...Option) *Invoker {
	inv := &Invoker{engine: engine, tessdataDir: tessdataDir, log: log}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Recognize runs OCR on imagePath. It never panics and, unless KeepInput was
// set, removes imagePath before returning.
func (i *Invoker) Recognize(ctx context.Context, imagePath, languageCode string) Result {
	if !i.keepInput {
		defer i.removeArtifact(imagePath)
	}

	if !HasTrainedData(i.tessdataDir, languageCode) {
		err := newError("CheckLanguage", ErrLanguageDataMissing, languageCode)
		i.log.Warn().Err(err).Str("path", TrainedDataPath(i.tessdataDir, languageCode)).Msg("Trained data missing")
		return Result{Outcome: LanguageDataMissing, Err: err}
	}

	text, err := i.runEngine(ctx, imagePath, languageCode)
	if err != nil {
		wrapped := newError("Recognize", fmt.Errorf("%w: %w", ErrRecognitionFailed, err), languageCode)
		i.log.Error().Err(wrapped).Msg("OCR engine failed")
		return Result{Outcome: RecognitionFailed, Err: wrapped}
	}

	if strings.TrimSpace(text) == "" {
		i.log.Info().Str("language", languageCode).Msg("No text found")
		return Result{Outcome: NoTextFound, Err: newError("Recognize", ErrNoText, languageCode)}
	}

	i.log.Info().Int("chars", len(text)).Str("language", languageCode).Msg("Text recognized")
	return Result{Outcome: TextFound, Text: text}
}

type engineReply struct {
	text string
	err  error
}

// runEngine calls the engine on its own goroutine. An engine that ignores ctx
// is still waited for; a passed deadline turns its reply into an error.
func (i *Invoker) runEngine(ctx context.Context, imagePath, languageCode string) (string, error) {
	if i.engine == nil {
		return "", errors.New("no OCR engine configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan engineReply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- engineReply{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()
		text, err := i.engine.Recognize(ctx, imagePath, languageCode)
		done <- engineReply{text: text, err: err}
	}()

	select {
	case reply := <-done:
		return reply.text, reply.err
	case <-ctx.Done():
	}

	// The artifact must outlive the engine call, so the deadline only decides
	// the outcome.
	i.log.Warn().Err(ctx.Err()).Msg("OCR deadline passed, waiting for engine to return")
	<-done
	return "", ctx.Err()
}

func (i *Invoker) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		i.log.Warn().Err(err).Str("path", path).Msg("Failed to remove artifact")
	}
}
