package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrLanguageDataMissing is returned when <code>.traineddata is not installed.
	ErrLanguageDataMissing = errors.New("language data not found")

	// ErrRecognitionFailed is returned when the engine errors or panics.
	ErrRecognitionFailed = errors.New("recognition failed")

	// ErrNoText is returned when the engine produced only whitespace.
	ErrNoText = errors.New("no text found")
)

// Error wraps an OCR failure with the operation that produced it.
type Error struct {
	// Op is the failing step, e.g. "CheckLanguage" or "Recognize".
	Op string

	Err error

	// Details is optional context such as the language code.
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the wrapped sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newError(op string, err error, details string) *Error {
	return &Error{Op: op, Err: err, Details: details}
}
