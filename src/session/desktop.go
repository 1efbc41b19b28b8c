package session

import (
	"errors"
	"fmt"

	"screen-clipper/src/ocr"
)

// Clipboard stores recognized text.
type Clipboard interface {
	Write(text string) error
}

// Notifier shows short messages to the user.
type Notifier interface {
	Info(title, body string)
	Error(title, body string)
}

// Notification titles and bodies shown for pipeline outcomes.
const (
	TitleCopied         = "Text copied to clipboard!"
	TitleNoText         = "No text found"
	BodyNoText          = "Unfortunately, no text could be found in your selection"
	BodyLanguageMissing = "Try reinstalling it, or select a different language"
)

const previewLimit = 200

// DesktopTarget copies text to the clipboard and tells the user what happened.
// Names maps a language code to its display name.
type DesktopTarget struct {
	Clipboard Clipboard
	Notifier  Notifier
	Names     func(code string) string
}

func (t DesktopTarget) OnSuccess(text string) error {
	if err := t.Clipboard.Write(text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	t.Notifier.Info(TitleCopied, preview(text))
	return nil
}

// OnFailure notifies for NoTextFound and LanguageDataMissing. Other failures
// are only logged by the pipeline.
func (t DesktopTarget) OnFailure(err error) error {
	switch {
	case errors.Is(err, ocr.ErrNoText):
		t.Notifier.Info(TitleNoText, BodyNoText)
	case errors.Is(err, ocr.ErrLanguageDataMissing):
		t.Notifier.Error(LanguageMissingTitle(t.languageName(err)), BodyLanguageMissing)
	}
	return nil
}

// LanguageMissingTitle names the language whose trained data is missing.
func LanguageMissingTitle(name string) string {
	return fmt.Sprintf("Language file for %s not found!", name)
}

func (t DesktopTarget) languageName(err error) string {
	var ocrErr *ocr.Error
	code := ""
	if errors.As(err, &ocrErr) {
		code = ocrErr.Details
	}
	if t.Names != nil {
		return t.Names(code)
	}
	return code
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > previewLimit {
		return string(r[:previewLimit]) + "..."
	}
	return text
}
