// Package tesseract is the gosseract-backed OCR engine.
package tesseract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Engine reuses one gosseract client. Calls are serialized.
type Engine struct {
	mu          sync.Mutex
	client      *gosseract.Client
	tessdataDir string
}

// New returns an engine reading trained data from tessdataDir. The client is
// created on first use.
func New(tessdataDir string) *Engine {
	return &Engine{tessdataDir: tessdataDir}
}

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, imagePath, languageCode string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.client == nil {
		e.client = gosseract.NewClient()
	}

	if err := e.client.SetTessdataPrefix(e.tessdataDir); err != nil {
		return "", fmt.Errorf("failed to set tessdata prefix: %w", err)
	}
	if err := e.client.SetLanguage(languageCode); err != nil {
		return "", fmt.Errorf("failed to set language %q: %w", languageCode, err)
	}
	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := e.client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Version reports the linked Tesseract version.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		e.client = gosseract.NewClient()
	}
	return e.client.Version()
}

// Close releases the client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
