// Package clipboard writes recognized text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrNotInitialized is returned when Write runs before a successful Init.
var ErrNotInitialized = errors.New("clipboard not initialized")

var (
	writeMu sync.Mutex
	initMu  sync.Mutex
	ready   bool
)

// Init prepares the platform clipboard. It is safe to call more than once.
func Init() error {
	initMu.Lock()
	defer initMu.Unlock()
	if ready {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard init: %w", err)
	}
	ready = true
	return nil
}

func initialized() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return ready
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	if !initialized() {
		return ErrNotInitialized
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Read returns the current text contents.
func Read() (string, error) {
	if !initialized() {
		return "", ErrNotInitialized
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// Sink adapts the package functions to the pipeline's clipboard interface.
type Sink struct{}

func (Sink) Write(text string) error { return Write(text) }
