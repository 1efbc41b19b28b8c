package screenshot

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"screen-clipper/src/selection"
)

var (
	// ErrNoDisplays is returned when the platform reports no active display.
	ErrNoDisplays = errors.New("no active displays found")
	// ErrInvalidArea is returned when a capture rectangle has no area.
	ErrInvalidArea = errors.New("invalid capture area")
)

// Monitor is one physical display in global screen coordinates.
type Monitor struct {
	ID     int
	Bounds selection.Rect
}

// Monitors enumerates active displays in platform order.
func Monitors() ([]Monitor, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplays
	}
	monitors := make([]Monitor, 0, n)
	for i := 0; i < n; i++ {
		monitors = append(monitors, Monitor{
			ID:     i,
			Bounds: selection.FromImage(screenshot.GetDisplayBounds(i)),
		})
	}
	return monitors, nil
}

// Capture grabs the pixels of a global rectangle.
func Capture(region selection.Rect) (*image.RGBA, error) {
	if region.Empty() {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidArea, region.Width, region.Height)
	}

	img, err := screenshot.CaptureRect(region.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// VirtualBounds returns the union of all display bounds.
func VirtualBounds(monitors []Monitor) selection.Rect {
	if len(monitors) == 0 {
		return selection.Rect{}
	}
	union := monitors[0].Bounds.Image()
	for _, m := range monitors[1:] {
		union = union.Union(m.Bounds.Image())
	}
	return selection.FromImage(union)
}

// Capturer adapts the package functions to the capture pipeline's interface.
type Capturer struct{}

func (Capturer) Capture(region selection.Rect) (image.Image, error) {
	img, err := Capture(region)
	if err != nil {
		return nil, err
	}
	return img, nil
}
