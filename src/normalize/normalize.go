// Package normalize prepares captured images for OCR: greyscale, skew
// estimation and rotation correction, in that order.
package normalize

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"screen-clipper/src/deskew"
)

// ErrArtifactIO marks a failure to read or write the artifact file.
var ErrArtifactIO = errors.New("artifact I/O failure")

// Normalizer runs the fixed greyscale, deskew, rotate sequence.
type Normalizer struct {
	estimator deskew.SkewEstimator
}

// New returns a Normalizer. A nil estimator selects the Hough estimator.
func New(estimator deskew.SkewEstimator) *Normalizer {
	if estimator == nil {
		estimator = deskew.New()
	}
	return &Normalizer{estimator: estimator}
}

// Normalize returns the greyscaled, skew-corrected image and the skew that
// was estimated.
func (n *Normalizer) Normalize(img image.Image) (*image.NRGBA, float64) {
	grey := Greyscale(img)
	skew := n.estimator.EstimateSkewAngle(grey)
	return Rotate(grey, -skew), skew
}

// NormalizeFile reads the artifact at path, normalizes it and overwrites it.
func (n *Normalizer) NormalizeFile(path string) (float64, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrArtifactIO, path, err)
	}
	out, skew := n.Normalize(img)
	if err := imaging.Save(out, path); err != nil {
		return skew, fmt.Errorf("%w: save %s: %v", ErrArtifactIO, path, err)
	}
	return skew, nil
}

// Greyscale maps every pixel to floor(0.299r + 0.587g + 0.114b). Alpha is kept.
func Greyscale(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		g := luma(c.R, c.G, c.B)
		return color.NRGBA{R: g, G: g, B: g, A: c.A}
	})
}

func luma(r, g, b uint8) uint8 {
	// Explicit conversions keep each product rounded before the sum.
	v := float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b))
	return uint8(v)
}

// Rotate turns img by deg degrees, clockwise for positive values in screen
// coordinates. The canvas grows to fit and uncovered corners are white.
func Rotate(img image.Image, deg float64) *image.NRGBA {
	return imaging.Rotate(img, -deg, color.White)
}
