// Package deskew estimates the rotation of text lines in a raster image.
//
// The estimator votes with the lower edges of dark strokes in a Hough
// accumulator over a narrow band of angles and averages the strongest cells.
package deskew

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// SkewEstimator returns the skew of the text in img, in degrees. Positive means
// lines descend to the right.
type SkewEstimator interface {
	EstimateSkewAngle(img image.Image) float64
}

const (
	defaultMinAngle   = -20.0
	defaultAngleStep  = 0.2
	defaultAngleSteps = 200
	defaultTopCells   = 20
	defaultDarkLuma   = 140
)

// Estimator is a Hough-transform skew estimator. The zero value is not usable;
// call New.
type Estimator struct {
	minAngle float64
	step     float64
	steps    int
	topCells int
	darkLuma uint8
	sinTable []float64
	cosTable []float64
}

// New returns an estimator scanning -20 to +20 degrees in 0.2 degree steps.
func New() *Estimator {
	e := &Estimator{
		minAngle: defaultMinAngle,
		step:     defaultAngleStep,
		steps:    defaultAngleSteps,
		topCells: defaultTopCells,
		darkLuma: defaultDarkLuma,
	}
	e.sinTable = make([]float64, e.steps)
	e.cosTable = make([]float64, e.steps)
	for i := range e.steps {
		a := e.angle(i) * math.Pi / 180
		e.sinTable[i] = math.Sin(a)
		e.cosTable[i] = math.Cos(a)
	}
	return e
}

func (e *Estimator) angle(i int) float64 {
	return e.minAngle + float64(i)*e.step
}

// distanceBin offsets before truncating so negative distances floor into
// the right bin.
func distanceBin(d float64, dMin int) int {
	return int(d - float64(dMin))
}

type cell struct {
	alpha int
	votes int
}

// EstimateSkewAngle implements SkewEstimator. Images with too little dark
// structure report zero.
func (e *Estimator) EstimateSkewAngle(img image.Image) float64 {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 3 || height < 4 {
		return 0
	}

	dMin := -width
	dCount := 2 * (width + height)
	acc := make([]int, e.steps*dCount)

	dark := e.darkMask(img)
	for y := height / 4; y < height*3/4; y++ {
		for x := 1; x < width-2; x++ {
			if !dark[y*width+x] || (y+1 < height && dark[(y+1)*width+x]) {
				continue
			}
			for a := range e.steps {
				d := float64(y)*e.cosTable[a] - float64(x)*e.sinTable[a]
				di := distanceBin(d, dMin)
				if di >= 0 && di < dCount {
					acc[a*dCount+di]++
				}
			}
		}
	}

	var cells []cell
	for i, v := range acc {
		if v > 0 {
			cells = append(cells, cell{alpha: i / dCount, votes: v})
		}
	}
	if len(cells) < e.topCells {
		return 0
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].votes > cells[j].votes })

	sum := 0.0
	for _, c := range cells[:e.topCells] {
		sum += e.angle(c.alpha)
	}
	return sum / float64(e.topCells)
}

func (e *Estimator) darkMask(img image.Image) []bool {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	mask := make([]bool, width*height)
	for y := range height {
		for x := range width {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			mask[y*width+x] = g.Y < e.darkLuma
		}
	}
	return mask
}
