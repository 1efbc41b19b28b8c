package deskew

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"
)

// linedImage draws six 3px dark lines tilted by deg (positive descends to the
// right) across a white 400x400 canvas, all inside the middle half of the rows.
func linedImage(deg float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	slope := math.Tan(deg * math.Pi / 180)
	for k := range 6 {
		y0 := 110.0 + float64(k)*30
		for x := 20; x < 380; x++ {
			y := int(math.Round(y0 + float64(x-20)*slope))
			for t := range 3 {
				img.Set(x, y+t, color.Black)
			}
		}
	}
	return img
}

func TestEstimateSkewAngle(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		tol  float64
	}{
		{"horizontal", 0, 0.3},
		{"clockwise 3", 3, 0.5},
		{"counter-clockwise 4", -4, 0.5},
	}
	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.EstimateSkewAngle(linedImage(tt.deg))
			if math.Abs(got-tt.deg) > tt.tol {
				t.Fatalf("EstimateSkewAngle = %.3f, want %.1f±%.1f", got, tt.deg, tt.tol)
			}
		})
	}
}

func TestEstimateSkewAngleBlank(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	if got := New().EstimateSkewAngle(img); got != 0 {
		t.Fatalf("blank image skew = %v, want 0", got)
	}
}

func TestEstimateSkewAngleTinyImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	if got := New().EstimateSkewAngle(img); got != 0 {
		t.Fatalf("tiny image skew = %v, want 0", got)
	}
}

func TestEstimateSkewAngleOffsetBounds(t *testing.T) {
	src := linedImage(2)
	sub := src.SubImage(image.Rect(0, 50, 400, 350))
	got := New().EstimateSkewAngle(sub)
	if math.Abs(got-2) > 0.5 {
		t.Fatalf("EstimateSkewAngle(sub-image) = %.3f, want ~2", got)
	}
}

func TestDistanceBin(t *testing.T) {
	tests := []struct {
		d    float64
		dMin int
		want int
	}{
		{0, -10, 10},
		{3.7, -10, 13},
		{-0.5, -10, 9},
		{-9.2, -10, 0},
	}
	for _, tt := range tests {
		if got := distanceBin(tt.d, tt.dMin); got != tt.want {
			t.Errorf("distanceBin(%v, %d) = %d, want %d", tt.d, tt.dMin, got, tt.want)
		}
	}
}
