package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func tessdataDir(t *testing.T) string {
	t.Helper()
	dir := os.Getenv("TESSDATA_DIR")
	if dir == "" {
		t.Skip("TESSDATA_DIR not set; skipping tesseract integration test")
	}
	if _, err := os.Stat(filepath.Join(dir, "eng.traineddata")); err != nil {
		t.Skipf("eng.traineddata not found in %s", dir)
	}
	return dir
}

func TestRecognizeBlankImage(t *testing.T) {
	dir := tessdataDir(t)
	e := New(dir)
	defer e.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 200, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), "blank.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	text, err := e.Recognize(context.Background(), path, "eng")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		t.Fatalf("blank image produced text %q", text)
	}
}

func TestRecognizeCanceledContext(t *testing.T) {
	e := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recognize(ctx, "unused.png", "eng"); err == nil {
		t.Fatalf("expected error for canceled context")
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
