package clipboard

import (
	"errors"
	"testing"
)

func TestWriteRoundTrip(t *testing.T) {
	if err := Init(); err != nil {
		t.Skipf("clipboard unavailable (expected in headless environment): %v", err)
	}
	if err := (Sink{}).Write("screen clipper test"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "screen clipper test" {
		t.Fatalf("Read = %q", got)
	}
}

func TestWriteBeforeInit(t *testing.T) {
	if initialized() {
		t.Skip("clipboard already initialized by another test")
	}
	if err := Write("x"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Write before Init = %v, want ErrNotInitialized", err)
	}
}
