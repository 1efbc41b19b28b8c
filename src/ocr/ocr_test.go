package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeEngine struct {
	text  string
	err   error
	panic bool
	block bool
	// sleep ignores ctx entirely.
	sleep    time.Duration
	finished atomic.Bool
	sawInput atomic.Bool
	calls    int
	lang     string
}

func (f *fakeEngine) Recognize(ctx context.Context, imagePath, languageCode string) (string, error) {
	f.calls++
	f.lang = languageCode
	if f.panic {
		panic("engine exploded")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.sleep > 0 {
		time.Sleep(f.sleep)
		_, err := os.Stat(imagePath)
		f.sawInput.Store(err == nil)
		f.finished.Store(true)
	}
	return f.text, f.err
}

// fixture creates a tessdata dir holding the given languages and an artifact.
func fixture(t *testing.T, langs ...string) (tessdata, artifact string) {
	t.Helper()
	root := t.TempDir()
	tessdata = filepath.Join(root, "tessdata")
	if err := os.MkdirAll(tessdata, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, l := range langs {
		if err := os.WriteFile(TrainedDataPath(tessdata, l), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	artifact = filepath.Join(root, "read_from.png")
	if err := os.WriteFile(artifact, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return tessdata, artifact
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("artifact %s still exists (err=%v)", path, err)
	}
}

func TestRecognizeOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		engine  *fakeEngine
		want    Outcome
		text    string
		wantErr error
	}{
		{"text", &fakeEngine{text: "  Hello\nworld \n"}, TextFound, "  Hello\nworld \n", nil},
		{"whitespace", &fakeEngine{text: " \n\t  "}, NoTextFound, "", ErrNoText},
		{"empty", &fakeEngine{}, NoTextFound, "", ErrNoText},
		{"engine error", &fakeEngine{err: errors.New("boom")}, RecognitionFailed, "", ErrRecognitionFailed},
		{"engine panic", &fakeEngine{panic: true}, RecognitionFailed, "", ErrRecognitionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tessdata, artifact := fixture(t, "eng")
			inv := NewInvoker(tt.engine, tessdata, zerolog.Nop())

			res := inv.Recognize(context.Background(), artifact, "eng")
			if res.Outcome != tt.want {
				t.Fatalf("Outcome = %v, want %v (err=%v)", res.Outcome, tt.want, res.Err)
			}
			if res.Text != tt.text {
				t.Errorf("Text = %q, want %q", res.Text, tt.text)
			}
			if tt.wantErr == nil && res.Err != nil {
				t.Errorf("Err = %v, want nil", res.Err)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if tt.engine.calls != 1 || tt.engine.lang != "eng" {
				t.Errorf("engine calls=%d lang=%q", tt.engine.calls, tt.engine.lang)
			}
			assertRemoved(t, artifact)
		})
	}
}

func TestRecognizeMissingLanguageSkipsEngine(t *testing.T) {
	tessdata, artifact := fixture(t, "eng")
	engine := &fakeEngine{text: "never"}
	inv := NewInvoker(engine, tessdata, zerolog.Nop())

	res := inv.Recognize(context.Background(), artifact, "fra")
	if res.Outcome != LanguageDataMissing {
		t.Fatalf("Outcome = %v, want LanguageDataMissing", res.Outcome)
	}
	if !errors.Is(res.Err, ErrLanguageDataMissing) {
		t.Fatalf("Err = %v, want ErrLanguageDataMissing", res.Err)
	}
	var ocrErr *Error
	if !errors.As(res.Err, &ocrErr) || ocrErr.Op != "CheckLanguage" || ocrErr.Details != "fra" {
		t.Fatalf("Err = %#v, want *Error with Op CheckLanguage", res.Err)
	}
	if engine.calls != 0 {
		t.Fatalf("engine called %d times", engine.calls)
	}
	assertRemoved(t, artifact)
}

func TestRecognizeDeadline(t *testing.T) {
	tessdata, artifact := fixture(t, "eng")
	inv := NewInvoker(&fakeEngine{block: true}, tessdata, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := inv.Recognize(ctx, artifact, "eng")
	if res.Outcome != RecognitionFailed {
		t.Fatalf("Outcome = %v, want RecognitionFailed", res.Outcome)
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("Err = %v, want deadline exceeded", res.Err)
	}
	assertRemoved(t, artifact)
}

func TestRecognizeDeadlineWaitsForEngine(t *testing.T) {
	tessdata, artifact := fixture(t, "eng")
	engine := &fakeEngine{text: "late", sleep: 100 * time.Millisecond}
	inv := NewInvoker(engine, tessdata, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := inv.Recognize(ctx, artifact, "eng")
	if res.Outcome != RecognitionFailed {
		t.Fatalf("Outcome = %v, want RecognitionFailed", res.Outcome)
	}
	if !engine.finished.Load() {
		t.Fatalf("Recognize returned while the engine was still running")
	}
	if !engine.sawInput.Load() {
		t.Fatalf("artifact removed before the engine finished")
	}
	assertRemoved(t, artifact)
}

func TestRecognizeKeepInput(t *testing.T) {
	tessdata, artifact := fixture(t, "eng")
	inv := NewInvoker(&fakeEngine{text: "kept"}, tessdata, zerolog.Nop(), KeepInput())
	if res := inv.Recognize(context.Background(), artifact, "eng"); res.Outcome != TextFound {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("input removed despite KeepInput: %v", err)
	}
}

func TestRecognizeNilEngine(t *testing.T) {
	tessdata, artifact := fixture(t, "eng")
	res := NewInvoker(nil, tessdata, zerolog.Nop()).Recognize(context.Background(), artifact, "eng")
	if res.Outcome != RecognitionFailed {
		t.Fatalf("Outcome = %v, want RecognitionFailed", res.Outcome)
	}
}

func TestOutcomeString(t *testing.T) {
	if LanguageDataMissing.String() != "LanguageDataMissing" {
		t.Fatalf("String() = %q", LanguageDataMissing.String())
	}
	if Outcome(42).String() != "Outcome(42)" {
		t.Fatalf("String() = %q", Outcome(42).String())
	}
}

func TestErrorFormatting(t *testing.T) {
	err := newError("Recognize", ErrNoText, "eng")
	if got := err.Error(); got != "ocr: Recognize failed: eng: no text found" {
		t.Fatalf("Error() = %q", got)
	}
	err = newError("Recognize", ErrNoText, "")
	if got := err.Error(); got != "ocr: Recognize failed: no text found" {
		t.Fatalf("Error() = %q", got)
	}
}
