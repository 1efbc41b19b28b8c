package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSubmitRunsJob(t *testing.T) {
	p := New(1, zerolog.Nop())
	defer p.Close()

	done := make(chan struct{})
	if !p.Submit(context.Background(), "a", func(context.Context) { close(done) }) {
		t.Fatalf("Submit returned false on idle pool")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run")
	}
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	p := New(1, zerolog.Nop())
	defer p.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	if !p.Submit(context.Background(), "busy", func(context.Context) {
		close(started)
		<-release
	}) {
		t.Fatalf("first Submit failed")
	}
	<-started

	// The worker is busy; one job fits in the queue, the next is dropped.
	if !p.Submit(context.Background(), "queued", func(context.Context) {}) {
		t.Fatalf("queued Submit failed")
	}
	if p.Submit(context.Background(), "dropped", func(context.Context) {}) {
		t.Fatalf("Submit should drop when queue is full")
	}
	close(release)
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	p := New(1, zerolog.Nop())
	defer p.Close()

	p.Submit(context.Background(), "panic", func(context.Context) { panic("boom") })

	var ran atomic.Bool
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Submit(context.Background(), "after", func(context.Context) { ran.Store(true) }) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	for time.Now().Before(deadline) && !ran.Load() {
		time.Sleep(5 * time.Millisecond)
	}
	if !ran.Load() {
		t.Fatalf("worker did not survive a panicking job")
	}
}

func TestCloseRejectsSubmit(t *testing.T) {
	p := New(1, zerolog.Nop())
	p.Close()
	p.Close()
	if p.Submit(context.Background(), "late", func(context.Context) {}) {
		t.Fatalf("Submit after Close should fail")
	}
}

func TestJobReceivesContext(t *testing.T) {
	p := New(1, zerolog.Nop())
	defer p.Close()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	got := make(chan any, 1)
	p.Submit(ctx, "ctx", func(ctx context.Context) { got <- ctx.Value(key{}) })
	select {
	case v := <-got:
		if v != "v" {
			t.Fatalf("context value = %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run")
	}
}
