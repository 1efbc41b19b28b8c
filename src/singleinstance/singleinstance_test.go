package singleinstance

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func usePorts(t *testing.T, start, end int) {
	t.Helper()
	t.Setenv("CLIPPER_PORT_START", strconv.Itoa(start))
	t.Setenv("CLIPPER_PORT_END", strconv.Itoa(end))
}

func TestServerClientRoundTrip(t *testing.T) {
	usePorts(t, 49731, 49735)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer(zerolog.Nop())
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	if _, ok := DetectResidentPort(ctx); !ok {
		t.Fatalf("DetectResidentPort did not find the server")
	}

	type reply struct {
		delegated bool
		text      string
		err       error
	}
	done := make(chan reply, 1)
	go func() {
		delegated, text, err := NewClient().Send(ctx, CommandToggle)
		done <- reply{delegated, text, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().Command != CommandToggle {
		t.Errorf("command = %q, want TOGGLE", conn.Request().Command)
	}
	if err := conn.RespondSuccess("ok"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	r := <-done
	if r.err != nil || !r.delegated || r.text != "ok" {
		t.Fatalf("Send = (%v, %q, %v)", r.delegated, r.text, r.err)
	}
}

func TestClientErrorResponse(t *testing.T) {
	usePorts(t, 49741, 49745)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer(zerolog.Nop())
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		_, _, err := NewClient().Send(ctx, Command("BOGUS"))
		done <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	conn.RespondError("unknown command")
	conn.Close()

	if err := <-done; err == nil || err.Error() != "unknown command" {
		t.Fatalf("err = %v, want unknown command", err)
	}
}

func TestSecondServerTakesNextPort(t *testing.T) {
	usePorts(t, 49751, 49755)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewServer(zerolog.Nop())
	if err := first.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer first.Close()
	second := NewServer(zerolog.Nop())
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	defer second.Close()

	if first.Port() == second.Port() {
		t.Fatalf("both servers on port %d", first.Port())
	}
}

func TestNoResident(t *testing.T) {
	usePorts(t, 49761, 49762)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	delegated, _, err := NewClient().Send(ctx, CommandToggle)
	if err != nil || delegated {
		t.Fatalf("Send without resident = (%v, %v)", delegated, err)
	}
}

func TestGetPortRange(t *testing.T) {
	tests := []struct {
		start, end         string
		wantStart, wantEnd int
	}{
		{"", "", defaultPortStart, defaultPortEnd},
		{"50000", "50010", 50000, 50010},
		{"500", "2000", 1024, 2000},
		{"60010", "60000", 60000, 60010},
		{"abc", "70000", defaultPortStart, 65535},
	}
	for _, tt := range tests {
		t.Setenv("CLIPPER_PORT_START", tt.start)
		t.Setenv("CLIPPER_PORT_END", tt.end)
		s, e := getPortRange()
		if s != tt.wantStart || e != tt.wantEnd {
			t.Errorf("getPortRange(%q,%q) = %d,%d want %d,%d", tt.start, tt.end, s, e, tt.wantStart, tt.wantEnd)
		}
	}
}
