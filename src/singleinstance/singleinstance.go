// Package singleinstance keeps one resident process per user session and lets
// later launches forward commands to it over loopback TCP.
package singleinstance

import (
	"context"

	"github.com/rs/zerolog"
)

// Command is a request line understood by the resident.
type Command string

const (
	// CommandToggle shows or hides the selection overlays.
	CommandToggle Command = "TOGGLE"
)

// Server owns the TCP endpoint and answers forwarded commands.
type Server interface {
	// Start listens on the first free port in the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	RespondSuccess(text string) error
	RespondError(msg string) error
	Close() error
}

// Request is one forwarded command.
type Request struct {
	Command Command
}

// Client forwards commands to a resident server.
type Client interface {
	// Send scans the port range and delivers cmd to the first resident found.
	// If no resident is found, returns delegated=false, err=nil.
	Send(ctx context.Context, cmd Command) (delegated bool, reply string, err error)
}

// NewServer returns TCP implementation.
func NewServer(log zerolog.Logger) Server { return newTcpServer(log) }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
