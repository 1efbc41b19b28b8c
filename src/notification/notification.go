// Package notification shows short, non-blocking messages to the user.
package notification

import (
	"github.com/rs/zerolog"

	"screen-clipper/src/logutil"
)

// Level selects the icon of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notifier displays messages without blocking the caller.
type Notifier struct {
	log  zerolog.Logger
	show func(level Level, title, body string) error
}

// New returns the platform notifier.
func New(log zerolog.Logger) *Notifier {
	return &Notifier{log: log, show: platformShow}
}

func (n *Notifier) Info(title, body string)  { n.notify(LevelInfo, title, body) }
func (n *Notifier) Error(title, body string) { n.notify(LevelError, title, body) }

func (n *Notifier) notify(level Level, title, body string) {
	ev := n.log.Info()
	if level == LevelError {
		ev = n.log.Warn()
	}
	ev.Str("title", title).Str("body", logutil.Sanitize(body)).Msg("Notification")

	if n.show == nil {
		return
	}
	go func() {
		if err := n.show(level, title, body); err != nil {
			n.log.Error().Err(err).Msg("Failed to show notification")
		}
	}()
}
