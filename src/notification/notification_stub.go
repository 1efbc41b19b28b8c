//go:build !windows

package notification

// platformShow is nil off Windows; notifications are only logged.
var platformShow func(level Level, title, body string) error
