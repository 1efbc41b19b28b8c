//go:build windows

package notification

import (
	"golang.org/x/sys/windows"
)

// platformShow blocks until the message box is dismissed; callers run it on
// its own goroutine.
func platformShow(level Level, title, body string) error {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	bodyPtr, err := windows.UTF16PtrFromString(body)
	if err != nil {
		return err
	}
	flags := uint32(windows.MB_OK | windows.MB_SETFOREGROUND | windows.MB_TOPMOST)
	if level == LevelError {
		flags |= windows.MB_ICONERROR
	} else {
		flags |= windows.MB_ICONINFORMATION
	}
	_, err = windows.MessageBox(0, bodyPtr, titlePtr, flags)
	return err
}
