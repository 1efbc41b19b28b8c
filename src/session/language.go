package session

import "sync/atomic"

// Language holds the selected OCR language code. Writes come from the tray
// and reads from the pipeline; the last writer wins.
type Language struct {
	code atomic.Value
}

func NewLanguage(code string) *Language {
	l := &Language{}
	l.code.Store(code)
	return l
}

func (l *Language) Get() string {
	code, _ := l.code.Load().(string)
	return code
}

func (l *Language) Set(code string) {
	l.code.Store(code)
}
