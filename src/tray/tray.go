// Package tray owns the notification-area icon and its menu.
package tray

import (
	"runtime"
	"sync"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"screen-clipper/src/language"
)

const (
	appTitle       = "Screen Clipper"
	noLanguages    = "No Languages Found!"
	itemTakeClip   = "Take Clipping"
	itemSelectLang = "Select Language"
	itemQuit       = "Close Screen Clipper"
)

// Options configures the tray menu. Callbacks run on menu goroutines and must
// not block.
type Options struct {
	Languages        []language.Language
	Current          string
	Tooltip          string
	OnTakeClipping   func()
	OnSelectLanguage func(code string)
	OnQuit           func()
	Log              zerolog.Logger
}

var (
	mu    sync.Mutex
	ready bool
)

// Run shows the tray icon and blocks until Quit is called.
func Run(opts Options) {
	systray.Run(func() { onReady(opts) }, func() {
		mu.Lock()
		ready = false
		mu.Unlock()
	})
}

// Quit removes the icon and makes Run return.
func Quit() { systray.Quit() }

// UpdateTooltip sets the hover text once the tray is up.
func UpdateTooltip(text string) {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		systray.SetTooltip(text)
	}
}

func onReady(opts Options) {
	icon, err := iconBytes(runtime.GOOS == "windows")
	if err != nil {
		opts.Log.Error().Err(err).Msg("Failed to build tray icon")
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(appTitle)
	tooltip := opts.Tooltip
	if tooltip == "" {
		tooltip = appTitle
	}
	systray.SetTooltip(tooltip)

	mTake := systray.AddMenuItem(itemTakeClip, "Select a screen region to read")
	mLang := systray.AddMenuItem(itemSelectLang, "OCR language")
	langItems := addLanguageItems(mLang, opts.Languages, opts.Current)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem(itemQuit, "Quit the application")

	mu.Lock()
	ready = true
	mu.Unlock()

	go func() {
		for {
			select {
			case <-mTake.ClickedCh:
				if opts.OnTakeClipping != nil {
					opts.OnTakeClipping()
				}
			case <-mQuit.ClickedCh:
				if opts.OnQuit != nil {
					opts.OnQuit()
				}
				return
			}
		}
	}()

	for i, item := range langItems {
		go func() {
			for range item.ClickedCh {
				code := opts.Languages[i].Code
				applyChecks(langItems, checkStates(opts.Languages, code))
				opts.Log.Info().Str("language", code).Msg("Language selected")
				if opts.OnSelectLanguage != nil {
					opts.OnSelectLanguage(code)
				}
			}
		}()
	}
}

func addLanguageItems(parent *systray.MenuItem, langs []language.Language, current string) []*systray.MenuItem {
	if len(langs) == 0 {
		parent.AddSubMenuItem(noLanguages, "").Disable()
		return nil
	}
	checks := checkStates(langs, current)
	items := make([]*systray.MenuItem, len(langs))
	for i, l := range langs {
		items[i] = parent.AddSubMenuItemCheckbox(l.Name, l.Code, checks[i])
	}
	return items
}

func applyChecks(items []*systray.MenuItem, checks []bool) {
	for i, item := range items {
		if checks[i] {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// checkStates marks exactly the entry whose code is current.
func checkStates(langs []language.Language, current string) []bool {
	out := make([]bool, len(langs))
	for i, l := range langs {
		out[i] = l.Code == current
	}
	return out
}
