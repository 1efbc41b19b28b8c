// Package hotkey listens for a global key combination and signals the event
// loop. Key codes are Windows virtual-key codes as reported by gohook.
package hotkey

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
)

// Key is one element of a combination, matched by any of its rawcodes.
type Key struct {
	Name     string
	Rawcodes []uint16
}

// Combo is a parsed combination such as Alt+A.
type Combo struct {
	Source string
	Keys   []Key
}

var modifiers = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN
}

var namedKeys = map[string]uint16{
	"space":       32,
	"enter":       13,
	"return":      13,
	"esc":         27,
	"escape":      27,
	"tab":         9,
	"backspace":   8,
	"delete":      46,
	"del":         46,
	"insert":      45,
	"ins":         45,
	"home":        36,
	"end":         35,
	"pageup":      33,
	"pgup":        33,
	"pagedown":    34,
	"pgdn":        34,
	"left":        37,
	"up":          38,
	"right":       39,
	"down":        40,
	"printscreen": 44,
}

// normalizeName lower-cases a key name and folds aliases.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "control":
		return "ctrl"
	case "win", "super", "meta":
		return "cmd"
	}
	return name
}

// rawcodes maps a normalized key name to its virtual-key codes.
func rawcodes(name string) []uint16 {
	if codes, ok := modifiers[name]; ok {
		return codes
	}
	if code, ok := namedKeys[name]; ok {
		return []uint16{code}
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if n, ok := strings.CutPrefix(name, "f"); ok {
		if i, err := strconv.Atoi(n); err == nil && i >= 1 && i <= 24 {
			return []uint16{uint16(111 + i)}
		}
	}
	return nil
}

// Parse converts a string like "Ctrl+Alt+Q" into a Combo.
func Parse(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}
	combo := Combo{Source: s}
	seen := map[string]bool{}
	for _, part := range strings.Split(s, "+") {
		name := normalizeName(part)
		if name == "" {
			return Combo{}, fmt.Errorf("hotkey %q: empty key", s)
		}
		codes := rawcodes(name)
		if codes == nil {
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, part)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		combo.Keys = append(combo.Keys, Key{Name: name, Rawcodes: codes})
	}
	return combo, nil
}

func (c Combo) String() string { return c.Source }

// matcher tracks which keys of a combo are held.
type matcher struct {
	mu      sync.Mutex
	keys    []Key
	pressed []bool
}

func newMatcher(c Combo) *matcher {
	return &matcher{keys: c.Keys, pressed: make([]bool, len(c.Keys))}
}

func (m *matcher) index(rawcode uint16) int {
	for i, k := range m.keys {
		for _, rc := range k.Rawcodes {
			if rc == rawcode {
				return i
			}
		}
	}
	return -1
}

// down records a key press and reports whether the full combo is now held.
// Firing clears the state so holding the keys does not repeat.
func (m *matcher) down(rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(rawcode)
	if i < 0 {
		return false
	}
	m.pressed[i] = true
	for _, p := range m.pressed {
		if !p {
			return false
		}
	}
	clear(m.pressed)
	return true
}

func (m *matcher) up(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(rawcode); i >= 0 {
		m.pressed[i] = false
	}
}

// Listen starts the global hook and calls fire for every activation until ctx
// is done. fire runs on the hook goroutine and must not block.
func Listen(ctx context.Context, combo Combo, fire func(), log zerolog.Logger) {
	m := newMatcher(combo)
	log.Info().Str("hotkey", combo.String()).Msg("Hotkey listener configured")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Hotkey goroutine panicked")
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Error().Msg("gohook.Start() returned nil channel")
			return
		}
		defer gohook.End()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Warn().Msg("Hotkey event channel closed")
					return
				}
				switch ev.Kind {
				case gohook.KeyDown:
					if m.down(ev.Rawcode) {
						log.Debug().Str("hotkey", combo.String()).Msg("Hotkey activated")
						if fire != nil {
							fire()
						}
					}
				case gohook.KeyUp:
					m.up(ev.Rawcode)
				}
			}
		}
	}()
}
