package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding ties a combination such as "Ctrl+Alt+S" to a callback.
type Binding struct {
	Combo    string
	Callback func()
}

var ErrNoBindings = errors.New("no usable hotkey bindings")

var (
	listenMu  sync.Mutex
	listening bool
)

// Listen registers every binding on a single global hook. Callbacks run on the
// hook goroutine and should only hand off work. Bindings with an empty combo
// are skipped; unknown key names make that binding unusable.
func Listen(bindings ...Binding) error {
	var matchers []*matcher
	for _, b := range bindings {
		if strings.TrimSpace(b.Combo) == "" {
			continue
		}
		m, err := newMatcher(b.Combo, b.Callback)
		if err != nil {
			log.Printf("ERROR: hotkey %q: %v", b.Combo, err)
			continue
		}
		matchers = append(matchers, m)
		log.Printf("Hotkey listener configured for: %s", b.Combo)
	}
	if len(matchers) == 0 {
		return ErrNoBindings
	}

	listenMu.Lock()
	if listening {
		listenMu.Unlock()
		return errors.New("hotkey listener already running")
	}
	listening = true
	listenMu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
				continue
			}
			down := ev.Kind == gohook.KeyDown
			for _, m := range matchers {
				if m.handle(down, ev.Rawcode) {
					log.Printf("Hotkey activated: %s", m.combo)
					if m.callback != nil {
						m.callback()
					}
				}
			}
		}
		log.Printf("Event channel closed")
	}()
	return nil
}

// Stop ends the global hook.
func Stop() {
	listenMu.Lock()
	defer listenMu.Unlock()
	if listening {
		gohook.End()
		listening = false
	}
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// matcher tracks which keys of one combination are held.
type matcher struct {
	mu       sync.Mutex
	combo    string
	keys     []keyState
	callback func()
}

func newMatcher(combo string, callback func()) (*matcher, error) {
	m := &matcher{combo: combo, callback: callback}
	for _, name := range parseHotkey(combo) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("cannot map key %q", name)
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes})
	}
	if len(m.keys) == 0 {
		return nil, fmt.Errorf("empty combination")
	}
	return m, nil
}

// handle feeds one key event and reports whether the full combination just
// became pressed. States reset after a match so holding the keys fires once.
func (m *matcher) handle(down bool, rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.keys {
		for _, c := range m.keys[i].rawcodes {
			if c == rawcode {
				m.keys[i].pressed = down
				break
			}
		}
	}
	if !down {
		return false
	}
	for i := range m.keys {
		if !m.keys[i].pressed {
			return false
		}
	}
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super", "meta":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

var namedKeys = map[string][]uint16{
	// Modifiers: left and right variants.
	"ctrl":  {162, 163},
	"alt":   {164, 165},
	"shift": {160, 161},
	"cmd":   {91, 92},

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to Windows virtual key codes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	if keyName == "win" || keyName == "super" {
		return namedKeys["cmd"]
	}
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16('A' + c - 'a')}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		}
	}
	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
