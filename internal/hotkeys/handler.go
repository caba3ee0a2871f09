// Package hotkeys matches key-down events against configured shortcuts
// before they reach the window tree.
package hotkeys

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/1broseidon/nativewm/internal/event"
)

// Binding is a parsed key sequence such as "ctrl+shift+F12" or "Mod1-Left".
type Binding struct {
	Mods event.Modifier
	Key  string
}

// Parse parses a key sequence. Parts are separated by '+' or '-'; the last
// part names the key as reported by the backend. A separator that follows
// another separator, or stands alone, is itself the key, so "ctrl+-" and
// "ctrl++" bind the minus and plus keys.
func Parse(seq string) (Binding, error) {
	seq = strings.TrimSpace(seq)
	if seq == "" {
		return Binding{}, fmt.Errorf("empty key sequence")
	}

	var key string
	rest := seq
	if n := len(seq); isSeparator(rune(seq[n-1])) && (n == 1 || isSeparator(rune(seq[n-2]))) {
		key = seq[n-1:]
		rest = seq[:n-1]
	} else if isSeparator(rune(seq[n-1])) {
		return Binding{}, fmt.Errorf("missing key in %q", seq)
	}
	parts := strings.FieldsFunc(rest, isSeparator)
	if key == "" {
		if len(parts) == 0 {
			return Binding{}, fmt.Errorf("invalid key sequence %q", seq)
		}
		key = strings.TrimSpace(parts[len(parts)-1])
		parts = parts[:len(parts)-1]
	}

	var b Binding
	for _, p := range parts {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "shift":
			b.Mods |= event.ModShift
		case "ctrl", "control":
			b.Mods |= event.ModCtrl
		case "alt", "mod1":
			b.Mods |= event.ModAlt
		default:
			return Binding{}, fmt.Errorf("unknown modifier %q in %q", p, seq)
		}
	}
	b.Key = keyName(key)
	return b, nil
}

func isSeparator(r rune) bool { return r == '+' || r == '-' }

// keyName maps the separator characters to the keysym names X reports.
func keyName(key string) string {
	switch key {
	case "-":
		return "minus"
	case "+":
		return "plus"
	}
	return key
}

// Matches reports whether e is a key press of b. Key names compare
// case-insensitively; modifiers must match exactly.
func (b Binding) Matches(e event.Event) bool {
	return e.Type == event.KeyDown && e.Modifiers == b.Mods && strings.EqualFold(keyName(e.Key), b.Key)
}

func (b Binding) String() string {
	var parts []string
	if b.Mods&event.ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if b.Mods&event.ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if b.Mods&event.ModShift != 0 {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, b.Key), "+")
}

type entry struct {
	binding  Binding
	name     string
	callback func()
}

// Handler manages application shortcuts.
type Handler struct {
	mu      sync.Mutex
	entries []entry
	logger  *slog.Logger
}

// NewHandler creates an empty handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// RegisterFunc binds keySequence to callback, replacing any binding for the
// same keys.
func (h *Handler) RegisterFunc(name, keySequence string, callback func()) error {
	b, err := Parse(keySequence)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.entries {
		if old := h.entries[i].binding; old.Mods == b.Mods && strings.EqualFold(old.Key, b.Key) {
			h.entries[i] = entry{binding: b, name: name, callback: callback}
			return nil
		}
	}
	h.entries = append(h.entries, entry{binding: b, name: name, callback: callback})
	return nil
}

// Reset removes every binding.
func (h *Handler) Reset() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}

// Len returns the number of bindings.
func (h *Handler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Handle runs the callback bound to e, if any, and reports whether e was
// consumed.
func (h *Handler) Handle(e event.Event) bool {
	if e.Type != event.KeyDown {
		return false
	}
	h.mu.Lock()
	var hit *entry
	for i := range h.entries {
		if h.entries[i].binding.Matches(e) {
			hit = &h.entries[i]
			break
		}
	}
	var cb func()
	var name string
	if hit != nil {
		cb, name = hit.callback, hit.name
	}
	h.mu.Unlock()

	if cb == nil {
		return false
	}
	h.logger.Debug("shortcut triggered", "action", name, "key", e.Key)
	cb()
	return true
}
