package main

// ---------------------------------------------------------------------------
// Reusable form helpers
// ---------------------------------------------------------------------------
// Lightweight building blocks for the modal and full-screen forms: a text
// field with cursor-aware editing and a focus cycler. Every form composes
// these instead of re-implementing key handling.

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// textField bundles a string value with its cursor position. Secret fields
// set Mask and render as bullets.
type textField struct {
	Value  string
	Cursor int
	Mask   bool
}

// handleKey processes a single key event. Returns true if the key was
// consumed (printable input, backspace, or cursor movement).
func (f *textField) handleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "backspace":
		if f.Cursor > 0 {
			runes := []rune(f.Value)
			f.Value = string(runes[:f.Cursor-1]) + string(runes[f.Cursor:])
			f.Cursor--
		}
		return true
	case "left":
		if f.Cursor > 0 {
			f.Cursor--
		}
		return true
	case "right":
		if f.Cursor < utf8.RuneCountInString(f.Value) {
			f.Cursor++
		}
		return true
	case "home":
		f.Cursor = 0
		return true
	case "end":
		f.Cursor = utf8.RuneCountInString(f.Value)
		return true
	}
	return f.insert(msg.String())
}

func (f *textField) insert(key string) bool {
	runes := []rune(key)
	if len(runes) != 1 || !unicode.IsPrint(runes[0]) {
		return false
	}
	value := []rune(f.Value)
	out := make([]rune, 0, len(value)+1)
	out = append(out, value[:f.Cursor]...)
	out = append(out, runes[0])
	out = append(out, value[f.Cursor:]...)
	f.Value = string(out)
	f.Cursor++
	return true
}

// set replaces the value and places the cursor at the end.
func (f *textField) set(value string) {
	f.Value = value
	f.Cursor = utf8.RuneCountInString(value)
}

// render returns the display text, with a cursor marker when focused.
func (f *textField) render(focused bool) string {
	text := f.Value
	if f.Mask {
		text = strings.Repeat("•", utf8.RuneCountInString(f.Value))
	}
	if !focused {
		return text
	}
	runes := []rune(text)
	cursor := f.Cursor
	if cursor > len(runes) {
		cursor = len(runes)
	}
	return string(runes[:cursor]) + "▏" + string(runes[cursor:])
}

// formNav provides shared focus-cycling for forms with a fixed number of
// fields. Up/down (and shift+tab/tab) move focus.
type formNav struct {
	Count int
	Idx   int
}

// handleNav processes a navigation key. Returns true if focus changed.
func (n *formNav) handleNav(msg tea.KeyMsg) bool {
	if n.Count == 0 {
		return false
	}
	switch msg.String() {
	case "down", "tab":
		n.Idx = (n.Idx + 1) % n.Count
		return true
	case "up", "shift+tab":
		n.Idx = (n.Idx - 1 + n.Count) % n.Count
		return true
	}
	return false
}
