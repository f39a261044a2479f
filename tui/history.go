// Package tui provides a Bubble Tea terminal UI for the DungeonMaster
// engine.
package tui

// History remembers submitted commands for Up/Down recall. A cursor of
// -1 means the player is typing fresh input; otherwise it indexes the
// entry currently shown.
type History struct {
	entries []string
	max     int
	cursor  int
}

// NewHistory creates a history buffer holding at most max entries.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a submitted command. Repeating the previous command adds
// nothing; the oldest entry is dropped once the buffer is full.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev steps toward older entries, reporting false on an empty buffer.
// At the oldest entry it stays put.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps toward newer entries. Stepping past the newest leaves
// navigation and reports false so the input line can be cleared.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}
