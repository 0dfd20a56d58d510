package nav

// History is a browser-like navigation stack. Push appends an entry and
// drops anything forward of the cursor; Replace overwrites the current
// entry so Back skips it.
type History struct {
	entries []Location
	cursor  int
}

// NewHistory starts a history at initial.
func NewHistory(initial Location) *History {
	return &History{entries: []Location{initial.Clone()}}
}

// Current returns a copy of the active location.
func (h *History) Current() Location {
	if len(h.entries) == 0 {
		return Location{Path: "/"}
	}
	return h.entries[h.cursor].Clone()
}

// Push makes loc the current entry on top of the existing ones.
func (h *History) Push(loc Location) {
	h.entries = append(h.entries[:h.cursor+1], loc.Clone())
	h.cursor = len(h.entries) - 1
}

// Replace overwrites the current entry with loc.
func (h *History) Replace(loc Location) {
	if len(h.entries) == 0 {
		h.entries = []Location{loc.Clone()}
		h.cursor = 0
		return
	}
	h.entries[h.cursor] = loc.Clone()
}

// Back moves to the previous entry. It reports false at the start.
func (h *History) Back() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

// Forward moves to the next entry if one exists.
func (h *History) Forward() bool {
	if h.cursor >= len(h.entries)-1 {
		return false
	}
	h.cursor++
	return true
}

// Len is the number of entries up to and including the current one.
func (h *History) Len() int { return h.cursor + 1 }
