package plugin

import (
	"sync"

	"github.com/biplobsd/battrate/pkg/powerrate"
)

// DataHolder keeps the latest reading. Only the latest value exists;
// readers may see a stale one between refreshes.
type DataHolder struct {
	mu        sync.RWMutex
	reading   powerrate.Reading
	populated bool
}

// Set replaces the latest reading.
func (h *DataHolder) Set(r powerrate.Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reading = r
	h.populated = true
}

// Reading returns the latest reading and whether one was ever set.
func (h *DataHolder) Reading() (powerrate.Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.reading, h.populated
}

// Display returns the latest display string, empty before the first refresh.
func (h *DataHolder) Display() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.reading.Display
}

// setDefault seeds the holder with a display string without marking it
// populated.
func (h *DataHolder) setDefault(display string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.populated {
		h.reading.Display = display
	}
}
