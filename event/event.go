// Package event captures intern-lifecycle observations for offline analysis.
// Capture is off by default; when off, the only cost paid by the interning
// paths is a single atomic load. Records are drained with Snapshot and dumped
// as JSON (see cmd/atomevents, cmd/atomsummary).
package event

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/sugawarayuuta/sonnet"
)

// Record is one observation. Event is "intern", "insert" or "remove"; ID is
// the packed atom word (intern) or the entry address (insert/remove); Str is
// the interned text, present on insert only.
type Record struct {
	Event string `json:"event"`
	ID    uint64 `json:"id"`
	Str   string `json:"string,omitempty"`
}

var (
	enabled atomic.Bool

	mu      sync.Mutex
	capture []Record
)

// Enable turns capture on.
func Enable() { enabled.Store(true) }

// Disable turns capture off. Already-captured records are kept.
func Disable() { enabled.Store(false) }

// Enabled reports whether capture is on. Hot paths gate on this before
// building a record.
func Enabled() bool { return enabled.Load() }

// Intern records an intern resolving to packed word id.
func Intern(id uint64) { push(Record{Event: "intern", ID: id}) }

// Insert records a freshly allocated dynamic entry.
func Insert(id uint64, s string) { push(Record{Event: "insert", ID: id, Str: s}) }

// Remove records a dynamic entry being unlinked and freed.
func Remove(id uint64) { push(Record{Event: "remove", ID: id}) }

func push(r Record) {
	if !enabled.Load() {
		return
	}
	mu.Lock()
	capture = append(capture, r)
	mu.Unlock()
}

// Snapshot copies out everything captured so far.
func Snapshot() []Record {
	mu.Lock()
	out := make([]Record, len(capture))
	copy(out, capture)
	mu.Unlock()
	return out
}

// Reset discards all captured records.
func Reset() {
	mu.Lock()
	capture = capture[:0]
	mu.Unlock()
}

// WriteJSON dumps a snapshot to path as a JSON array.
func WriteJSON(path string) error {
	b, err := sonnet.Marshal(Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
