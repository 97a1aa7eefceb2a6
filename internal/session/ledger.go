package session

import "time"

// HistoryEntry is one successful transform result. Entries are immutable and
// never removed during a session.
type HistoryEntry struct {
	ID        string
	Image     EncodedImage
	Thumb     *EncodedImage
	Mode      string
	Prompt    string
	CreatedAt time.Time
}

// Ledger is the append-only record of past results, newest first. Ordering is
// strictly by insertion, never by wall-clock sort, so clock skew cannot
// reorder entries. The zero value is an empty ledger.
//
// The Ledger has no lock of its own: appends only happen from the
// Processing -> Succeeded transition, which the Store already serializes.
type Ledger struct {
	// entries is kept oldest-first internally so an append is O(1); readers
	// get the newest-first view.
	entries []HistoryEntry
}

// append records a new result as the most recent entry.
func (l *Ledger) append(e HistoryEntry) {
	l.entries = append(l.entries, e)
}

// clear empties the ledger. Only Reset uses this.
func (l *Ledger) clear() {
	l.entries = nil
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Get looks up an entry by ID.
func (l *Ledger) Get(id string) (HistoryEntry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// Entries returns a copy of the ledger, newest first.
func (l *Ledger) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
