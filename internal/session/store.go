package session

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Store owns one session's live state and serializes every transition under a
// single mutex. The guard check in BeginTransform and the flip to Processing
// happen inside the same critical section, so no two dispatches can both
// observe an eligible status and proceed.
//
// Completion is generation-checked: BeginTransform hands out a token and
// Reset invalidates it, so a call that straggles in after "start over" is
// dropped instead of stomping fresh state.
type Store struct {
	mu     sync.Mutex
	cur    Session
	ledger Ledger
	gen    uint64
}

// NewStore creates an empty session.
func NewStore() *Store {
	return &Store{cur: Session{Status: StatusIdle}}
}

// Snapshot returns a copy of the current session state.
func (st *Store) Snapshot() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cur
}

// View returns the session snapshot and the ledger contents, newest first,
// from one lock acquisition, so the pair is mutually consistent: a completion
// can never appear in the history of a view whose status still reads
// Processing.
func (st *Store) View() (Session, []HistoryEntry) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cur, st.ledger.Entries()
}

// History returns the ledger contents, newest first.
func (st *Store) History() []HistoryEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ledger.Entries()
}

// HistoryLen returns the number of ledger entries.
func (st *Store) HistoryLen() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ledger.Len()
}

// HistoryEntry looks up one ledger entry by ID.
func (st *Store) HistoryEntry(id string) (HistoryEntry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ledger.Get(id)
}

// SetOriginal installs a newly ingested image, clearing the previous result
// and error. The ledger is kept: earlier results remain viewable.
func (st *Store) SetOriginal(img EncodedImage) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cur = setOriginal(st.cur, img)
}

// SetPrompt records the background description text.
func (st *Store) SetPrompt(prompt string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cur = setPrompt(st.cur, prompt)
}

// BeginTransform atomically claims the single in-flight slot. On success it
// returns a completion token and a copy of the original image the transform
// should operate on. ErrTransformInFlight and ErrNoOriginal leave the session
// untouched.
func (st *Store) BeginTransform() (uint64, EncodedImage, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	next, err := beginTransform(st.cur)
	if err != nil {
		return 0, EncodedImage{}, err
	}
	st.cur = next
	st.gen++
	return st.gen, *st.cur.Original, nil
}

// CompleteTransform applies the success transition and appends the entry to
// the ledger in the same critical section. Returns false if the token is
// stale (the session was reset while the call was outstanding).
func (st *Store) CompleteTransform(token uint64, entry HistoryEntry) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if token != st.gen {
		log.Warn().Str("entry", entry.ID).Msg("Dropping stale transform result")
		return false
	}
	st.cur = completeTransform(st.cur, entry.Image)
	st.ledger.append(entry)
	return true
}

// FailTransform applies the failure transition. Returns false if the token is
// stale.
func (st *Store) FailTransform(token uint64, desc ErrorDescriptor) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if token != st.gen {
		log.Warn().Str("kind", desc.Kind).Msg("Dropping stale transform failure")
		return false
	}
	st.cur = failTransform(st.cur, desc)
	return true
}

// SelectFromHistory shows a past result. Status, error, and the ledger are
// untouched; no new entry is created.
func (st *Store) SelectFromHistory(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	entry, ok := st.ledger.Get(id)
	if !ok {
		return ErrNoSuchEntry
	}
	st.cur = selectProcessed(st.cur, entry.Image)
	return nil
}

// Reset clears everything back to the empty starting state, empties the
// ledger, and invalidates any outstanding completion token.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cur = resetSession(st.cur)
	st.ledger.clear()
	st.gen++
}
