package session

import (
	"testing"
	"time"
)

func TestLedgerZeroValueIsEmpty(t *testing.T) {
	var l Ledger
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if got := l.Entries(); len(got) != 0 {
		t.Errorf("Entries() length = %d, want 0", len(got))
	}
}

func TestLedgerEntriesNewestFirst(t *testing.T) {
	var l Ledger
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		l.append(HistoryEntry{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Second)})
	}

	got := l.Entries()
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Entries()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}

	// Insertion order wins even if wall clocks are skewed.
	l.append(HistoryEntry{ID: "d", CreatedAt: base.Add(-time.Hour)})
	if got := l.Entries(); got[0].ID != "d" {
		t.Errorf("Entries()[0].ID = %q, want %q (insertion order, not timestamp)", got[0].ID, "d")
	}
}

func TestLedgerGet(t *testing.T) {
	var l Ledger
	l.append(HistoryEntry{ID: "a", Mode: "remove"})

	e, ok := l.Get("a")
	if !ok || e.Mode != "remove" {
		t.Errorf("Get(a) = %+v, %v; want remove entry, true", e, ok)
	}
	if _, ok := l.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
}
