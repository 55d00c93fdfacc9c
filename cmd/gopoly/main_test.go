package main

import (
	"fmt"
	"testing"

	"github.com/jdelaney/gopoly/pkg/types"
)

// ring builds n consecutive entries starting at id e<start>, the shape of
// the reducer's bounded event log.
func ring(start, n int) []types.LogEntry {
	out := make([]types.LogEntry, 0, n)
	for i := start; i < start+n; i++ {
		out = append(out, types.LogEntry{ID: fmt.Sprintf("e%d", i), Message: fmt.Sprintf("event %d", i)})
	}
	return out
}

func TestNewEntries_GrowingLog(t *testing.T) {
	var last string

	got := newEntries(ring(0, 3), &last)
	if len(got) != 3 {
		t.Fatalf("want all 3 on first read, got %d", len(got))
	}

	got = newEntries(ring(0, 5), &last)
	if len(got) != 2 || got[0].ID != "e3" || got[1].ID != "e4" {
		t.Fatalf("want [e3 e4], got %+v", got)
	}

	got = newEntries(ring(0, 5), &last)
	if len(got) != 0 {
		t.Fatalf("nothing new; got %d entries", len(got))
	}
}

func TestNewEntries_AdvancesAcrossFullRing(t *testing.T) {
	var last string

	full := ring(0, 50)
	if got := newEntries(full, &last); len(got) != 50 {
		t.Fatalf("want all 50 on first read, got %d", len(got))
	}

	// Ring at capacity: e0 rolled off, e50 appended, length unchanged.
	advanced := ring(1, 50)
	got := newEntries(advanced, &last)
	if len(got) != 1 || got[0].ID != "e50" {
		t.Fatalf("want exactly [e50], got %+v", got)
	}

	// Several updates at once while still full.
	jumped := ring(4, 50)
	got = newEntries(jumped, &last)
	if len(got) != 3 || got[0].ID != "e51" || got[2].ID != "e53" {
		t.Fatalf("want [e51 e52 e53], got %+v", got)
	}
}

func TestNewEntries_CursorRolledOffPrintsEverything(t *testing.T) {
	last := "e0"

	// The printed entry fell out of the ring; everything present is newer.
	got := newEntries(ring(10, 5), &last)
	if len(got) != 5 {
		t.Fatalf("want all 5 when the cursor is gone, got %d", len(got))
	}
	if last != "e14" {
		t.Fatalf("cursor not advanced, got %q", last)
	}
}

func TestNewEntries_EmptyLog(t *testing.T) {
	var last string
	if got := newEntries(nil, &last); len(got) != 0 {
		t.Fatalf("want nothing from an empty log, got %d", len(got))
	}
}
