package domain

import (
	"testing"

	"pgregory.net/rapid"
)

func TestProperty_NextIsAlwaysSuccessor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := EventID(rapid.Int64Min(0).Draw(t, "id"))
		next := id.Next()

		if !next.IsNextOf(id) {
			t.Fatalf("EventID(%d).Next() = %d is not IsNextOf its predecessor", id, next)
		}
		if c := id.Compare(next); c != -1 {
			t.Fatalf("EventID(%d).Compare(next %d) = %d, want -1", id, next, c)
		}
		if c := next.Compare(id); c != 1 {
			t.Fatalf("next EventID(%d).Compare(%d) = %d, want 1", next, id, c)
		}
	})
}

func TestProperty_IsNextOfRejectsNonSuccessors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := EventID(rapid.Int64Range(0, int64(MaxEventID)-1001).Draw(t, "id"))
		gap := EventID(rapid.Int64Range(2, 1000).Draw(t, "gap"))
		ahead := id + gap

		if ahead.IsNextOf(id) {
			t.Fatalf("EventID(%d).IsNextOf(%d) = true for gap %d", ahead, id, gap)
		}
		if id.IsNextOf(id) {
			t.Fatalf("EventID(%d).IsNextOf itself = true", id)
		}
	})
}
