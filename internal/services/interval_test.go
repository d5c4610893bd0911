package services

import (
	"testing"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
)

var intervalBase = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time { return intervalBase.Add(offset) }

func TestIntersection(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Duration
		want                       time.Duration
	}{
		{"disjoint", 0, time.Hour, 2 * time.Hour, 3 * time.Hour, 0},
		{"adjacent", 0, time.Hour, time.Hour, 2 * time.Hour, 0},
		{"partial", 0, 2 * time.Hour, time.Hour, 3 * time.Hour, time.Hour},
		{"nested", 0, 4 * time.Hour, time.Hour, 2 * time.Hour, time.Hour},
		{"identical", 0, time.Hour, 0, time.Hour, time.Hour},
		{"reversed args", time.Hour, 3 * time.Hour, 0, 2 * time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intersection(at(tt.aStart), at(tt.aEnd), at(tt.bStart), at(tt.bEnd))
			if got != tt.want {
				t.Errorf("intersection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindSlotConflict(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{ID: 1, StartTimestamp: at(0), EndTimestamp: at(2 * time.Hour)},
		{ID: 2, StartTimestamp: at(5 * time.Hour), EndTimestamp: at(7 * time.Hour)},
	}

	// Exact adjacency is not a conflict.
	if c := findSlotConflict(slots, at(2*time.Hour), at(4*time.Hour), 0); c != nil {
		t.Errorf("adjacent slot reported as conflict with slot %d", c.ID)
	}

	// A graze under the tolerance passes.
	if c := findSlotConflict(slots, at(2*time.Hour-30*time.Second), at(4*time.Hour), 0); c != nil {
		t.Errorf("sub-tolerance graze reported as conflict with slot %d", c.ID)
	}

	// Exactly at the tolerance is a conflict.
	c := findSlotConflict(slots, at(2*time.Hour-time.Minute), at(4*time.Hour), 0)
	if c == nil {
		t.Fatal("tolerance-touching slot not reported as conflict")
	}
	if c.ID != 1 {
		t.Errorf("conflict = slot %d, want slot 1", c.ID)
	}

	// The slot being updated is excluded from the comparison.
	if c := findSlotConflict(slots, at(time.Hour), at(3*time.Hour), 1); c != nil {
		t.Errorf("excluded slot %d still reported as conflict", c.ID)
	}

	// The earliest conflicting slot wins regardless of input order.
	reversed := []models.AvailabilitySlot{slots[1], slots[0]}
	c = findSlotConflict(reversed, at(time.Hour), at(6*time.Hour), 0)
	if c == nil || c.ID != 1 {
		t.Errorf("conflict = %+v, want slot 1", c)
	}
}

func TestHasMinimumOverlap(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{ID: 1, StartTimestamp: at(0), EndTimestamp: at(90 * time.Minute)},
	}

	if !hasMinimumOverlap(slots, at(0), at(4*time.Hour)) {
		t.Error("90 minute overlap rejected")
	}
	if hasMinimumOverlap(slots, at(80*time.Minute), at(4*time.Hour)) {
		t.Error("10 minute overlap accepted")
	}
	// Exactly one hour counts.
	if !hasMinimumOverlap(slots, at(30*time.Minute), at(4*time.Hour)) {
		t.Error("exact one hour overlap rejected")
	}
}
