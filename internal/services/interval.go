package services

import (
	"sort"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
)

// slotConflictTolerance is how much two slots of one member may graze each
// other before they count as overlapping. Exact adjacency is permitted.
const slotConflictTolerance = time.Minute

// voteMinimumOverlap is the least shared time a voter's availability must
// have with a suggestion's slot for a vote to be valid.
const voteMinimumOverlap = time.Hour

// intersection returns how long the two half-open intervals share, zero if
// they are disjoint.
func intersection(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// findSlotConflict scans the member's slots in start order and returns the
// first one whose intersection with [start, end) reaches the tolerance.
// excludeID skips the slot being updated. The explicit sort keeps the result
// independent of query ordering.
func findSlotConflict(slots []models.AvailabilitySlot, start, end time.Time, excludeID uint) *models.AvailabilitySlot {
	sorted := make([]models.AvailabilitySlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTimestamp.Before(sorted[j].StartTimestamp)
	})

	for i := range sorted {
		if sorted[i].ID == excludeID {
			continue
		}
		if intersection(sorted[i].StartTimestamp, sorted[i].EndTimestamp, start, end) >= slotConflictTolerance {
			return &sorted[i]
		}
	}
	return nil
}

// hasMinimumOverlap reports whether any of the voter's slots shares at least
// voteMinimumOverlap with the suggestion's slot.
func hasMinimumOverlap(slots []models.AvailabilitySlot, start, end time.Time) bool {
	for i := range slots {
		if intersection(slots[i].StartTimestamp, slots[i].EndTimestamp, start, end) >= voteMinimumOverlap {
			return true
		}
	}
	return false
}
