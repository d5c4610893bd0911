package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"gorm.io/gorm"
)

// AvailabilityService manages a member's availability slots.
type AvailabilityService struct {
	db     *gorm.DB
	notify Notifier
}

func NewAvailabilityService(db *gorm.DB, notify Notifier) *AvailabilityService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &AvailabilityService{db: db, notify: notify}
}

// validateSlotWindow checks length bounds and that the slot starts within
// the hangout's remaining window.
func validateSlotWindow(hangout *models.Hangout, start, end time.Time) error {
	length := end.Sub(start)
	if length < models.MinSlotLength || length > models.MaxSlotLength {
		return errValidation("Slot must be between 1 and 24 hours long.")
	}
	conclusion := hangout.Conclusion()
	if start.Before(conclusion) {
		return errValidation("Slot must start after the hangout concludes.")
	}
	if start.After(conclusion.Add(models.SlotWindowCeiling)) {
		return errValidation("Slot must start within 6 months of the hangout's conclusion.")
	}
	return nil
}

type slotConflictData struct {
	SlotID         uint      `json:"slotId"`
	StartTimestamp time.Time `json:"startTimestamp"`
	EndTimestamp   time.Time `json:"endTimestamp"`
}

// Add inserts a new slot for the calling member.
func (s *AvailabilityService) Add(hangoutID string, identity models.Identity, start, end time.Time) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		member, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if err := validateSlotWindow(hangout, start, end); err != nil {
			return err
		}

		var existing []models.AvailabilitySlot
		if err := tx.Find(&existing, "hangout_member_id = ?", member.ID).Error; err != nil {
			return err
		}
		if len(existing) >= models.MaxSlotsPerMember {
			return errConflict(ReasonSlotLimit, fmt.Sprintf("No more than %d slots per member.", models.MaxSlotsPerMember))
		}
		if conflict := findSlotConflict(existing, start, end, 0); conflict != nil {
			return errConflictData(ReasonSlotOverlap, "Slot overlaps an existing slot.", slotConflictData{
				SlotID:         conflict.ID,
				StartTimestamp: conflict.StartTimestamp,
				EndTimestamp:   conflict.EndTimestamp,
			})
		}

		slot = models.AvailabilitySlot{
			HangoutMemberID: member.ID,
			HangoutID:       hangoutID,
			StartTimestamp:  start,
			EndTimestamp:    end,
		}
		return tx.Create(&slot).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("availabilitySlot", "slotAdded", slot))
	return &slot, nil
}

// Update rewrites a slot's window, excluding the slot itself from the
// conflict comparison.
func (s *AvailabilityService) Update(hangoutID string, identity models.Identity, slotID uint, start, end time.Time) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		member, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if err := tx.First(&slot, "id = ? AND hangout_member_id = ?", slotID, member.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Slot not found.")
			}
			return err
		}
		if err := validateSlotWindow(hangout, start, end); err != nil {
			return err
		}

		var existing []models.AvailabilitySlot
		if err := tx.Find(&existing, "hangout_member_id = ?", member.ID).Error; err != nil {
			return err
		}
		if conflict := findSlotConflict(existing, start, end, slot.ID); conflict != nil {
			return errConflictData(ReasonSlotOverlap, "Slot overlaps an existing slot.", slotConflictData{
				SlotID:         conflict.ID,
				StartTimestamp: conflict.StartTimestamp,
				EndTimestamp:   conflict.EndTimestamp,
			})
		}

		slot.StartTimestamp = start
		slot.EndTimestamp = end
		return tx.Save(&slot).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("availabilitySlot", "slotUpdated", slot))
	return &slot, nil
}

// Delete removes one slot of the calling member.
func (s *AvailabilityService) Delete(hangoutID string, identity models.Identity, slotID uint) error {
	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		member, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		res := tx.Delete(&models.AvailabilitySlot{}, "id = ? AND hangout_member_id = ?", slotID, member.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotFound("Slot not found.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("availabilitySlot", "slotDeleted", map[string]uint{"slotId": slotID}))
	return nil
}

// Clear bulk-deletes the member's slots.
func (s *AvailabilityService) Clear(hangoutID string, identity models.Identity) (int64, error) {
	var removed int64

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		member, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		res := tx.Delete(&models.AvailabilitySlot{}, "hangout_member_id = ?", member.ID)
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.notify(hangoutID, NewEvent("availabilitySlot", "slotsCleared", nil))
	}
	return removed, nil
}
