package services

import (
	"fmt"
	"log"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"gorm.io/gorm"
)

// StageService drives hangouts through Availability, Suggestions, Voting and
// Concluded, either from the scheduled sweep or a leader's manual advance.
type StageService struct {
	db     *gorm.DB
	notify Notifier
}

func NewStageService(db *gorm.DB, notify Notifier) *StageService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &StageService{db: db, notify: notify}
}

// advanceTx moves the hangout one stage forward. For a manual advance the
// current stage's period is rewritten to the time actually elapsed, so the
// projected conclusion moves up without touching already-elapsed stages.
// Slots and suggestions now dated before the new conclusion are purged, and
// an audit event records the projection.
func advanceTx(tx *gorm.DB, hangout *models.Hangout, now time.Time, manual bool) error {
	if hangout.IsConcluded || hangout.CurrentStage >= models.StageConcluded {
		return errConflict(ReasonConcluded, "Hangout has already concluded.")
	}

	if manual {
		elapsed := now.Sub(hangout.StageStartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		switch hangout.CurrentStage {
		case models.StageAvailability:
			hangout.AvailabilityPeriod = elapsed
		case models.StageSuggestions:
			hangout.SuggestionsPeriod = elapsed
		case models.StageVoting:
			hangout.VotingPeriod = elapsed
		}
	}

	hangout.CurrentStage++
	hangout.StageStartedAt = now
	if hangout.CurrentStage == models.StageConcluded {
		hangout.IsConcluded = true
	}
	if err := tx.Save(hangout).Error; err != nil {
		return err
	}

	conclusion := hangout.Conclusion()

	var staleSuggestionIDs []uint
	if err := tx.Model(&models.Suggestion{}).
		Where("hangout_id = ? AND start_timestamp < ?", hangout.ID, conclusion).
		Pluck("id", &staleSuggestionIDs).Error; err != nil {
		return err
	}
	if len(staleSuggestionIDs) > 0 {
		if err := tx.Delete(&models.Vote{}, "suggestion_id IN ?", staleSuggestionIDs).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Suggestion{}, "id IN ?", staleSuggestionIDs).Error; err != nil {
			return err
		}
	}
	if err := tx.Delete(&models.AvailabilitySlot{}, "hangout_id = ? AND start_timestamp < ?", hangout.ID, conclusion).Error; err != nil {
		return err
	}

	description := fmt.Sprintf("Hangout progressed to the %s stage. Conclusion projected at %s.",
		stageName(hangout.CurrentStage), conclusion.UTC().Format(time.RFC3339))
	if hangout.IsConcluded {
		description = fmt.Sprintf("Hangout concluded at %s.", conclusion.UTC().Format(time.RFC3339))
	}
	return appendEvent(tx, hangout.ID, description)
}

func stageName(stage int) string {
	switch stage {
	case models.StageAvailability:
		return "availability"
	case models.StageSuggestions:
		return "suggestions"
	case models.StageVoting:
		return "voting"
	case models.StageConcluded:
		return "concluded"
	}
	return "unknown"
}

// ProgressDue advances every hangout whose current stage has run out.
// Idempotent: advancing resets the stage clock, so an immediate re-run finds
// nothing due. Must run from exactly one active scheduler.
func (s *StageService) ProgressDue(now time.Time) (int, error) {
	var candidates []models.Hangout
	if err := s.db.Find(&candidates, "is_concluded = ?", false).Error; err != nil {
		return 0, err
	}

	advanced := 0
	for i := range candidates {
		if now.Before(candidates[i].StageDueAt()) {
			continue
		}
		hangoutID := candidates[i].ID
		var fresh models.Hangout

		err := serializable(s.db, func(tx *gorm.DB) error {
			if err := tx.First(&fresh, "id = ?", hangoutID).Error; err != nil {
				return err
			}
			// Re-check under the transaction; another advance may have won.
			if fresh.IsConcluded || now.Before(fresh.StageDueAt()) {
				return nil
			}
			return advanceTx(tx, &fresh, now, false)
		})
		if err != nil {
			log.Printf("stage sweep: failed to advance hangout %s: %v", hangoutID, err)
			continue
		}
		if fresh.StageStartedAt.Equal(now) {
			advanced++
			s.notify(hangoutID, NewEvent("hangout", "stageAdvanced", fresh))
		}
	}
	return advanced, nil
}

// Progress is the leader's manual early advance. Leaving Suggestions
// requires at least one suggestion to vote on.
func (s *StageService) Progress(hangoutID string, identity models.Identity) (*models.Hangout, error) {
	var hangout *models.Hangout

	err := serializable(s.db, func(tx *gorm.DB) error {
		h, _, err := requireLeader(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		hangout = h

		if hangout.CurrentStage == models.StageSuggestions {
			var count int64
			if err := tx.Model(&models.Suggestion{}).Where("hangout_id = ?", hangoutID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return errConflict(ReasonWrongStage, "Cannot leave the suggestions stage without any suggestions.")
			}
		}
		return advanceTx(tx, hangout, time.Now(), true)
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("hangout", "stageAdvanced", hangout))
	return hangout, nil
}
