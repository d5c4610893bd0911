package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"gorm.io/gorm"
)

// SuggestionService manages stage-gated suggestion CRUD.
type SuggestionService struct {
	db     *gorm.DB
	notify Notifier
}

func NewSuggestionService(db *gorm.DB, notify Notifier) *SuggestionService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &SuggestionService{db: db, notify: notify}
}

func validateSuggestionInput(hangout *models.Hangout, title, description string, start, end time.Time) error {
	if len(title) < 3 || len(title) > 40 {
		return errValidation("Title must be 3 to 40 characters.")
	}
	if len(description) < 10 || len(description) > 500 {
		return errValidation("Description must be 10 to 500 characters.")
	}
	return validateSlotWindow(hangout, start, end)
}

// Add creates a suggestion; only while the hangout is in the suggestions
// stage, and no more than three live suggestions per member.
func (s *SuggestionService) Add(hangoutID string, identity models.Identity, title, description string, start, end time.Time) (*models.Suggestion, error) {
	var suggestion models.Suggestion

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.CurrentStage != models.StageSuggestions {
			return errConflict(ReasonWrongStage, "Suggestions can only be added during the suggestions stage.")
		}
		member, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if err := validateSuggestionInput(hangout, title, description, start, end); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Suggestion{}).Where("hangout_member_id = ?", member.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxSuggestionsPerMember {
			return errConflict(ReasonSuggestionCap, fmt.Sprintf("No more than %d suggestions per member.", models.MaxSuggestionsPerMember))
		}

		memberID := member.ID
		suggestion = models.Suggestion{
			HangoutMemberID: &memberID,
			HangoutID:       hangoutID,
			Title:           title,
			Description:     description,
			StartTimestamp:  start,
			EndTimestamp:    end,
		}
		return tx.Create(&suggestion).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("suggestion", "suggestionAdded", suggestion))
	return &suggestion, nil
}

// Update edits the caller's own suggestion; allowed until conclusion. A
// title change during the voting stage deletes every vote already cast for
// it, since the title is the identity voters relied on.
func (s *SuggestionService) Update(hangoutID string, identity models.Identity, suggestionID uint, title, description string, start, end time.Time) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	votesInvalidated := false

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
		if err := tx.First(&suggestion, "id = ? AND hangout_id = ?", suggestionID, hangoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Suggestion not found.")
			}
			return err
		}
		if suggestion.HangoutMemberID == nil || *suggestion.HangoutMemberID != member.ID {
			return errNotFound("Suggestion not found.")
		}
		if err := validateSuggestionInput(hangout, title, description, start, end); err != nil {
			return err
		}

		if hangout.CurrentStage == models.StageVoting && suggestion.Title != title {
			if err := tx.Delete(&models.Vote{}, "suggestion_id = ?", suggestion.ID).Error; err != nil {
				return err
			}
			votesInvalidated = true
		}

		suggestion.Title = title
		suggestion.Description = description
		suggestion.StartTimestamp = start
		suggestion.EndTimestamp = end
		suggestion.IsEdited = true
		if err := tx.Save(&suggestion).Error; err != nil {
			return err
		}
		if votesInvalidated {
			return appendEvent(tx, hangoutID,
				fmt.Sprintf("Suggestion %s was renamed during voting; its votes were reset.", title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reason := "suggestionUpdated"
	if votesInvalidated {
		reason = "suggestionUpdatedVotesReset"
	}
	s.notify(hangoutID, NewEvent("suggestion", reason, suggestion))
	return &suggestion, nil
}

// Delete removes a suggestion and its votes. Members delete their own; the
// leader may delete any.
func (s *SuggestionService) Delete(hangoutID string, identity models.Identity, suggestionID uint) error {
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
		var suggestion models.Suggestion
		if err := tx.First(&suggestion, "id = ? AND hangout_id = ?", suggestionID, hangoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Suggestion not found.")
			}
			return err
		}
		owns := suggestion.HangoutMemberID != nil && *suggestion.HangoutMemberID == member.ID
		if !owns && !member.IsLeader {
			return errNotFound("Suggestion not found.")
		}

		if err := tx.Delete(&models.Vote{}, "suggestion_id = ?", suggestion.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&suggestion).Error
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("suggestion", "suggestionDeleted", map[string]uint{"suggestionId": suggestionID}))
	return nil
}

// List returns the hangout's suggestions with their vote counts.
func (s *SuggestionService) List(hangoutID string, identity models.Identity) ([]models.Suggestion, map[uint]int64, error) {
	if _, err := memberOf(s.db, hangoutID, identity); err != nil {
		return nil, nil, err
	}

	var suggestions []models.Suggestion
	if err := s.db.Order("start_timestamp ASC").Find(&suggestions, "hangout_id = ?", hangoutID).Error; err != nil {
		return nil, nil, err
	}

	type voteCount struct {
		SuggestionID uint
		Count        int64
	}
	var counts []voteCount
	if err := s.db.Model(&models.Vote{}).
		Select("suggestion_id, COUNT(*) AS count").
		Where("hangout_id = ?", hangoutID).
		Group("suggestion_id").
		Scan(&counts).Error; err != nil {
		return nil, nil, err
	}

	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.SuggestionID] = c.Count
	}
	return suggestions, byID, nil
}
