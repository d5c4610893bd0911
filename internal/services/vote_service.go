package services

import (
	"errors"
	"fmt"

	"github.com/coolAppl3/hangoutio/internal/models"
	"gorm.io/gorm"
)

// VoteService enforces vote eligibility: voting stage only, no duplicates,
// per-member cap, and the minimum-overlap rule against the voter's
// availability.
type VoteService struct {
	db     *gorm.DB
	notify Notifier
}

func NewVoteService(db *gorm.DB, notify Notifier) *VoteService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &VoteService{db: db, notify: notify}
}

// Add casts a vote for a suggestion.
func (s *VoteService) Add(hangoutID string, identity models.Identity, suggestionID uint) (*models.Vote, error) {
	var vote models.Vote

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.CurrentStage != models.StageVoting {
			return errConflict(ReasonWrongStage, "Votes can only be cast during the voting stage.")
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

		var duplicate int64
		if err := tx.Model(&models.Vote{}).
			Where("hangout_member_id = ? AND suggestion_id = ?", member.ID, suggestion.ID).
			Count(&duplicate).Error; err != nil {
			return err
		}
		if duplicate > 0 {
			return errConflict(ReasonDuplicateVote, "Already voted for this suggestion.")
		}

		var total int64
		if err := tx.Model(&models.Vote{}).Where("hangout_member_id = ?", member.ID).Count(&total).Error; err != nil {
			return err
		}
		if total >= models.MaxVotesPerMember {
			return errConflict(ReasonVoteCap, fmt.Sprintf("No more than %d votes per member.", models.MaxVotesPerMember))
		}

		var slots []models.AvailabilitySlot
		if err := tx.Find(&slots, "hangout_member_id = ?", member.ID).Error; err != nil {
			return err
		}
		if !hasMinimumOverlap(slots, suggestion.StartTimestamp, suggestion.EndTimestamp) {
			return errConflict(ReasonNotEligible, "None of your availability slots overlaps this suggestion by at least an hour.")
		}

		vote = models.Vote{
			HangoutMemberID: member.ID,
			SuggestionID:    suggestion.ID,
			HangoutID:       hangoutID,
		}
		return tx.Create(&vote).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("vote", "voteAdded", vote))
	return &vote, nil
}

// Remove retracts the caller's vote for a suggestion.
func (s *VoteService) Remove(hangoutID string, identity models.Identity, suggestionID uint) error {
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
		res := tx.Delete(&models.Vote{}, "hangout_member_id = ? AND suggestion_id = ?", member.ID, suggestionID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotFound("Vote not found.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("vote", "voteRemoved", map[string]uint{"suggestionId": suggestionID}))
	return nil
}
