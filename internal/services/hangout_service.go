package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"gorm.io/gorm"
)

// HangoutService owns hangout creation, leader-only settings updates and
// deletion, plus the read side.
type HangoutService struct {
	db     *gorm.DB
	notify Notifier
}

func NewHangoutService(db *gorm.DB, notify Notifier) *HangoutService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &HangoutService{db: db, notify: notify}
}

// CreateHangoutInput carries the already-validated request payload.
type CreateHangoutInput struct {
	Title              string
	Password           string // optional
	MembersLimit       int
	AvailabilityPeriod time.Duration
	SuggestionsPeriod  time.Duration
	VotingPeriod       time.Duration
}

func validPeriod(p time.Duration) bool {
	return p >= models.MinStagePeriod && p <= models.MaxStagePeriod
}

// Create builds the hangout and its leader member in one transaction. Only
// registered accounts create hangouts; guests join existing ones.
func (s *HangoutService) Create(accountID uint, input CreateHangoutInput) (*models.Hangout, *models.HangoutMember, error) {
	if len(input.Title) < 3 || len(input.Title) > 25 {
		return nil, nil, errValidation("Title must be 3 to 25 characters.")
	}
	if input.MembersLimit < models.MinMembersLimit || input.MembersLimit > models.MaxMembersLimit {
		return nil, nil, errValidation(fmt.Sprintf("Members limit must be between %d and %d.", models.MinMembersLimit, models.MaxMembersLimit))
	}
	if !validPeriod(input.AvailabilityPeriod) || !validPeriod(input.SuggestionsPeriod) || !validPeriod(input.VotingPeriod) {
		return nil, nil, errValidation("Each stage period must be between 1 and 14 days.")
	}

	var passwordHash *string
	if input.Password != "" {
		if err := utils.ValidatePassword(input.Password); err != nil {
			return nil, nil, errValidation(err.Error())
		}
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, nil, err
		}
		passwordHash = &hashed
	}

	hangout := models.Hangout{
		ID:                 utils.GenerateHangoutID(),
		Title:              input.Title,
		PasswordHash:       passwordHash,
		MembersLimit:       input.MembersLimit,
		AvailabilityPeriod: input.AvailabilityPeriod,
		SuggestionsPeriod:  input.SuggestionsPeriod,
		VotingPeriod:       input.VotingPeriod,
		CurrentStage:       models.StageAvailability,
		StageStartedAt:     time.Now(),
	}
	var leader models.HangoutMember

	err := serializable(s.db, func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAuth(ReasonAuthRequired, "Sign in required.")
			}
			return err
		}

		var ongoing int64
		if err := tx.Model(&models.HangoutMember{}).
			Joins("JOIN hangouts ON hangouts.id = hangout_members.hangout_id").
			Where("hangout_members.user_kind = ? AND hangout_members.user_id = ? AND hangouts.is_concluded = ?",
				models.UserKindAccount, accountID, false).
			Count(&ongoing).Error; err != nil {
			return err
		}
		if ongoing >= models.OngoingHangoutsLimit {
			return errConflict(ReasonOngoingLimit, "Ongoing hangouts limit reached.")
		}

		if err := tx.Create(&hangout).Error; err != nil {
			return err
		}
		leader = models.HangoutMember{
			HangoutID:   hangout.ID,
			UserKind:    models.UserKindAccount,
			UserID:      accountID,
			DisplayName: account.DisplayName,
			IsLeader:    true,
		}
		if err := tx.Create(&leader).Error; err != nil {
			return err
		}
		return appendEvent(tx, hangout.ID, fmt.Sprintf("%s created the hangout.", leader.DisplayName))
	})
	if err != nil {
		return nil, nil, err
	}
	return &hangout, &leader, nil
}

// requireLeader loads the hangout and verifies the caller leads it.
func requireLeader(tx *gorm.DB, hangoutID string, identity models.Identity) (*models.Hangout, *models.HangoutMember, error) {
	hangout, err := hangoutForUpdate(tx, hangoutID)
	if err != nil {
		return nil, nil, err
	}
	member, err := memberOf(tx, hangoutID, identity)
	if err != nil {
		return nil, nil, err
	}
	if !member.IsLeader {
		return nil, nil, errForbidden(ReasonNotLeader, "Only the hangout leader can do this.")
	}
	return hangout, member, nil
}

// Delete removes the hangout entirely; leaders only.
func (s *HangoutService) Delete(hangoutID string, identity models.Identity) error {
	err := serializable(s.db, func(tx *gorm.DB) error {
		_, _, err := requireLeader(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		return deleteHangoutTx(tx, hangoutID)
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "hangoutDeleted", nil))
	return nil
}

// UpdateTitle renames the hangout; leaders only.
func (s *HangoutService) UpdateTitle(hangoutID string, identity models.Identity, title string) error {
	if len(title) < 3 || len(title) > 25 {
		return errValidation("Title must be 3 to 25 characters.")
	}
	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, member, err := requireLeader(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		hangout.Title = title
		if err := tx.Save(hangout).Error; err != nil {
			return err
		}
		return appendEvent(tx, hangoutID, fmt.Sprintf("%s renamed the hangout to %s.", member.DisplayName, title))
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "titleUpdated", map[string]string{"title": title}))
	return nil
}

// UpdatePassword sets or clears the hangout password; leaders only.
func (s *HangoutService) UpdatePassword(hangoutID string, identity models.Identity, newPassword string) error {
	var passwordHash *string
	if newPassword != "" {
		if err := utils.ValidatePassword(newPassword); err != nil {
			return errValidation(err.Error())
		}
		hashed, err := utils.HashPassword(newPassword)
		if err != nil {
			return err
		}
		passwordHash = &hashed
	}

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, _, err := requireLeader(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		return tx.Model(hangout).Update("password_hash", passwordHash).Error
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "passwordUpdated", nil))
	return nil
}

// UpdateMembersLimit changes the capacity; never below the current member
// count.
func (s *HangoutService) UpdateMembersLimit(hangoutID string, identity models.Identity, limit int) error {
	if limit < models.MinMembersLimit || limit > models.MaxMembersLimit {
		return errValidation(fmt.Sprintf("Members limit must be between %d and %d.", models.MinMembersLimit, models.MaxMembersLimit))
	}
	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, member, err := requireLeader(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}

		var count int64
		if err := tx.Model(&models.HangoutMember{}).Where("hangout_id = ?", hangoutID).Count(&count).Error; err != nil {
			return err
		}
		if int64(limit) < count {
			return errConflict(ReasonValidation, "Members limit cannot be below the current member count.")
		}

		hangout.MembersLimit = limit
		if err := tx.Save(hangout).Error; err != nil {
			return err
		}
		return appendEvent(tx, hangoutID, fmt.Sprintf("%s changed the members limit to %d.", member.DisplayName, limit))
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "membersLimitUpdated", map[string]int{"membersLimit": limit}))
	return nil
}

// UpdatePeriods rewrites the stage durations. Stages already passed keep
// their elapsed duration; the current stage's new period must not already be
// spent.
func (s *HangoutService) UpdatePeriods(hangoutID string, identity models.Identity, availability, suggestions, voting time.Duration) error {
	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, member, err := requireLeader(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}

		updated := map[int]time.Duration{
			models.StageAvailability: availability,
			models.StageSuggestions:  suggestions,
			models.StageVoting:       voting,
		}
		now := time.Now()
		for stage := models.StageAvailability; stage <= models.StageVoting; stage++ {
			period := updated[stage]
			if stage < hangout.CurrentStage {
				// Already-elapsed stages are immutable.
				if period != hangout.StagePeriod(stage) {
					return errConflict(ReasonWrongStage, "Cannot change the period of a completed stage.")
				}
				continue
			}
			if !validPeriod(period) {
				return errValidation("Each stage period must be between 1 and 14 days.")
			}
			if stage == hangout.CurrentStage && !hangout.StageStartedAt.Add(period).After(now) {
				return errConflict(ReasonValidation, "New period for the current stage would already be over.")
			}
		}

		hangout.AvailabilityPeriod = updated[models.StageAvailability]
		hangout.SuggestionsPeriod = updated[models.StageSuggestions]
		hangout.VotingPeriod = updated[models.StageVoting]
		if err := tx.Save(hangout).Error; err != nil {
			return err
		}
		return appendEvent(tx, hangoutID, fmt.Sprintf("%s updated the stage periods. Conclusion projected at %s.",
			member.DisplayName, hangout.Conclusion().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "periodsUpdated", nil))
	return nil
}

// HangoutDetails is the member-facing full state of a hangout.
type HangoutDetails struct {
	Hangout     models.Hangout            `json:"hangout"`
	Conclusion  time.Time                 `json:"conclusion"`
	Members     []models.HangoutMember    `json:"members"`
	Slots       []models.AvailabilitySlot `json:"availabilitySlots"`
	Suggestions []models.Suggestion       `json:"suggestions"`
	Votes       []models.Vote             `json:"votes"`
}

// GetDetails returns the whole hangout state for a member.
func (s *HangoutService) GetDetails(hangoutID string, identity models.Identity) (*HangoutDetails, error) {
	var details HangoutDetails

	if err := s.db.First(&details.Hangout, "id = ?", hangoutID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Hangout not found.")
		}
		return nil, err
	}
	if _, err := memberOf(s.db, hangoutID, identity); err != nil {
		return nil, err
	}

	details.Conclusion = details.Hangout.Conclusion()
	if err := s.db.Order("created_at ASC").Find(&details.Members, "hangout_id = ?", hangoutID).Error; err != nil {
		return nil, err
	}
	if err := s.db.Order("start_timestamp ASC").Find(&details.Slots, "hangout_id = ?", hangoutID).Error; err != nil {
		return nil, err
	}
	if err := s.db.Order("start_timestamp ASC").Find(&details.Suggestions, "hangout_id = ?", hangoutID).Error; err != nil {
		return nil, err
	}
	if err := s.db.Find(&details.Votes, "hangout_id = ?", hangoutID).Error; err != nil {
		return nil, err
	}
	return &details, nil
}

// ListEvents returns the audit log, newest first.
func (s *HangoutService) ListEvents(hangoutID string, identity models.Identity, limit int) ([]models.HangoutEvent, error) {
	if _, err := memberOf(s.db, hangoutID, identity); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var events []models.HangoutEvent
	err := s.db.Where("hangout_id = ?", hangoutID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// DeleteOrphaned is the cron sweep over hangouts with no members left and
// guests whose membership is gone; normal removal paths already handle these,
// the sweep catches anything a crash left behind.
func (s *HangoutService) DeleteOrphaned() (int64, error) {
	var removed int64

	var orphanIDs []string
	err := s.db.Model(&models.Hangout{}).
		Where("NOT EXISTS (SELECT 1 FROM hangout_members WHERE hangout_members.hangout_id = hangouts.id)").
		Pluck("id", &orphanIDs).Error
	if err != nil {
		return 0, err
	}
	for _, id := range orphanIDs {
		err := serializable(s.db, func(tx *gorm.DB) error {
			return deleteHangoutTx(tx, id)
		})
		if err != nil {
			return removed, err
		}
		removed++
	}

	res := s.db.Where("NOT EXISTS (SELECT 1 FROM hangout_members WHERE hangout_members.user_kind = ? AND hangout_members.user_id = guests.id)",
		models.UserKindGuest).
		Delete(&models.Guest{})
	if res.Error != nil {
		return removed, res.Error
	}
	return removed + res.RowsAffected, nil
}
