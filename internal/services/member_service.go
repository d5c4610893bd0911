package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"gorm.io/gorm"
)

// MemberService enforces the membership and capacity invariants: member
// count caps, the single-leader rule, and hangout deletion when the last
// member leaves.
type MemberService struct {
	db     *gorm.DB
	notify Notifier
}

func NewMemberService(db *gorm.DB, notify Notifier) *MemberService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &MemberService{db: db, notify: notify}
}

// memberOf resolves the caller's membership row inside the transaction.
// Non-members get the same not-found as an absent hangout.
func memberOf(tx *gorm.DB, hangoutID string, identity models.Identity) (*models.HangoutMember, error) {
	var member models.HangoutMember
	err := tx.First(&member, "hangout_id = ? AND user_kind = ? AND user_id = ?",
		hangoutID, identity.Kind, identity.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Hangout not found.")
		}
		return nil, err
	}
	return &member, nil
}

func hangoutForUpdate(tx *gorm.DB, hangoutID string) (*models.Hangout, error) {
	var hangout models.Hangout
	if err := tx.First(&hangout, "id = ?", hangoutID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Hangout not found.")
		}
		return nil, err
	}
	return &hangout, nil
}

func appendEvent(tx *gorm.DB, hangoutID, description string) error {
	return tx.Create(&models.HangoutEvent{HangoutID: hangoutID, Description: description}).Error
}

// checkJoinable re-checks every join precondition under the transaction so
// concurrent joins against a nearly-full hangout cannot overbook.
func checkJoinable(tx *gorm.DB, hangout *models.Hangout, password string) error {
	if hangout.IsConcluded {
		return errConflict(ReasonConcluded, "Hangout has already concluded.")
	}
	if hangout.HasPassword() && !utils.CheckPasswordHash(password, *hangout.PasswordHash) {
		return &ServiceError{Status: http.StatusUnauthorized, Reason: ReasonWrongPassword, Message: "Incorrect hangout password."}
	}

	var count int64
	if err := tx.Model(&models.HangoutMember{}).Where("hangout_id = ?", hangout.ID).Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(hangout.MembersLimit) {
		return errConflict(ReasonHangoutFull, "Hangout is full.")
	}
	return nil
}

// JoinAsAccount adds a registered account to a hangout.
func (s *MemberService) JoinAsAccount(hangoutID string, accountID uint, password string) (*models.HangoutMember, error) {
	var member models.HangoutMember

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}

		var account models.Account
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAuth(ReasonAuthRequired, "Sign in required.")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.HangoutMember{}).
			Where("hangout_id = ? AND user_kind = ? AND user_id = ?", hangoutID, models.UserKindAccount, accountID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errConflict(ReasonAlreadyMember, "Already a member of this hangout.")
		}

		if err := checkJoinable(tx, hangout, password); err != nil {
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

		member = models.HangoutMember{
			HangoutID:   hangoutID,
			UserKind:    models.UserKindAccount,
			UserID:      accountID,
			DisplayName: account.DisplayName,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return appendEvent(tx, hangoutID, fmt.Sprintf("%s joined the hangout.", member.DisplayName))
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("hangout", "memberJoined", member))
	return &member, nil
}

// JoinAsGuest creates a guest identity and its membership in one step. A
// guest only ever belongs to this one hangout.
func (s *MemberService) JoinAsGuest(hangoutID, username, displayName, guestPassword, hangoutPassword string) (*models.Guest, *models.HangoutMember, error) {
	if err := utils.ValidatePassword(guestPassword); err != nil {
		return nil, nil, errValidation(err.Error())
	}
	hashed, err := utils.HashPassword(guestPassword)
	if err != nil {
		return nil, nil, err
	}

	var guest models.Guest
	var member models.HangoutMember

	err = serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if err := checkJoinable(tx, hangout, hangoutPassword); err != nil {
			return err
		}

		var taken int64
		if err := tx.Model(&models.Guest{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errConflict(ReasonValidation, "Username already taken.")
		}

		guest = models.Guest{
			Username:    username,
			DisplayName: displayName,
			Password:    hashed,
			HangoutID:   hangoutID,
		}
		if err := tx.Create(&guest).Error; err != nil {
			return err
		}

		member = models.HangoutMember{
			HangoutID:   hangoutID,
			UserKind:    models.UserKindGuest,
			UserID:      guest.ID,
			DisplayName: displayName,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return appendEvent(tx, hangoutID, fmt.Sprintf("%s joined the hangout.", displayName))
	})
	if err != nil {
		return nil, nil, err
	}

	s.notify(hangoutID, NewEvent("hangout", "memberJoined", member))
	return &guest, &member, nil
}

// removeMemberTx deletes a member and everything hanging off them. Removing
// the last member deletes the hangout entirely. Returns whether the hangout
// was deleted.
func removeMemberTx(tx *gorm.DB, hangout *models.Hangout, member *models.HangoutMember, kicked bool) (bool, error) {
	var count int64
	if err := tx.Model(&models.HangoutMember{}).Where("hangout_id = ?", hangout.ID).Count(&count).Error; err != nil {
		return false, err
	}

	if count <= 1 {
		if err := deleteHangoutTx(tx, hangout.ID); err != nil {
			return false, err
		}
		return true, nil
	}

	if !hangout.IsConcluded {
		if err := tx.Delete(&models.Vote{}, "hangout_member_id = ?", member.ID).Error; err != nil {
			return false, err
		}
	}
	if err := tx.Model(&models.Suggestion{}).
		Where("hangout_member_id = ?", member.ID).
		Update("hangout_member_id", nil).Error; err != nil {
		return false, err
	}
	if err := tx.Delete(&models.AvailabilitySlot{}, "hangout_member_id = ?", member.ID).Error; err != nil {
		return false, err
	}
	if err := tx.Delete(&models.ChatMessage{}, "hangout_member_id = ?", member.ID).Error; err != nil {
		return false, err
	}
	if err := tx.Delete(&models.HangoutMember{}, member.ID).Error; err != nil {
		return false, err
	}
	if member.UserKind == models.UserKindGuest {
		if err := tx.Delete(&models.Guest{}, member.UserID).Error; err != nil {
			return false, err
		}
		if err := tx.Delete(&models.AuthSession{}, "user_kind = ? AND user_id = ?", models.UserKindGuest, member.UserID).Error; err != nil {
			return false, err
		}
	}

	verb := "left"
	if kicked {
		verb = "was kicked from"
	}
	description := fmt.Sprintf("%s %s the hangout.", member.DisplayName, verb)
	if member.IsLeader {
		description += " The leader spot is now open."
	}
	return false, appendEvent(tx, hangout.ID, description)
}

// deleteHangoutTx removes a hangout and all of its dependents explicitly so
// behavior does not rest on database-side cascade support.
func deleteHangoutTx(tx *gorm.DB, hangoutID string) error {
	for _, model := range []any{
		&models.Vote{}, &models.Suggestion{}, &models.AvailabilitySlot{},
		&models.ChatMessage{}, &models.HangoutEvent{},
	} {
		if err := tx.Delete(model, "hangout_id = ?", hangoutID).Error; err != nil {
			return err
		}
	}

	var guests []models.Guest
	if err := tx.Find(&guests, "hangout_id = ?", hangoutID).Error; err != nil {
		return err
	}
	for _, guest := range guests {
		if err := tx.Delete(&models.AuthSession{}, "user_kind = ? AND user_id = ?", models.UserKindGuest, guest.ID).Error; err != nil {
			return err
		}
	}
	if err := tx.Delete(&models.Guest{}, "hangout_id = ?", hangoutID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.HangoutMember{}, "hangout_id = ?", hangoutID).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Hangout{}, "id = ?", hangoutID).Error
}

// Leave removes the calling member.
func (s *MemberService) Leave(hangoutID string, identity models.Identity) (hangoutDeleted bool, err error) {
	var member *models.HangoutMember

	err = serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		member, err = memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		hangoutDeleted, err = removeMemberTx(tx, hangout, member, false)
		return err
	})
	if err != nil {
		return false, err
	}

	utils.MembershipCache.Delete(utils.MembershipCacheKey(string(member.UserKind), member.UserID, hangoutID))
	if !hangoutDeleted {
		s.notify(hangoutID, NewEvent("hangout", "memberLeft", member))
	}
	return hangoutDeleted, nil
}

// Kick removes another member; leaders only, and never themselves.
func (s *MemberService) Kick(hangoutID string, identity models.Identity, targetMemberID uint) (hangoutDeleted bool, err error) {
	var target models.HangoutMember

	err = serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		caller, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if !caller.IsLeader {
			return errForbidden(ReasonNotLeader, "Only the hangout leader can kick members.")
		}
		if err := tx.First(&target, "id = ? AND hangout_id = ?", targetMemberID, hangoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Member not found.")
			}
			return err
		}
		if target.ID == caller.ID {
			return errValidation("Leaders cannot kick themselves. Leave instead.")
		}
		hangoutDeleted, err = removeMemberTx(tx, hangout, &target, true)
		return err
	})
	if err != nil {
		return false, err
	}

	utils.MembershipCache.Delete(utils.MembershipCacheKey(string(target.UserKind), target.UserID, hangoutID))
	if !hangoutDeleted {
		s.notify(hangoutID, NewEvent("hangout", "memberKicked", target))
	}
	return hangoutDeleted, nil
}

// TransferLeadership flips the leader flag from the caller to the target in
// one transaction; no other transaction can observe zero or two leaders.
func (s *MemberService) TransferLeadership(hangoutID string, identity models.Identity, targetMemberID uint) error {
	var target models.HangoutMember

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		caller, err := memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		if !caller.IsLeader {
			return errForbidden(ReasonNotLeader, "Only the hangout leader can transfer leadership.")
		}
		if err := tx.First(&target, "id = ? AND hangout_id = ?", targetMemberID, hangoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Member not found.")
			}
			return err
		}
		if target.ID == caller.ID {
			return errValidation("Already the hangout leader.")
		}

		if err := tx.Model(&models.HangoutMember{}).Where("id = ?", caller.ID).Update("is_leader", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.HangoutMember{}).Where("id = ?", target.ID).Update("is_leader", true).Error; err != nil {
			return err
		}
		target.IsLeader = true
		return appendEvent(tx, hangoutID,
			fmt.Sprintf("%s transferred leadership to %s.", caller.DisplayName, target.DisplayName))
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "leadershipTransferred", target))
	return nil
}

// ClaimLeadership lets a member take the open leader spot, e.g. after the
// leader left without transferring.
func (s *MemberService) ClaimLeadership(hangoutID string, identity models.Identity) error {
	var claimant *models.HangoutMember

	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		claimant, err = memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}

		var leaders int64
		if err := tx.Model(&models.HangoutMember{}).
			Where("hangout_id = ? AND is_leader = ?", hangoutID, true).
			Count(&leaders).Error; err != nil {
			return err
		}
		if leaders > 0 {
			return errConflict(ReasonLeaderExists, "Hangout already has a leader.")
		}

		if err := tx.Model(&models.HangoutMember{}).Where("id = ?", claimant.ID).Update("is_leader", true).Error; err != nil {
			return err
		}
		claimant.IsLeader = true
		return appendEvent(tx, hangoutID, fmt.Sprintf("%s claimed leadership.", claimant.DisplayName))
	})
	if err != nil {
		return err
	}

	s.notify(hangoutID, NewEvent("hangout", "leadershipClaimed", claimant))
	return nil
}

// UpdateDisplayName renames the calling member within the hangout.
func (s *MemberService) UpdateDisplayName(hangoutID string, identity models.Identity, displayName string) (*models.HangoutMember, error) {
	if len(displayName) < 1 || len(displayName) > 40 {
		return nil, errValidation("Display name must be 1 to 40 characters.")
	}

	var member *models.HangoutMember
	err := serializable(s.db, func(tx *gorm.DB) error {
		hangout, err := hangoutForUpdate(tx, hangoutID)
		if err != nil {
			return err
		}
		if hangout.IsConcluded {
			return errConflict(ReasonConcluded, "Hangout has already concluded.")
		}
		member, err = memberOf(tx, hangoutID, identity)
		if err != nil {
			return err
		}
		member.DisplayName = displayName
		return tx.Save(member).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("hangout", "memberUpdated", member))
	return member, nil
}

// DeleteAccount removes an account, cascading through every membership the
// way a leave would, then purges the account's sessions. Returns the email
// for the post-commit deletion confirmation.
func (s *MemberService) DeleteAccount(accountID uint) (string, error) {
	var email string
	var affected []string

	err := serializable(s.db, func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Account not found.")
			}
			return err
		}
		email = account.Email

		var memberships []models.HangoutMember
		if err := tx.Find(&memberships, "user_kind = ? AND user_id = ?", models.UserKindAccount, accountID).Error; err != nil {
			return err
		}
		for i := range memberships {
			hangout, err := hangoutForUpdate(tx, memberships[i].HangoutID)
			if err != nil {
				return err
			}
			deleted, err := removeMemberTx(tx, hangout, &memberships[i], false)
			if err != nil {
				return err
			}
			utils.MembershipCache.Delete(utils.MembershipCacheKey(string(memberships[i].UserKind), memberships[i].UserID, hangout.ID))
			if !deleted {
				affected = append(affected, hangout.ID)
			}
		}

		if err := tx.Delete(&models.AuthSession{}, "user_kind = ? AND user_id = ?", models.UserKindAccount, accountID).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
	if err != nil {
		return "", err
	}

	for _, hangoutID := range affected {
		s.notify(hangoutID, NewEvent("hangout", "memberLeft", nil))
	}
	return email, nil
}
