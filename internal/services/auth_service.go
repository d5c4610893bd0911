package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService owns accounts and the opaque-token session store.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

// CreateSession issues an opaque token bound to the given identity. The
// expiry is fixed at issuance: short-lived by default, extended when the
// caller asked to stay signed in.
func (s *AuthService) CreateSession(identity models.Identity, keepSignedIn bool) (*models.AuthSession, error) {
	maxAge := models.SessionMaxAge
	if keepSignedIn {
		maxAge = models.SessionMaxAgeExtended
	}
	session := models.AuthSession{
		Token:     utils.GenerateSessionToken(),
		UserKind:  identity.Kind,
		UserID:    identity.ID,
		ExpiresAt: time.Now().Add(maxAge),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ValidateSession resolves a token to its identity. Expired rows are removed
// on sight. Callers must still verify the identity matches the resource being
// acted on; a session can outlive a deleted identity.
func (s *AuthService) ValidateSession(token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, errAuth(ReasonAuthRequired, "Sign in required.")
	}
	var session models.AuthSession
	if err := s.db.First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Identity{}, errAuth(ReasonAuthRequired, "Sign in required.")
		}
		return models.Identity{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.db.Delete(&session).Error
		return models.Identity{}, errAuth(ReasonSessionExpired, "Session expired. Sign in again.")
	}
	return session.Identity(), nil
}

// DestroySession removes one session.
func (s *AuthService) DestroySession(token string) error {
	return s.db.Delete(&models.AuthSession{}, "token = ?", token).Error
}

// PurgeSessions removes every session for an identity, forcing
// re-authentication everywhere. Run after password/email changes and on
// account deletion.
func (s *AuthService) PurgeSessions(identity models.Identity) error {
	return s.db.Delete(&models.AuthSession{}, "user_kind = ? AND user_id = ?", identity.Kind, identity.ID).Error
}

// PurgeExpiredSessions is the cron sweep over stale rows.
func (s *AuthService) PurgeExpiredSessions(now time.Time) (int64, error) {
	res := s.db.Delete(&models.AuthSession{}, "expires_at < ?", now)
	return res.RowsAffected, res.Error
}

// SignUp creates an unverified account and returns it along with the
// verification code the caller hands to the mailer after commit.
func (s *AuthService) SignUp(username, displayName, email, password string) (*models.Account, string, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return nil, "", errValidation(err.Error())
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	code := uuid.NewString()

	account := models.Account{
		Username:         username,
		DisplayName:      displayName,
		Email:            email,
		Password:         hashed,
		VerificationCode: &code,
	}
	err = serializable(s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errConflict(ReasonValidation, "Username or email already taken.")
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &account, code, nil
}

// VerifyEmail flips the account to verified when the code matches.
func (s *AuthService) VerifyEmail(accountID uint, code string) error {
	return serializable(s.db, func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("Account not found.")
			}
			return err
		}
		if account.IsVerified {
			return nil
		}
		if account.VerificationCode == nil || *account.VerificationCode != code {
			return errForbidden(ReasonForbidden, "Incorrect verification code.")
		}
		account.IsVerified = true
		account.VerificationCode = nil
		return tx.Save(&account).Error
	})
}

// SignIn checks credentials and issues a session.
func (s *AuthService) SignIn(username, password string, keepSignedIn bool) (*models.Account, *models.AuthSession, error) {
	var account models.Account
	if err := s.db.First(&account, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errAuth(ReasonAuthRequired, "Incorrect username or password.")
		}
		return nil, nil, err
	}
	if !utils.CheckPasswordHash(password, account.Password) {
		return nil, nil, errAuth(ReasonAuthRequired, "Incorrect username or password.")
	}

	now := time.Now()
	account.LastLogin = &now
	if err := s.db.Save(&account).Error; err != nil {
		return nil, nil, err
	}

	session, err := s.CreateSession(models.Identity{Kind: models.UserKindAccount, ID: account.ID}, keepSignedIn)
	if err != nil {
		return nil, nil, err
	}
	return &account, session, nil
}

// SignInGuest authenticates a guest against its single hangout.
func (s *AuthService) SignInGuest(username, password string) (*models.Guest, *models.AuthSession, error) {
	var guest models.Guest
	if err := s.db.First(&guest, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errAuth(ReasonAuthRequired, "Incorrect username or password.")
		}
		return nil, nil, err
	}
	if !utils.CheckPasswordHash(password, guest.Password) {
		return nil, nil, errAuth(ReasonAuthRequired, "Incorrect username or password.")
	}
	session, err := s.CreateSession(models.Identity{Kind: models.UserKindGuest, ID: guest.ID}, false)
	if err != nil {
		return nil, nil, err
	}
	return &guest, session, nil
}

// ChangePassword rotates the password and purges every session of the
// account so other devices must sign in again.
func (s *AuthService) ChangePassword(accountID uint, currentPassword, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return errValidation(err.Error())
	}
	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound("Account not found.")
		}
		return err
	}
	if !utils.CheckPasswordHash(currentPassword, account.Password) {
		return &ServiceError{Status: http.StatusUnauthorized, Reason: ReasonWrongPassword, Message: "Incorrect current password."}
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	account.Password = hashed
	if err := s.db.Save(&account).Error; err != nil {
		return err
	}
	return s.PurgeSessions(models.Identity{Kind: models.UserKindAccount, ID: accountID})
}
