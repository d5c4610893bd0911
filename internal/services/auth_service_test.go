package services

import (
	"testing"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
)

func TestSignUpRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)

	if _, _, err := auth.SignUp("alice", "Alice", "alice@example.com", testPassword); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	_, _, err := auth.SignUp("alice", "Other Alice", "other@example.com", testPassword)
	wantReason(t, err, ReasonValidation)

	_, _, err = auth.SignUp("alice2", "Alice Two", "alice@example.com", testPassword)
	wantReason(t, err, ReasonValidation)
}

func TestSignUpEnforcesPasswordPolicy(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)

	_, _, err := auth.SignUp("alice", "Alice", "alice@example.com", "short1")
	wantReason(t, err, ReasonValidation)

	_, _, err = auth.SignUp("alice", "Alice", "alice@example.com", "lettersonly")
	wantReason(t, err, ReasonValidation)
}

func TestVerifyEmail(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)

	account, code, err := auth.SignUp("alice", "Alice", "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if account.IsVerified {
		t.Fatal("account verified before code entry")
	}

	err = auth.VerifyEmail(account.ID, "not-the-code")
	wantReason(t, err, ReasonForbidden)

	if err := auth.VerifyEmail(account.ID, code); err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	var fresh models.Account
	if err := db.First(&fresh, account.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !fresh.IsVerified || fresh.VerificationCode != nil {
		t.Errorf("account not verified cleanly: verified=%v code=%v", fresh.IsVerified, fresh.VerificationCode)
	}
}

func TestSignInIssuesSession(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)
	createTestAccount(t, db, "alice")

	_, _, err := auth.SignIn("alice", "wrong1234", false)
	wantReason(t, err, ReasonAuthRequired)

	account, session, err := auth.SignIn("alice", testPassword, false)
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if account.LastLogin == nil {
		t.Error("last login not recorded")
	}

	identity, err := auth.ValidateSession(session.Token)
	if err != nil {
		t.Fatalf("session rejected: %v", err)
	}
	if identity.Kind != models.UserKindAccount || identity.ID != account.ID {
		t.Errorf("session resolved to %+v, want account %d", identity, account.ID)
	}
}

func TestKeepSignedInExtendsSession(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)
	alice := createTestAccount(t, db, "alice")

	short, err := auth.CreateSession(accountIdentity(alice), false)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	long, err := auth.CreateSession(accountIdentity(alice), true)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	if !long.ExpiresAt.After(short.ExpiresAt.Add(24 * time.Hour)) {
		t.Errorf("extended session expires at %v, short at %v", long.ExpiresAt, short.ExpiresAt)
	}
}

func TestExpiredSessionIsRejectedAndRemoved(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)
	alice := createTestAccount(t, db, "alice")

	session, err := auth.CreateSession(accountIdentity(alice), false)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if err := db.Model(&models.AuthSession{}).Where("token = ?", session.Token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	_, err = auth.ValidateSession(session.Token)
	wantReason(t, err, ReasonSessionExpired)

	// Expired rows are removed on sight.
	if count := countRows(t, db, &models.AuthSession{}, "token = ?", session.Token); count != 0 {
		t.Errorf("expired session row remains")
	}
}

func TestChangePasswordPurgesSessions(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)
	alice := createTestAccount(t, db, "alice")

	session, err := auth.CreateSession(accountIdentity(alice), false)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	err = auth.ChangePassword(alice.ID, "wrong1234", "newpass42x")
	wantReason(t, err, ReasonWrongPassword)

	if err := auth.ChangePassword(alice.ID, testPassword, "newpass42x"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	_, err = auth.ValidateSession(session.Token)
	wantReason(t, err, ReasonAuthRequired)

	if _, _, err := auth.SignIn("alice", "newpass42x", false); err != nil {
		t.Fatalf("sign in with new password failed: %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db)
	alice := createTestAccount(t, db, "alice")

	live, err := auth.CreateSession(accountIdentity(alice), false)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	expired, err := auth.CreateSession(accountIdentity(alice), false)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if err := db.Model(&models.AuthSession{}).Where("token = ?", expired.Token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	purged, err := auth.PurgeExpiredSessions(time.Now())
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if count := countRows(t, db, &models.AuthSession{}, "token = ?", live.Token); count != 1 {
		t.Errorf("live session purged")
	}
}

func TestGuestSignIn(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangout := createTestHangout(t, db, alice, 5)

	guest, _, err := NewMemberService(db, nil).JoinAsGuest(hangout.ID, "guestuser", "Guesty", testPassword, "")
	if err != nil {
		t.Fatalf("guest join failed: %v", err)
	}

	auth := NewAuthService(db)
	signedIn, session, err := auth.SignInGuest("guestuser", testPassword)
	if err != nil {
		t.Fatalf("guest sign in failed: %v", err)
	}
	if signedIn.ID != guest.ID {
		t.Errorf("signed in guest %d, want %d", signedIn.ID, guest.ID)
	}

	identity, err := auth.ValidateSession(session.Token)
	if err != nil {
		t.Fatalf("session rejected: %v", err)
	}
	if identity.Kind != models.UserKindGuest || identity.ID != guest.ID {
		t.Errorf("session resolved to %+v, want guest %d", identity, guest.ID)
	}
}
