package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coolAppl3/hangoutio/internal/config"
	"github.com/coolAppl3/hangoutio/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "hunter2go42"

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database per test so tests cannot see
// each other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestAccount(t *testing.T, db *gorm.DB, username string) *models.Account {
	t.Helper()

	account, _, err := NewAuthService(db).SignUp(username, username, username+"@example.com", testPassword)
	if err != nil {
		t.Fatalf("failed to create account %s: %v", username, err)
	}
	return account
}

func accountIdentity(a *models.Account) models.Identity {
	return models.Identity{Kind: models.UserKindAccount, ID: a.ID}
}

func guestIdentity(g *models.Guest) models.Identity {
	return models.Identity{Kind: models.UserKindGuest, ID: g.ID}
}

// createTestHangout builds a hangout with one-day stage periods and the
// given account as leader.
func createTestHangout(t *testing.T, db *gorm.DB, leader *models.Account, membersLimit int) *models.Hangout {
	t.Helper()

	hangout, _, err := NewHangoutService(db, nil).Create(leader.ID, CreateHangoutInput{
		Title:              "Friday plans",
		MembersLimit:       membersLimit,
		AvailabilityPeriod: 24 * time.Hour,
		SuggestionsPeriod:  24 * time.Hour,
		VotingPeriod:       24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create hangout: %v", err)
	}
	return hangout
}

func reloadHangout(t *testing.T, db *gorm.DB, hangoutID string) *models.Hangout {
	t.Helper()

	var hangout models.Hangout
	if err := db.First(&hangout, "id = ?", hangoutID).Error; err != nil {
		t.Fatalf("failed to reload hangout %s: %v", hangoutID, err)
	}
	return &hangout
}

// setStage forces a hangout into a stage without running the advance logic.
func setStage(t *testing.T, db *gorm.DB, hangoutID string, stage int) {
	t.Helper()

	updates := map[string]any{"current_stage": stage}
	if stage == models.StageConcluded {
		updates["is_concluded"] = true
	}
	if err := db.Model(&models.Hangout{}).Where("id = ?", hangoutID).Updates(updates).Error; err != nil {
		t.Fatalf("failed to set stage: %v", err)
	}
}

func setStageStartedAt(t *testing.T, db *gorm.DB, hangoutID string, startedAt time.Time) {
	t.Helper()

	if err := db.Model(&models.Hangout{}).Where("id = ?", hangoutID).
		Update("stage_started_at", startedAt).Error; err != nil {
		t.Fatalf("failed to set stage start: %v", err)
	}
}

// wantReason asserts err is a ServiceError with the given reason code.
func wantReason(t *testing.T, err error, reason string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with reason %q, got nil", reason)
	}
	svcErr, ok := AsServiceError(err)
	if !ok {
		t.Fatalf("expected ServiceError with reason %q, got %v", reason, err)
	}
	if svcErr.Reason != reason {
		t.Fatalf("expected reason %q, got %q (%s)", reason, svcErr.Reason, svcErr.Message)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}
