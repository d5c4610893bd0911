package services

import (
	"testing"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
)

func TestCreateHangoutValidation(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangouts := NewHangoutService(db, nil)

	base := CreateHangoutInput{
		Title:              "Friday plans",
		MembersLimit:       5,
		AvailabilityPeriod: models.MinStagePeriod,
		SuggestionsPeriod:  models.MinStagePeriod,
		VotingPeriod:       models.MinStagePeriod,
	}

	bad := base
	bad.Title = "ab"
	_, _, err := hangouts.Create(alice.ID, bad)
	wantReason(t, err, ReasonValidation)

	bad = base
	bad.MembersLimit = 1
	_, _, err = hangouts.Create(alice.ID, bad)
	wantReason(t, err, ReasonValidation)

	bad = base
	bad.VotingPeriod = 15 * 24 * time.Hour
	_, _, err = hangouts.Create(alice.ID, bad)
	wantReason(t, err, ReasonValidation)

	hangout, leader, err := hangouts.Create(alice.ID, base)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if hangout.CurrentStage != models.StageAvailability {
		t.Errorf("stage = %d, want %d", hangout.CurrentStage, models.StageAvailability)
	}
	if !leader.IsLeader {
		t.Error("creator not the leader")
	}
	if hangout.ID == "" || hangout.ID[0] != 'h' {
		t.Errorf("unexpected hangout id %q", hangout.ID)
	}
}

func TestUpdateTitleRequiresLeader(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	hangout := createTestHangout(t, db, alice, 5)

	if _, err := NewMemberService(db, nil).JoinAsAccount(hangout.ID, bob.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	hangouts := NewHangoutService(db, nil)
	err := hangouts.UpdateTitle(hangout.ID, accountIdentity(bob), "New plans")
	wantReason(t, err, ReasonNotLeader)

	if err := hangouts.UpdateTitle(hangout.ID, accountIdentity(alice), "New plans"); err != nil {
		t.Fatalf("leader rename failed: %v", err)
	}
	if fresh := reloadHangout(t, db, hangout.ID); fresh.Title != "New plans" {
		t.Errorf("title = %q, want %q", fresh.Title, "New plans")
	}
}

func TestUpdateMembersLimitNeverBelowCount(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	carol := createTestAccount(t, db, "carol")
	hangout := createTestHangout(t, db, alice, 5)

	members := NewMemberService(db, nil)
	if _, err := members.JoinAsAccount(hangout.ID, bob.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := members.JoinAsAccount(hangout.ID, carol.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	hangouts := NewHangoutService(db, nil)
	err := hangouts.UpdateMembersLimit(hangout.ID, accountIdentity(alice), 2)
	wantReason(t, err, ReasonValidation)

	if err := hangouts.UpdateMembersLimit(hangout.ID, accountIdentity(alice), 3); err != nil {
		t.Fatalf("limit update failed: %v", err)
	}
}

func TestUpdatePeriodsRules(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangout := createTestHangout(t, db, alice, 5)
	identity := accountIdentity(alice)
	hangouts := NewHangoutService(db, nil)

	// Stretching future stages is fine.
	if err := hangouts.UpdatePeriods(hangout.ID, identity, 2*24*time.Hour, 3*24*time.Hour, 24*time.Hour); err != nil {
		t.Fatalf("periods update failed: %v", err)
	}

	// A current-stage period that is already spent is rejected.
	setStageStartedAt(t, db, hangout.ID, time.Now().Add(-36*time.Hour))
	err := hangouts.UpdatePeriods(hangout.ID, identity, 24*time.Hour, 3*24*time.Hour, 24*time.Hour)
	wantReason(t, err, ReasonValidation)

	// Advance past availability, then try to rewrite it.
	setStageStartedAt(t, db, hangout.ID, time.Now())
	setStage(t, db, hangout.ID, models.StageSuggestions)
	err = hangouts.UpdatePeriods(hangout.ID, identity, 5*24*time.Hour, 3*24*time.Hour, 24*time.Hour)
	wantReason(t, err, ReasonWrongStage)

	// Leaving the elapsed stage untouched works.
	if err := hangouts.UpdatePeriods(hangout.ID, identity, 2*24*time.Hour, 4*24*time.Hour, 24*time.Hour); err != nil {
		t.Fatalf("periods update failed: %v", err)
	}
}

func TestGetDetailsRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	mallory := createTestAccount(t, db, "mallory")
	hangout := createTestHangout(t, db, alice, 5)

	hangouts := NewHangoutService(db, nil)
	_, err := hangouts.GetDetails(hangout.ID, accountIdentity(mallory))
	wantReason(t, err, ReasonNotFound)

	details, err := hangouts.GetDetails(hangout.ID, accountIdentity(alice))
	if err != nil {
		t.Fatalf("get details failed: %v", err)
	}
	if len(details.Members) != 1 {
		t.Errorf("members = %d, want 1", len(details.Members))
	}
	if !details.Conclusion.Equal(details.Hangout.Conclusion()) {
		t.Errorf("conclusion mismatch: %v vs %v", details.Conclusion, details.Hangout.Conclusion())
	}
}

func TestDeleteHangoutRemovesEverything(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangout := createTestHangout(t, db, alice, 5)
	identity := accountIdentity(alice)

	base := slotBase(t, db, hangout.ID)
	if _, err := NewAvailabilityService(db, nil).Add(hangout.ID, identity, base, base.Add(2*time.Hour)); err != nil {
		t.Fatalf("slot add failed: %v", err)
	}
	if _, err := NewChatService(db, nil).Send(hangout.ID, identity, "anyone up for friday?"); err != nil {
		t.Fatalf("chat send failed: %v", err)
	}

	if err := NewHangoutService(db, nil).Delete(hangout.ID, identity); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"hangout", &models.Hangout{}},
		{"members", &models.HangoutMember{}},
		{"slots", &models.AvailabilitySlot{}},
		{"chat", &models.ChatMessage{}},
		{"events", &models.HangoutEvent{}},
	} {
		query := "hangout_id = ?"
		if probe.name == "hangout" {
			query = "id = ?"
		}
		if count := countRows(t, db, probe.model, query, hangout.ID); count != 0 {
			t.Errorf("%s rows remaining = %d, want 0", probe.name, count)
		}
	}
}

func TestDeleteOrphanedHangouts(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	kept := createTestHangout(t, db, alice, 5)
	orphan := createTestHangout(t, db, alice, 5)

	// Simulate a crash that removed the membership but not the hangout.
	if err := db.Delete(&models.HangoutMember{}, "hangout_id = ?", orphan.ID).Error; err != nil {
		t.Fatalf("failed to orphan hangout: %v", err)
	}

	removed, err := NewHangoutService(db, nil).DeleteOrphaned()
	if err != nil {
		t.Fatalf("orphan sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if count := countRows(t, db, &models.Hangout{}, "id = ?", orphan.ID); count != 0 {
		t.Errorf("orphan hangout still present")
	}
	if count := countRows(t, db, &models.Hangout{}, "id = ?", kept.ID); count != 1 {
		t.Errorf("kept hangout deleted")
	}
}
