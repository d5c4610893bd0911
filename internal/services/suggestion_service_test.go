package services

import (
	"strings"
	"testing"
	"time"

	"github.com/coolAppl3/hangoutio/internal/models"
)

func TestAddSuggestionOnlyDuringSuggestionsStage(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangout := createTestHangout(t, db, alice, 5)
	identity := accountIdentity(alice)
	base := slotBase(t, db, hangout.ID)

	suggestions := NewSuggestionService(db, nil)
	_, err := suggestions.Add(hangout.ID, identity, "Bowling night", "Lanes at the usual place downtown.", base, base.Add(3*time.Hour))
	wantReason(t, err, ReasonWrongStage)

	setStage(t, db, hangout.ID, models.StageSuggestions)
	if _, err := suggestions.Add(hangout.ID, identity, "Bowling night", "Lanes at the usual place downtown.", base, base.Add(3*time.Hour)); err != nil {
		t.Fatalf("add during suggestions stage failed: %v", err)
	}
}

func TestSuggestionInputBounds(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangout := createTestHangout(t, db, alice, 5)
	identity := accountIdentity(alice)
	base := slotBase(t, db, hangout.ID)
	setStage(t, db, hangout.ID, models.StageSuggestions)

	suggestions := NewSuggestionService(db, nil)

	_, err := suggestions.Add(hangout.ID, identity, "Go", "Lanes at the usual place downtown.", base, base.Add(3*time.Hour))
	wantReason(t, err, ReasonValidation)

	_, err = suggestions.Add(hangout.ID, identity, "Bowling night", "Too short", base, base.Add(3*time.Hour))
	wantReason(t, err, ReasonValidation)

	_, err = suggestions.Add(hangout.ID, identity, "Bowling night", strings.Repeat("x", 501), base, base.Add(3*time.Hour))
	wantReason(t, err, ReasonValidation)
}

func TestSuggestionCapPerMember(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	hangout := createTestHangout(t, db, alice, 5)
	identity := accountIdentity(alice)
	base := slotBase(t, db, hangout.ID)
	setStage(t, db, hangout.ID, models.StageSuggestions)

	suggestions := NewSuggestionService(db, nil)
	titles := []string{"Bowling night", "Karaoke night", "Picnic day"}
	for i, title := range titles {
		start := base.Add(time.Duration(i) * 4 * time.Hour)
		if _, err := suggestions.Add(hangout.ID, identity, title, "Details to be figured out together.", start, start.Add(3*time.Hour)); err != nil {
			t.Fatalf("suggestion %d failed: %v", i, err)
		}
	}

	start := base.Add(12 * 4 * time.Hour)
	_, err := suggestions.Add(hangout.ID, identity, "One too many", "Details to be figured out together.", start, start.Add(3*time.Hour))
	wantReason(t, err, ReasonSuggestionCap)
}

func TestTitleEditDuringVotingResetsVotes(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	hangout := createTestHangout(t, db, alice, 5)
	aliceID := accountIdentity(alice)
	bobID := accountIdentity(bob)

	members := NewMemberService(db, nil)
	if _, err := members.JoinAsAccount(hangout.ID, bob.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	base := slotBase(t, db, hangout.ID)

	// Bob is available across the whole suggestion window, so his vote will
	// be eligible.
	if _, err := NewAvailabilityService(db, nil).Add(hangout.ID, bobID, base, base.Add(4*time.Hour)); err != nil {
		t.Fatalf("slot add failed: %v", err)
	}

	setStage(t, db, hangout.ID, models.StageSuggestions)
	suggestion, err := NewSuggestionService(db, nil).Add(hangout.ID, aliceID, "Bowling night", "Lanes at the usual place downtown.", base, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("suggestion add failed: %v", err)
	}

	setStage(t, db, hangout.ID, models.StageVoting)
	if _, err := NewVoteService(db, nil).Add(hangout.ID, bobID, suggestion.ID); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	updated, err := NewSuggestionService(db, nil).Update(hangout.ID, aliceID, suggestion.ID,
		"Karaoke night", "Lanes at the usual place downtown.", base, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("title edit failed: %v", err)
	}
	if !updated.IsEdited {
		t.Error("suggestion not marked edited")
	}

	// The rename invalidated every vote already cast for it.
	if votes := countRows(t, db, &models.Vote{}, "suggestion_id = ?", suggestion.ID); votes != 0 {
		t.Errorf("votes remaining = %d, want 0", votes)
	}
}

func TestNonTitleEditDuringVotingKeepsVotes(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	hangout := createTestHangout(t, db, alice, 5)
	aliceID := accountIdentity(alice)
	bobID := accountIdentity(bob)

	if _, err := NewMemberService(db, nil).JoinAsAccount(hangout.ID, bob.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	base := slotBase(t, db, hangout.ID)
	if _, err := NewAvailabilityService(db, nil).Add(hangout.ID, bobID, base, base.Add(4*time.Hour)); err != nil {
		t.Fatalf("slot add failed: %v", err)
	}

	setStage(t, db, hangout.ID, models.StageSuggestions)
	suggestion, err := NewSuggestionService(db, nil).Add(hangout.ID, aliceID, "Bowling night", "Lanes at the usual place downtown.", base, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("suggestion add failed: %v", err)
	}

	setStage(t, db, hangout.ID, models.StageVoting)
	if _, err := NewVoteService(db, nil).Add(hangout.ID, bobID, suggestion.ID); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if _, err := NewSuggestionService(db, nil).Update(hangout.ID, aliceID, suggestion.ID,
		"Bowling night", "Same lanes, meeting half an hour earlier.", base, base.Add(4*time.Hour)); err != nil {
		t.Fatalf("description edit failed: %v", err)
	}

	if votes := countRows(t, db, &models.Vote{}, "suggestion_id = ?", suggestion.ID); votes != 1 {
		t.Errorf("votes remaining = %d, want 1", votes)
	}
}

func TestDeleteSuggestionOwnershipRules(t *testing.T) {
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

	base := slotBase(t, db, hangout.ID)
	setStage(t, db, hangout.ID, models.StageSuggestions)

	suggestions := NewSuggestionService(db, nil)
	suggestion, err := suggestions.Add(hangout.ID, accountIdentity(bob), "Bowling night", "Lanes at the usual place downtown.", base, base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("suggestion add failed: %v", err)
	}

	// Carol neither owns it nor leads the hangout.
	err = suggestions.Delete(hangout.ID, accountIdentity(carol), suggestion.ID)
	wantReason(t, err, ReasonNotFound)

	// The leader can delete anyone's suggestion.
	if err := suggestions.Delete(hangout.ID, accountIdentity(alice), suggestion.ID); err != nil {
		t.Fatalf("leader delete failed: %v", err)
	}
}

func TestListSuggestionsWithVoteCounts(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	hangout := createTestHangout(t, db, alice, 5)
	aliceID := accountIdentity(alice)
	bobID := accountIdentity(bob)

	if _, err := NewMemberService(db, nil).JoinAsAccount(hangout.ID, bob.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	base := slotBase(t, db, hangout.ID)
	availability := NewAvailabilityService(db, nil)
	if _, err := availability.Add(hangout.ID, aliceID, base, base.Add(4*time.Hour)); err != nil {
		t.Fatalf("slot add failed: %v", err)
	}
	if _, err := availability.Add(hangout.ID, bobID, base, base.Add(4*time.Hour)); err != nil {
		t.Fatalf("slot add failed: %v", err)
	}

	setStage(t, db, hangout.ID, models.StageSuggestions)
	suggestion, err := NewSuggestionService(db, nil).Add(hangout.ID, aliceID, "Bowling night", "Lanes at the usual place downtown.", base, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("suggestion add failed: %v", err)
	}

	setStage(t, db, hangout.ID, models.StageVoting)
	votes := NewVoteService(db, nil)
	if _, err := votes.Add(hangout.ID, aliceID, suggestion.ID); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := votes.Add(hangout.ID, bobID, suggestion.ID); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	listed, counts, err := NewSuggestionService(db, nil).List(hangout.ID, aliceID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(listed))
	}
	if counts[suggestion.ID] != 2 {
		t.Errorf("vote count = %d, want 2", counts[suggestion.ID])
	}
}
