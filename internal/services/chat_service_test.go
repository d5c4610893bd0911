package services

import (
	"strings"
	"testing"
)

func TestSendAndListChatMessages(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	hangout := createTestHangout(t, db, alice, 5)

	if _, err := NewMemberService(db, nil).JoinAsAccount(hangout.ID, bob.ID, ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	chat := NewChatService(db, nil)
	if _, err := chat.Send(hangout.ID, accountIdentity(alice), "anyone up for friday?"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := chat.Send(hangout.ID, accountIdentity(bob), "  count me in  "); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	messages, err := chat.List(hangout.ID, accountIdentity(alice), 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if messages[1].Content != "count me in" {
		t.Errorf("content = %q, want trimmed %q", messages[1].Content, "count me in")
	}
	if messages[0].DisplayName != "alice" {
		t.Errorf("display name = %q, want %q", messages[0].DisplayName, "alice")
	}
}

func TestChatValidation(t *testing.T) {
	db := newTestDB(t)
	alice := createTestAccount(t, db, "alice")
	mallory := createTestAccount(t, db, "mallory")
	hangout := createTestHangout(t, db, alice, 5)

	chat := NewChatService(db, nil)

	_, err := chat.Send(hangout.ID, accountIdentity(alice), "   ")
	wantReason(t, err, ReasonValidation)

	_, err = chat.Send(hangout.ID, accountIdentity(alice), strings.Repeat("x", 2001))
	wantReason(t, err, ReasonValidation)

	// Non-members cannot post or read.
	_, err = chat.Send(hangout.ID, accountIdentity(mallory), "let me in")
	wantReason(t, err, ReasonNotFound)

	_, err = chat.List(hangout.ID, accountIdentity(mallory), 0)
	wantReason(t, err, ReasonNotFound)
}
