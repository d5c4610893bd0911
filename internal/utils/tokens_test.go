package utils

import (
	"strings"
	"testing"
)

func TestGenerateHangoutIDShape(t *testing.T) {
	id := GenerateHangoutID()

	if !strings.HasPrefix(id, "h") {
		t.Errorf("id %q missing prefix", id)
	}
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("id %q missing separator", id)
	}
	if len(parts[1]) != 32 {
		t.Errorf("random part length = %d, want 32", len(parts[1]))
	}
	for _, c := range parts[1] {
		if !strings.ContainsRune(hangoutIDAlphabet, c) {
			t.Errorf("unexpected character %q in id %q", c, id)
		}
	}
}

func TestGenerateHangoutIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateHangoutID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestRateIDSigning(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "test-secret")

	rateID := GenerateRateID()
	signed, err := SignRateID(rateID)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	got, err := VerifyRateID(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got != rateID {
		t.Errorf("verified id = %q, want %q", got, rateID)
	}
}

func TestRateIDRejectsTampering(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "test-secret")

	signed, err := SignRateID(GenerateRateID())
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := VerifyRateID(signed + "x"); err == nil {
		t.Error("tampered token accepted")
	}
	if _, err := VerifyRateID("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}

	// A token signed under a different secret is worthless.
	t.Setenv("COOKIE_SECRET", "other-secret")
	if _, err := VerifyRateID(signed); err == nil {
		t.Error("token from another secret accepted")
	}
}

func TestRateIDRequiresSecret(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "")

	if _, err := SignRateID("some-id"); err == nil {
		t.Error("signing without a secret succeeded")
	}
}
