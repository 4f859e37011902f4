package nonce

import (
	"testing"
	"time"
)

func TestVerify(t *testing.T) {
	tok := New("secret", "delete:record:abc")

	if !Verify("secret", "delete:record:abc", tok) {
		t.Error("valid token rejected")
	}
	if Verify("secret", "delete:record:other", tok) {
		t.Error("token accepted for a different scope")
	}
	if Verify("other-secret", "delete:record:abc", tok) {
		t.Error("token accepted under a different secret")
	}
	if Verify("secret", "delete:record:abc", "") {
		t.Error("empty token accepted")
	}
}

func TestStableWithinTick(t *testing.T) {
	if New("s", "scope") != New("s", "scope") {
		t.Error("token should be stable per secret and scope within a tick")
	}
	if len(New("s", "scope")) != 20 {
		t.Errorf("token length = %d", len(New("s", "scope")))
	}
}

func TestExpiry(t *testing.T) {
	// Noon UTC lands exactly on a half-life tick boundary.
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	tok := New("secret", "delete:record:abc")

	now = func() time.Time { return base.Add(Lifetime / 2) }
	if !Verify("secret", "delete:record:abc", tok) {
		t.Error("token from the previous tick rejected")
	}

	now = func() time.Time { return base.Add(Lifetime + Lifetime/2) }
	if Verify("secret", "delete:record:abc", tok) {
		t.Error("expired token accepted")
	}
}
