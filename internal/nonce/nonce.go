// Package nonce mints and verifies the confirmation tokens that gate
// destructive actions. Tokens are bound to a coarse time tick so a
// leaked URL stops verifying after Lifetime at the latest.
package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Lifetime bounds how long a minted token verifies. Verification accepts
// the current and the previous half-life tick, so a token is valid for
// between Lifetime/2 and Lifetime depending on when it was minted.
const Lifetime = 24 * time.Hour

var now = time.Now

func tick() int64 {
	return now().Unix() / int64(Lifetime/2/time.Second)
}

// New returns the confirmation token for an action scope, e.g.
// "delete:record:<id>".
func New(secret, scope string) string {
	return mint(secret, scope, tick())
}

func mint(secret, scope string, tick int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d:%s", tick, scope)
	return hex.EncodeToString(mac.Sum(nil))[:20]
}

// Verify reports whether token matches the expected token for scope and
// was minted within the last Lifetime.
func Verify(secret, scope, token string) bool {
	if token == "" {
		return false
	}
	t := tick()
	for _, tk := range []int64{t, t - 1} {
		if hmac.Equal([]byte(mint(secret, scope, tk)), []byte(token)) {
			return true
		}
	}
	return false
}
