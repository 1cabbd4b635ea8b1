// Package token implements the portal token authority: minting, hashing and
// checking the bearer tokens that grant external providers scoped access to a
// single work order.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	"github.com/rented/backend/internal/models"
)

// Distinguishable validation failures, so callers can tell "bad link" from
// "link already used" from "link expired".
var (
	ErrNotFound = errors.New("token not found")
	ErrInactive = errors.New("token inactive")
	ErrExpired  = errors.New("token expired")
)

// Authority mints and checks portal tokens. Token values carry 256 bits of
// randomness and are never persisted; only the keyed hash is stored.
type Authority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthority builds an authority with the given hash key and token TTL.
func NewAuthority(secret string, ttl time.Duration) *Authority {
	return &Authority{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (a *Authority) WithClock(now func() time.Time) *Authority {
	a.now = now
	return a
}

// NewValue returns a fresh cleartext token value. The caller must hand it to
// the external party immediately; it cannot be recovered later.
func (a *Authority) NewValue() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate token")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hash computes the stored form of a token value: HMAC-SHA256 under the
// authority secret, hex encoded. A database dump therefore discloses no
// usable tokens.
func (a *Authority) Hash(value string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// ExpiresAt returns the expiry for a token minted now.
func (a *Authority) ExpiresAt() time.Time {
	return a.now().UTC().Add(a.ttl)
}

// Check classifies a stored token record as usable or not. The record must
// have been resolved by hash already; absence is the caller's ErrNotFound.
func (a *Authority) Check(tok *models.WorkOrderToken) error {
	if tok == nil {
		return ErrNotFound
	}
	if !tok.IsActive {
		return ErrInactive
	}
	if !a.now().UTC().Before(tok.ExpiresAt) {
		return ErrExpired
	}
	return nil
}
