package token

import (
	"errors"
	"testing"
	"time"

	"github.com/rented/backend/internal/models"
)

func TestNewValueEntropyAndUniqueness(t *testing.T) {
	a := NewAuthority("secret", time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		v, err := a.NewValue()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 32 random bytes, base64url without padding
		if len(v) != 43 {
			t.Fatalf("unexpected value length %d", len(v))
		}
		if seen[v] {
			t.Fatalf("duplicate token value generated")
		}
		seen[v] = true
	}
}

func TestHashIsKeyedAndDeterministic(t *testing.T) {
	a := NewAuthority("secret", time.Hour)
	b := NewAuthority("other-secret", time.Hour)

	h1 := a.Hash("value")
	if h1 != a.Hash("value") {
		t.Fatalf("hash not deterministic")
	}
	if h1 == b.Hash("value") {
		t.Fatalf("hash does not depend on the secret")
	}
	if h1 == a.Hash("value2") {
		t.Fatalf("hash does not depend on the value")
	}
	if len(h1) != 64 {
		t.Fatalf("expected hex sha256, got length %d", len(h1))
	}
}

func TestCheckDistinguishesFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAuthority("secret", 14*24*time.Hour).WithClock(func() time.Time { return now })

	t.Run("nil record", func(t *testing.T) {
		if err := a.Check(nil); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("inactive wins over expiry", func(t *testing.T) {
		tok := &models.WorkOrderToken{IsActive: false, ExpiresAt: now.Add(-time.Hour)}
		if err := a.Check(tok); !errors.Is(err, ErrInactive) {
			t.Fatalf("expected ErrInactive, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		tok := &models.WorkOrderToken{IsActive: true, ExpiresAt: now.Add(-time.Second)}
		if err := a.Check(tok); !errors.Is(err, ErrExpired) {
			t.Fatalf("expected ErrExpired, got %v", err)
		}
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		tok := &models.WorkOrderToken{IsActive: true, ExpiresAt: now}
		if err := a.Check(tok); !errors.Is(err, ErrExpired) {
			t.Fatalf("expected ErrExpired at the boundary, got %v", err)
		}
	})

	t.Run("usable", func(t *testing.T) {
		tok := &models.WorkOrderToken{IsActive: true, ExpiresAt: now.Add(time.Minute)}
		if err := a.Check(tok); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestExpiresAtUsesTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAuthority("secret", 336*time.Hour).WithClock(func() time.Time { return now })
	if got, want := a.ExpiresAt(), now.Add(336*time.Hour); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
