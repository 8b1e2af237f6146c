package utils

import (
	"testing"
	"time"
)

func TestJWTIssuerRoundTrip(t *testing.T) {
	j := NewJWTIssuer("secret", time.Minute, time.Hour)

	access, err := j.AccessToken("alice")
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if sub, err := j.Subject(access, false); err != nil || sub != "alice" {
		t.Fatalf("access subject: sub=%q err=%v", sub, err)
	}
	if _, err := j.Subject(access, true); err != ErrInvalidToken {
		t.Fatalf("access token accepted as refresh: %v", err)
	}

	refresh, err := j.RefreshToken("alice")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if _, err := j.Subject(refresh, false); err != ErrInvalidToken {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
	if sub, err := j.Subject(refresh, true); err != nil || sub != "alice" {
		t.Fatalf("refresh subject: sub=%q err=%v", sub, err)
	}
}

func TestJWTIssuerRejectsForeignSecretAndExpiry(t *testing.T) {
	other := NewJWTIssuer("other", time.Minute, time.Hour)
	tok, _ := other.AccessToken("bob")
	if _, err := NewJWTIssuer("secret", time.Minute, time.Hour).Subject(tok, false); err != ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}

	expired := NewJWTIssuer("secret", -time.Minute, time.Hour)
	tok, _ = expired.AccessToken("bob")
	if _, err := expired.Subject(tok, false); err != ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken for expired token, got %v", err)
	}
}
