package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatic(t *testing.T) {
	tests := []struct {
		name   string
		p      Static
		wantID string
		wantOK bool
	}{
		{"named owner", Static("alice"), "alice", true},
		{"empty is anonymous", Static(""), "", false},
		{"blank is anonymous", Static("   "), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.p.OwnerID(context.Background())
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("OwnerID() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestContextProvider(t *testing.T) {
	p := Context{Fallback: Static("fallback")}

	if id, ok := p.OwnerID(context.Background()); !ok || id != "fallback" {
		t.Errorf("without context owner got (%q, %v)", id, ok)
	}

	ctx := WithOwner(context.Background(), "bob")
	if id, ok := p.OwnerID(ctx); !ok || id != "bob" {
		t.Errorf("with context owner got (%q, %v)", id, ok)
	}

	if _, ok := (Context{}).OwnerID(context.Background()); ok {
		t.Error("context provider without fallback should be unauthenticated")
	}
}

func TestRequire(t *testing.T) {
	if _, err := Require(context.Background(), Anonymous); !errors.Is(err, ErrOwnerMissing) {
		t.Errorf("Require(Anonymous) error = %v, want %v", err, ErrOwnerMissing)
	}
	if _, err := Require(context.Background(), nil); !errors.Is(err, ErrOwnerMissing) {
		t.Errorf("Require(nil) error = %v, want %v", err, ErrOwnerMissing)
	}
	id, err := Require(context.Background(), Static("carol"))
	if err != nil || id != "carol" {
		t.Errorf("Require(carol) = (%q, %v)", id, err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := TokenConfig{Secret: "s3cret", Issuer: "slotify"}

	token, err := IssueToken("alice", cfg, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "alice")
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("expected an expiry")
	}

	p, err := FromToken(token, cfg)
	if err != nil {
		t.Fatalf("FromToken failed: %v", err)
	}
	if id, ok := p.OwnerID(context.Background()); !ok || id != "alice" {
		t.Errorf("provider owner = (%q, %v)", id, ok)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	cfg := TokenConfig{Secret: "s3cret", Issuer: "slotify"}
	valid, err := IssueToken("alice", cfg, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	expired, err := IssueToken("alice", cfg, time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		cfg     TokenConfig
		wantErr error
	}{
		{"empty", "", cfg, ErrMissingToken},
		{"no secret", valid, TokenConfig{}, ErrMissingSecret},
		{"wrong secret", valid, TokenConfig{Secret: "other", Issuer: "slotify"}, ErrInvalidToken},
		{"wrong issuer", valid, TokenConfig{Secret: "s3cret", Issuer: "someone-else"}, ErrInvalidToken},
		{"expired", expired, cfg, ErrInvalidToken},
		{"garbage", "not.a.token", cfg, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseToken error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIssueToken_RequiresOwner(t *testing.T) {
	if _, err := IssueToken(" ", TokenConfig{Secret: "x"}, 0, time.Now()); !errors.Is(err, ErrOwnerMissing) {
		t.Errorf("IssueToken error = %v, want %v", err, ErrOwnerMissing)
	}
}
