package authservice

import (
	"errors"
	"testing"
	"time"

	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/usersvc"
)

var testUser = usersvc.User{ID: 42, Email: "alice@example.com", Name: "Alice"}

func TestTokenizerRoundTrip(t *testing.T) {
	tok := NewTokenizer([]byte("test-secret"), time.Hour)

	token, err := tok.Generate(testUser)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("Generate returned empty token")
	}

	claims, err := tok.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != testUser.ID {
		t.Errorf("subject = %d, want %d", claims.UserID, testUser.ID)
	}
	if claims.Email != testUser.Email {
		t.Errorf("email = %q, want %q", claims.Email, testUser.Email)
	}
	if claims.TokenID == "" {
		t.Error("token id claim is empty")
	}
}

func TestTokenizerUniqueTokenIDs(t *testing.T) {
	tok := NewTokenizer([]byte("test-secret"), time.Hour)

	a, _ := tok.Generate(testUser)
	b, _ := tok.Generate(testUser)

	ca, err := tok.Verify(a)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	cb, err := tok.Verify(b)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ca.TokenID == cb.TokenID {
		t.Error("two tokens share a token id")
	}
}

func TestTokenizerExpired(t *testing.T) {
	tok := NewTokenizer([]byte("test-secret"), -time.Minute)

	token, err := tok.Generate(testUser)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := tok.Verify(token); !errors.Is(err, authsvc.ErrAuthentication) {
		t.Fatalf("expired token: err = %v, want ErrAuthentication", err)
	}
}

func TestTokenizerWrongSecret(t *testing.T) {
	issuer := NewTokenizer([]byte("issuer-secret"), time.Hour)
	verifier := NewTokenizer([]byte("other-secret"), time.Hour)

	token, err := issuer.Generate(testUser)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, authsvc.ErrAuthentication) {
		t.Fatalf("forged token: err = %v, want ErrAuthentication", err)
	}
}

func TestTokenizerMalformed(t *testing.T) {
	tok := NewTokenizer([]byte("test-secret"), time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := tok.Verify(token); !errors.Is(err, authsvc.ErrAuthentication) {
			t.Errorf("Verify(%q): err = %v, want ErrAuthentication", token, err)
		}
	}
}
