package auth

import (
	"strings"
	"testing"
)

func newTestTokenBox(t *testing.T, secret string) *TokenBox {
	t.Helper()
	box, err := NewTokenBox(secret)
	if err != nil {
		t.Fatalf("NewTokenBox: %v", err)
	}
	return box
}

func TestTokenBox_RoundTrip(t *testing.T) {
	box := newTestTokenBox(t, "test-secret-at-least-16-chars!!")

	sealed, err := box.Seal("gho_exampleAccessToken")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if strings.Contains(sealed, "gho_exampleAccessToken") {
		t.Fatal("Seal() output contains the plaintext")
	}

	got, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got != "gho_exampleAccessToken" {
		t.Errorf("Open() = %q, want %q", got, "gho_exampleAccessToken")
	}
}

func TestTokenBox_FreshNoncePerSeal(t *testing.T) {
	box := newTestTokenBox(t, "test-secret-at-least-16-chars!!")

	a, _ := box.Seal("same")
	b, _ := box.Seal("same")
	if a == b {
		t.Error("two Seal() calls produced identical output")
	}
}

func TestTokenBox_Empty(t *testing.T) {
	box := newTestTokenBox(t, "test-secret-at-least-16-chars!!")

	sealed, err := box.Seal("")
	if err != nil || sealed != "" {
		t.Fatalf("Seal(\"\") = %q, %v; want \"\", nil", sealed, err)
	}
	plain, err := box.Open("")
	if err != nil || plain != "" {
		t.Fatalf("Open(\"\") = %q, %v; want \"\", nil", plain, err)
	}
}

func TestTokenBox_WrongKeyFails(t *testing.T) {
	a := newTestTokenBox(t, "first-secret-at-least-16-chars")
	b := newTestTokenBox(t, "second-secret-at-least-16-chars")

	sealed, _ := a.Seal("gho_token")
	if _, err := b.Open(sealed); err == nil {
		t.Fatal("Open() with a different key should fail")
	}
}

func TestTokenBox_Garbage(t *testing.T) {
	box := newTestTokenBox(t, "test-secret-at-least-16-chars!!")

	for _, in := range []string{"not base64 !!", "c2hvcnQ="} {
		if _, err := box.Open(in); err == nil {
			t.Errorf("Open(%q) should fail", in)
		}
	}
}

func TestNewTokenBox_ShortSecret(t *testing.T) {
	if _, err := NewTokenBox("short"); err == nil {
		t.Fatal("NewTokenBox() should reject secrets shorter than 16 chars")
	}
}
