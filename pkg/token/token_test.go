package token

import (
	"strings"
	"testing"
)

func TestNewTokenShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		if len(tok) != tokenLength {
			t.Fatalf("expected length %d, got %d (%q)", tokenLength, len(tok), tok)
		}
		for _, r := range tok {
			if !strings.ContainsRune(tokenAlphabet, r) {
				t.Fatalf("token %q contains %q outside the alphabet", tok, r)
			}
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %q in 100 draws", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestNewClaimCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewClaimCode()
		if err != nil {
			t.Fatalf("failed to generate claim code: %v", err)
		}
		if len(code) != claimLength {
			t.Fatalf("expected length %d, got %d (%q)", claimLength, len(code), code)
		}
		// Codes are typed by hand; ambiguous glyphs must never appear
		if strings.ContainsAny(code, "0O1IL") {
			t.Fatalf("claim code %q contains an ambiguous glyph", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(claimAlphabet, r) {
				t.Fatalf("claim code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}
