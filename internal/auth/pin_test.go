package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestValidPin(t *testing.T) {
	tests := []struct {
		pin  string
		want bool
	}{
		{"0000", true},
		{"1234", true},
		{"9999", true},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"12 4", false},
		{"", false},
		{"١٢٣٤", false}, // non-ASCII digits
		{"-123", false},
	}

	for _, tt := range tests {
		if got := ValidPin(tt.pin); got != tt.want {
			t.Errorf("ValidPin(%q) = %v, want %v", tt.pin, got, tt.want)
		}
	}
}

func TestHashAndVerifyPin(t *testing.T) {
	hash, err := HashPin("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPin failed: %v", err)
	}

	if hash == "1234" {
		t.Fatal("hash must not equal the plain PIN")
	}
	if !VerifyPin("1234", hash) {
		t.Error("correct PIN did not verify")
	}
	if VerifyPin("1235", hash) {
		t.Error("wrong PIN verified")
	}
	if VerifyPin("1234", "not-a-hash") {
		t.Error("garbage hash verified")
	}
}

func TestHashPin_DistinctSalts(t *testing.T) {
	h1, err := HashPin("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPin failed: %v", err)
	}
	h2, err := HashPin("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPin failed: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same PIN should differ")
	}
}

func TestLockedError_MinutesRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		until time.Time
		want  int
	}{
		{"five minutes", now.Add(5 * time.Minute), 5},
		{"rounds up", now.Add(4*time.Minute + time.Second), 5},
		{"under a minute still one", now.Add(10 * time.Second), 1},
		{"expired", now.Add(-time.Minute), 0},
		{"exactly now", now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &LockedError{Until: tt.until}
			if got := e.MinutesRemaining(now); got != tt.want {
				t.Errorf("MinutesRemaining = %d, want %d", got, tt.want)
			}
		})
	}
}
