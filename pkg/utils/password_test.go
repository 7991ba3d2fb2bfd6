package utils

import "testing"

func TestHashPassword(t *testing.T) {
	salt, hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if salt == "" || hash == "" {
		t.Fatal("expected non-empty salt and hash")
	}
	if hash == "hunter2" {
		t.Fatal("hash must not equal the password")
	}

	// A second call must derive a different salt and therefore a
	// different hash for the same password.
	salt2, hash2, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if salt == salt2 {
		t.Fatal("expected fresh salt per call")
	}
	if hash == hash2 {
		t.Fatal("expected different hash under different salt")
	}
}

func TestCheckPassword(t *testing.T) {
	salt, hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		salt     string
		hash     string
		want     bool
	}{
		{"correct password", "correct-password", salt, hash, true},
		{"wrong password", "wrong-password", salt, hash, false},
		{"wrong salt", "correct-password", "00112233445566778899aabbccddeeff", hash, false},
		{"empty password", "", salt, hash, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.salt, tt.hash); got != tt.want {
				t.Fatalf("CheckPassword = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashPasswordWithSaltIsDeterministic(t *testing.T) {
	first := HashPasswordWithSalt("abc", "deadbeef")
	second := HashPasswordWithSalt("abc", "deadbeef")
	if first != second {
		t.Fatal("same password and salt must hash identically")
	}
	if HashPasswordWithSalt("abd", "deadbeef") == first {
		t.Fatal("different passwords must not collide")
	}
}
