package auth

import (
	"strings"
	"testing"
	"time"
)

func TestPassword_HashVerify(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !VerifyPassword("secret1", hash) {
		t.Fatal("correct password must verify")
	}
	if VerifyPassword("secret2", hash) {
		t.Fatal("wrong password must not verify")
	}
}

func TestPassword_SaltedHashesDiffer(t *testing.T) {
	a, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ (per-record salt)")
	}
}

func TestPassword_HashVerify_LongInput(t *testing.T) {
	// the transport accepts passwords up to 128 characters, well past
	// bcrypt's 72-byte input limit; hashing must still succeed and every
	// byte must stay significant
	long := strings.Repeat("a", 100)

	hash, err := HashPassword(long)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !VerifyPassword(long, hash) {
		t.Fatal("correct long password must verify")
	}
	if VerifyPassword(long+"b", hash) {
		t.Fatal("password differing past byte 72 must not verify")
	}
	if VerifyPassword(strings.Repeat("a", 72), hash) {
		t.Fatal("72-byte prefix of the password must not verify")
	}
}

func TestPassword_VerifyGarbageHash(t *testing.T) {
	if VerifyPassword("secret1", "not-a-bcrypt-hash") {
		t.Fatal("garbage hash must not verify")
	}
}

func TestToken_HashVerify_LongInput(t *testing.T) {
	// a signed refresh token is far longer than bcrypt's 72-byte input limit
	token, err := GenerateRefreshToken("alice", []byte("s"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if len(token) <= 72 {
		t.Fatalf("expected a long token, got %d bytes", len(token))
	}

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken error: %v", err)
	}
	if !VerifyToken(token, hash) {
		t.Fatal("token must verify against its own hash")
	}

	// flipping anything after byte 72 must still break verification
	tampered := token[:len(token)-1] + flipLastChar(token)
	if VerifyToken(tampered, hash) {
		t.Fatal("tampered token must not verify")
	}
}

func flipLastChar(s string) string {
	if strings.HasSuffix(s, "A") {
		return "B"
	}
	return "A"
}
