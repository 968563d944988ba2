package security

import (
	"errors"
	"strings"
	"testing"
)

// Params réduits pour garder les tests rapides.
var testParams = &Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashAndCompare(t *testing.T) {
	hasher := NewArgon2Hasher(testParams)

	hash, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("unexpected PHC format: %q", hash)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals the raw password")
	}

	if err := hasher.Compare(hash, "correct horse battery staple"); err != nil {
		t.Errorf("compare with right password: %v", err)
	}
	if err := hasher.Compare(hash, "wrong password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("compare with wrong password: want mismatch, got %v", err)
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewArgon2Hasher(testParams)

	h1, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt missing")
	}
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	hasher := NewArgon2Hasher(testParams)

	for _, bad := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=8192,t=1,p=1$%%%$%%%",              // base64 invalide
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g", // mauvais algo
	} {
		if err := hasher.Compare(bad, "whatever"); err == nil {
			t.Errorf("malformed hash accepted: %q", bad)
		}
	}
}

// Comparer doit relire les params depuis le hash stocké, pas depuis
// la config courante : un hash produit avec d'autres coûts reste vérifiable.
func TestCompareUsesStoredParams(t *testing.T) {
	heavy := NewArgon2Hasher(&Argon2Params{
		Memory:      16 * 1024,
		Iterations:  2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	hash, err := heavy.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	light := NewArgon2Hasher(testParams)
	if err := light.Compare(hash, "pw"); err != nil {
		t.Errorf("hash with different params not verifiable: %v", err)
	}
}
