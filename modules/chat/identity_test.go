package chat

import (
	"math/rand"
	"regexp"
	"testing"
)

var displayNamePattern = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{1,2}$`)

func TestIdentityIssuer_Issue(t *testing.T) {
	issuer := NewIdentityIssuer(rand.NewSource(1))

	id, name := issuer.Issue()

	if id == "" {
		t.Fatal("Issue() returned empty connection ID")
	}
	if len(id) != 36 {
		t.Errorf("Issue() connection ID = %q, want UUID format", id)
	}
	if !displayNamePattern.MatchString(name) {
		t.Errorf("Issue() display name = %q, want AdjectiveNounNumber format", name)
	}
}

func TestIdentityIssuer_UniqueConnectionIDs(t *testing.T) {
	issuer := NewIdentityIssuer(rand.NewSource(1))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, _ := issuer.Issue()
		if seen[id] {
			t.Fatalf("Issue() repeated connection ID %s", id)
		}
		seen[id] = true
	}
}

func TestIdentityIssuer_DeterministicWithSeed(t *testing.T) {
	a := NewIdentityIssuer(rand.NewSource(42))
	b := NewIdentityIssuer(rand.NewSource(42))

	for i := 0; i < 10; i++ {
		_, nameA := a.Issue()
		_, nameB := b.Issue()
		if nameA != nameB {
			t.Fatalf("same seed produced different names: %q vs %q", nameA, nameB)
		}
	}
}

func TestIdentityIssuer_NilSource(t *testing.T) {
	issuer := NewIdentityIssuer(nil)

	_, name := issuer.Issue()
	if !displayNamePattern.MatchString(name) {
		t.Errorf("Issue() display name = %q, want AdjectiveNounNumber format", name)
	}
}
