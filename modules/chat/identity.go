package chat

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// Word lists for anonymous display names. Names are purely cosmetic:
// collisions across connections are allowed and must never be used as
// identifiers.
var (
	displayAdjectives = []string{
		"Midnight", "Shadow", "Mystic", "Silent", "Hidden", "Secret", "Unknown",
		"Phantom", "Ghost", "Echo", "Whisper", "Veil", "Mask", "Cipher",
	}
	displayNouns = []string{
		"Visitor", "Wanderer", "Traveler", "Observer", "Spectator", "Witness",
		"Presence", "Entity", "Being", "Soul", "Spirit", "Shadow", "Echo",
	}
)

// IdentityIssuer assigns a unique connection ID and an anonymous display name
// to each new connection.
type IdentityIssuer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewIdentityIssuer creates an issuer seeded with the given source. A nil
// source uses the default shared source.
func NewIdentityIssuer(src rand.Source) *IdentityIssuer {
	issuer := &IdentityIssuer{}
	if src != nil {
		issuer.rng = rand.New(src)
	}
	return issuer
}

// Issue returns a fresh connection ID and display name. Connection IDs are
// UUIDs, so an ID held by a live connection is never reissued.
func (i *IdentityIssuer) Issue() (connectionID, displayName string) {
	return uuid.New().String(), i.displayName()
}

func (i *IdentityIssuer) displayName() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	adj := displayAdjectives[i.intn(len(displayAdjectives))]
	noun := displayNouns[i.intn(len(displayNouns))]
	return fmt.Sprintf("%s%s%d", adj, noun, i.intn(100))
}

func (i *IdentityIssuer) intn(n int) int {
	if i.rng != nil {
		return i.rng.Intn(n)
	}
	return rand.Intn(n)
}
