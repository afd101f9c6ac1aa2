package settlement

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
)

// Anchorer turns a sealed claim into a settlement record. The local
// implementation is always sufficient; an external ledger client may be
// swapped in, but sealing never depends on one being present.
type Anchorer interface {
	Anchor(ctx context.Context, claim *claims.WorkClaim, attestationCount int) (claims.Settlement, error)
}

type localAnchorer struct {
	mu   sync.Mutex
	rng  *rand.Rand
	next int64
}

// NewLocalAnchorer produces settlement records with a deterministic
// content hash over the claim fields and a monotonic sequence number.
func NewLocalAnchorer() Anchorer {
	return &localAnchorer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *localAnchorer) Anchor(ctx context.Context, claim *claims.WorkClaim, attestationCount int) (claims.Settlement, error) {
	a.mu.Lock()
	a.next++
	seq := a.next
	ref := fmt.Sprintf("local-%08x", a.rng.Uint32())
	a.mu.Unlock()

	return claims.Settlement{
		Reference:      ref,
		ContentHash:    ContentHash(claim, attestationCount),
		SequenceNumber: seq,
	}, nil
}

// ContentHash binds the claim's identifying fields and the attestation
// count at sealing time.
func ContentHash(claim *claims.WorkClaim, attestationCount int) string {
	payload := fmt.Sprintf("%s|%s|%s|%.4f|%d",
		claim.ID, claim.ParticipantID,
		claim.ClaimDate.Format("2006-01-02"),
		claim.HoursWorked, attestationCount)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
