package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// AttestationDigest is the tamper-evident record attached to an attestation.
// It binds the claim, the verifier and the signing time. It is not a
// public-key signature and must not be treated as an authentication proof.
type AttestationDigest struct {
	Digest     string
	SignedAt   time.Time
	ClaimID    string
	VerifierID string
}

// Signer produces attestation digests.
type Signer interface {
	Sign(claimID, verifierID string, at time.Time) AttestationDigest
	Verify(d AttestationDigest) bool
}

type sha256Signer struct{}

func NewSigner() Signer {
	return &sha256Signer{}
}

func (s *sha256Signer) Sign(claimID, verifierID string, at time.Time) AttestationDigest {
	return AttestationDigest{
		Digest:     digestOf(claimID, verifierID, at),
		SignedAt:   at,
		ClaimID:    claimID,
		VerifierID: verifierID,
	}
}

// Verify recomputes the digest from the recorded fields. A mismatch means
// the stored record was altered after signing.
func (s *sha256Signer) Verify(d AttestationDigest) bool {
	return d.Digest == digestOf(d.ClaimID, d.VerifierID, d.SignedAt)
}

func digestOf(claimID, verifierID string, at time.Time) string {
	payload := fmt.Sprintf("%s|%s|%d", claimID, verifierID, at.UnixNano())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
