package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
	"fairwork/labor-trust/labor-trust-backend/internal/settlement"
	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
	"fairwork/labor-trust/labor-trust-backend/pkg/geospatial"
	"fairwork/labor-trust/labor-trust-backend/pkg/security"
	"fairwork/labor-trust/labor-trust-backend/pkg/workflows"
)

const (
	sealReputationReward   = 0.5
	attestReputationReward = 0.5
)

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	QuorumThreshold    int
	MaxProximityMeters float64
	RewardVerifiers    bool
	SlashPenalty       float64
}

func (c Config) withDefaults() Config {
	if c.QuorumThreshold <= 0 {
		c.QuorumThreshold = 3
	}
	if c.MaxProximityMeters <= 0 {
		c.MaxProximityMeters = 500
	}
	if c.SlashPenalty <= 0 {
		c.SlashPenalty = 5.0
	}
	return c
}

// AttestRequest carries one peer attestation. Proximity may arrive as a
// precomputed distance or as verifier coordinates to resolve against the
// claim's geolocation.
type AttestRequest struct {
	ClaimID         uuid.UUID
	VerifierID      uuid.UUID
	ProximityMeters *float64
	VerifierLon     *float64
	VerifierLat     *float64
}

// AttestationResult reports the outcome of one attestation.
type AttestationResult struct {
	Sealed           bool               `json:"sealed"`
	AttestationCount int                `json:"attestation_count"`
	Settlement       *claims.Settlement `json:"settlement,omitempty"`
}

// Engine owns every mutating operation on claims and reputation. All
// mutations on a given claim go through its per-claim lock; reputation
// writes hold per-participant locks acquired in a fixed global order.
type Engine struct {
	claims   claims.Repository
	identity identity.Service
	signer   security.Signer
	anchorer settlement.Anchorer
	fallback settlement.Anchorer
	sm       *workflows.StateMachine
	logger   *zap.Logger
	cfg      Config

	claimLocks       *keyedMutex
	participantLocks *keyedMutex
}

func NewEngine(claimRepo claims.Repository, identitySvc identity.Service, signer security.Signer, anchorer settlement.Anchorer, logger *zap.Logger, cfg Config) *Engine {
	return &Engine{
		claims:           claimRepo,
		identity:         identitySvc,
		signer:           signer,
		anchorer:         anchorer,
		fallback:         settlement.NewLocalAnchorer(),
		sm:               workflows.NewClaimStateMachine(),
		logger:           logger,
		cfg:              cfg.withDefaults(),
		claimLocks:       newKeyedMutex(),
		participantLocks: newKeyedMutex(),
	}
}

// Attest validates and records one peer attestation, sealing the claim
// when quorum is reached. A failed check leaves the ledger untouched.
func (e *Engine) Attest(ctx context.Context, req AttestRequest) (*AttestationResult, error) {
	unlockClaim := e.claimLocks.Lock(req.ClaimID.String())
	defer unlockClaim()

	claim, err := e.claims.GetClaimByID(ctx, req.ClaimID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to load claim", err)
	}
	if claim == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "claim %s not found", req.ClaimID)
	}
	if claim.ParticipantID == req.VerifierID {
		return nil, apperr.New(apperr.KindAuthorization, "participants cannot verify their own claims")
	}
	switch claim.Status {
	case claims.StatusVerified:
		return nil, apperr.Newf(apperr.KindConflict, "claim %s is already sealed", claim.ID)
	case claims.StatusRejected:
		return nil, apperr.Newf(apperr.KindConflict, "claim %s was rejected", claim.ID)
	}

	// The verifier must be a registered participant before anything is
	// written; attestation rows reference participants.
	if _, err := e.identity.GetParticipant(ctx, req.VerifierID); err != nil {
		return nil, err
	}

	existing, err := e.claims.GetAttestation(ctx, req.ClaimID, req.VerifierID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to check attestation", err)
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.KindConflict,
			"verifier %s already attested claim %s", req.VerifierID, req.ClaimID)
	}

	proximity, err := e.resolveProximity(claim, req)
	if err != nil {
		return nil, err
	}
	if proximity != nil && *proximity > e.cfg.MaxProximityMeters {
		return nil, apperr.Newf(apperr.KindPrecondition,
			"verifier is %.0fm from the claim site, above the %.0fm limit",
			*proximity, e.cfg.MaxProximityMeters)
	}

	// Tamper-evident record of who attested what and when. Not an
	// authentication proof; there is no key exchange here.
	digest := e.signer.Sign(claim.ID.String(), req.VerifierID.String(), time.Now())

	attestation := &claims.Attestation{
		ID:              uuid.New(),
		ClaimID:         claim.ID,
		VerifierID:      req.VerifierID,
		SignatureDigest: digest.Digest,
		ProximityMeters: proximity,
		IsValid:         true,
		SignedAt:        digest.SignedAt,
		CreatedAt:       time.Now(),
	}
	if err := e.claims.CreateAttestation(ctx, attestation); err != nil {
		if claims.IsUniqueViolation(err) {
			return nil, apperr.Newf(apperr.KindConflict,
				"verifier %s already attested claim %s", req.VerifierID, req.ClaimID)
		}
		return nil, apperr.Wrap(apperr.KindStorage, "failed to record attestation", err)
	}

	unlockParticipants := e.participantLocks.LockAll(req.VerifierID, claim.ParticipantID)
	defer unlockParticipants()

	// A failed attestation must leave the ledger untouched: if either
	// identity write fails, the attestation row is discarded before
	// returning so nothing counts toward quorum.
	if err := e.identity.RecordAttestationMade(ctx, req.VerifierID); err != nil {
		e.discardAttestation(ctx, claim.ID, req.VerifierID)
		return nil, err
	}
	if e.cfg.RewardVerifiers {
		if _, err := e.identity.AdjustReputation(ctx, req.VerifierID, attestReputationReward); err != nil {
			e.discardAttestation(ctx, claim.ID, req.VerifierID)
			return nil, err
		}
	}

	count, err := e.claims.CountValidAttestations(ctx, claim.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to count attestations", err)
	}

	if count < e.cfg.QuorumThreshold {
		// First attestation moves the claim out of Pending.
		if claim.Status == claims.StatusPending {
			if _, err := e.claims.TransitionStatus(ctx, claim.ID,
				[]claims.ClaimStatus{claims.StatusPending}, claims.StatusPartiallyVerified); err != nil {
				return nil, apperr.Wrap(apperr.KindStorage, "failed to update claim status", err)
			}
		}
		return &AttestationResult{Sealed: false, AttestationCount: count}, nil
	}

	return e.seal(ctx, claim, count)
}

// discardAttestation backs out an attestation row after a follow-up
// write failed. Best effort: a delete failure is logged, not returned,
// since the caller is already propagating the original error.
func (e *Engine) discardAttestation(ctx context.Context, claimID, verifierID uuid.UUID) {
	if err := e.claims.DeleteAttestation(ctx, claimID, verifierID); err != nil {
		e.logger.Error("failed to discard attestation after write failure",
			zap.String("claim_id", claimID.String()),
			zap.String("verifier_id", verifierID.String()),
			zap.Error(err))
	}
}

// seal performs the exactly-once Verified transition. The repository
// compare-and-set is the guard: if another writer sealed the claim
// between our read and this update, zero rows change and we back off.
func (e *Engine) seal(ctx context.Context, claim *claims.WorkClaim, count int) (*AttestationResult, error) {
	record, err := e.anchorer.Anchor(ctx, claim, count)
	if err != nil {
		// The engine must produce a valid seal without the external
		// collaborator; fall back to a local anchor.
		e.logger.Warn("settlement anchorer failed, sealing with local anchor",
			zap.String("claim_id", claim.ID.String()), zap.Error(err))
		record, err = e.fallback.Anchor(ctx, claim, count)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "failed to anchor settlement", err)
		}
	}

	sealed, err := e.claims.SealClaim(ctx, claim.ID, record)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to seal claim", err)
	}
	if !sealed {
		return nil, apperr.Newf(apperr.KindConflict, "claim %s is already sealed", claim.ID)
	}

	if err := e.identity.RecordVerifiedDay(ctx, claim.ParticipantID); err != nil {
		return nil, err
	}
	if _, err := e.identity.AdjustReputation(ctx, claim.ParticipantID, sealReputationReward); err != nil {
		return nil, err
	}

	e.logger.Info("claim sealed",
		zap.String("claim_id", claim.ID.String()),
		zap.String("owner_id", claim.ParticipantID.String()),
		zap.Int("attestations", count),
		zap.String("settlement_ref", record.Reference))

	return &AttestationResult{
		Sealed:           true,
		AttestationCount: count,
		Settlement:       &record,
	}, nil
}

// Reject moves a non-terminal claim to Rejected.
func (e *Engine) Reject(ctx context.Context, claimID uuid.UUID) error {
	unlock := e.claimLocks.Lock(claimID.String())
	defer unlock()

	claim, err := e.claims.GetClaimByID(ctx, claimID)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to load claim", err)
	}
	if claim == nil {
		return apperr.Newf(apperr.KindNotFound, "claim %s not found", claimID)
	}
	if !e.sm.CanTransition(string(claim.Status), string(claims.StatusRejected)) {
		return apperr.Newf(apperr.KindConflict, "claim %s cannot be rejected from status %s", claimID, claim.Status)
	}

	moved, err := e.claims.TransitionStatus(ctx, claimID,
		[]claims.ClaimStatus{claims.StatusPending, claims.StatusPartiallyVerified}, claims.StatusRejected)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to reject claim", err)
	}
	if !moved {
		return apperr.Newf(apperr.KindConflict, "claim %s cannot be rejected from status %s", claimID, claim.Status)
	}
	return nil
}

// Slash penalizes a verifier for a bad attestation: the attestation's
// validity flag is cleared and a fixed reputation penalty applied,
// floored at zero. Single-authority administrative action; there is no
// quorum on slashing.
func (e *Engine) Slash(ctx context.Context, verifierID, claimID uuid.UUID) error {
	unlockClaim := e.claimLocks.Lock(claimID.String())
	defer unlockClaim()

	attestation, err := e.claims.GetAttestation(ctx, claimID, verifierID)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to load attestation", err)
	}
	if attestation == nil {
		return apperr.Newf(apperr.KindPrecondition,
			"participant %s has no attestation on claim %s", verifierID, claimID)
	}

	if err := e.claims.InvalidateAttestation(ctx, claimID, verifierID); err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to invalidate attestation", err)
	}

	unlockParticipant := e.participantLocks.Lock(verifierID.String())
	defer unlockParticipant()

	newScore, err := e.identity.AdjustReputation(ctx, verifierID, -e.cfg.SlashPenalty)
	if err != nil {
		return err
	}

	e.logger.Info("verifier slashed",
		zap.String("verifier_id", verifierID.String()),
		zap.String("claim_id", claimID.String()),
		zap.Float64("reputation", newScore))
	return nil
}

func (e *Engine) resolveProximity(claim *claims.WorkClaim, req AttestRequest) (*float64, error) {
	if req.ProximityMeters != nil {
		if *req.ProximityMeters < 0 {
			return nil, apperr.New(apperr.KindValidation, "proximity must be non-negative")
		}
		return req.ProximityMeters, nil
	}
	if req.VerifierLon == nil || req.VerifierLat == nil {
		return nil, nil
	}
	if len(claim.Geolocation) == 0 {
		return nil, nil
	}

	geometry, err := geospatial.ValidateGeoJSON(string(claim.Geolocation))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "claim geolocation is not valid GeoJSON", err)
	}
	site := geospatial.CalculateCentroid(geometry)
	distance := geospatial.DistanceMeters(*req.VerifierLon, *req.VerifierLat, site[0], site[1])
	return &distance, nil
}
