package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
	"fairwork/labor-trust/labor-trust-backend/internal/settlement"
	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
	"fairwork/labor-trust/labor-trust-backend/pkg/security"
)

// MockClaimRepository is a mock implementation of claims.Repository
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) CreateClaim(ctx context.Context, claim *claims.WorkClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) GetClaimByID(ctx context.Context, id uuid.UUID) (*claims.WorkClaim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claims.WorkClaim), args.Error(1)
}

func (m *MockClaimRepository) ListClaimsByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]claims.WorkClaim, error) {
	args := m.Called(ctx, participantID, limit)
	return args.Get(0).([]claims.WorkClaim), args.Error(1)
}

func (m *MockClaimRepository) ListClaimsByParticipantSince(ctx context.Context, participantID uuid.UUID, since time.Time, limit int) ([]claims.WorkClaim, error) {
	args := m.Called(ctx, participantID, since, limit)
	return args.Get(0).([]claims.WorkClaim), args.Error(1)
}

func (m *MockClaimRepository) ListVerifiedClaims(ctx context.Context, participantID uuid.UUID) ([]claims.WorkClaim, error) {
	args := m.Called(ctx, participantID)
	return args.Get(0).([]claims.WorkClaim), args.Error(1)
}

func (m *MockClaimRepository) GetScanSnapshot(ctx context.Context) (*claims.ScanSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claims.ScanSnapshot), args.Error(1)
}

func (m *MockClaimRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []claims.ClaimStatus, to claims.ClaimStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockClaimRepository) SealClaim(ctx context.Context, id uuid.UUID, record claims.Settlement) (bool, error) {
	args := m.Called(ctx, id, record)
	return args.Bool(0), args.Error(1)
}

func (m *MockClaimRepository) CreateAttestation(ctx context.Context, attestation *claims.Attestation) error {
	args := m.Called(ctx, attestation)
	return args.Error(0)
}

func (m *MockClaimRepository) GetAttestation(ctx context.Context, claimID, verifierID uuid.UUID) (*claims.Attestation, error) {
	args := m.Called(ctx, claimID, verifierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claims.Attestation), args.Error(1)
}

func (m *MockClaimRepository) ListAttestationsByClaim(ctx context.Context, claimID uuid.UUID) ([]claims.Attestation, error) {
	args := m.Called(ctx, claimID)
	return args.Get(0).([]claims.Attestation), args.Error(1)
}

func (m *MockClaimRepository) CountValidAttestations(ctx context.Context, claimID uuid.UUID) (int, error) {
	args := m.Called(ctx, claimID)
	return args.Int(0), args.Error(1)
}

func (m *MockClaimRepository) InvalidateAttestation(ctx context.Context, claimID, verifierID uuid.UUID) error {
	args := m.Called(ctx, claimID, verifierID)
	return args.Error(0)
}

func (m *MockClaimRepository) DeleteAttestation(ctx context.Context, claimID, verifierID uuid.UUID) error {
	args := m.Called(ctx, claimID, verifierID)
	return args.Error(0)
}

func (m *MockClaimRepository) CountAttestationsPerVerifiedClaim(ctx context.Context, participantID uuid.UUID) (float64, error) {
	args := m.Called(ctx, participantID)
	return args.Get(0).(float64), args.Error(1)
}

// MockIdentityService is a mock implementation of identity.Service
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) Register(ctx context.Context, req identity.RegisterRequest) (*identity.Participant, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Participant), args.Error(1)
}

func (m *MockIdentityService) GetParticipant(ctx context.Context, id uuid.UUID) (*identity.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Participant), args.Error(1)
}

func (m *MockIdentityService) ListParticipants(ctx context.Context, locationFilter string) ([]identity.Participant, error) {
	args := m.Called(ctx, locationFilter)
	return args.Get(0).([]identity.Participant), args.Error(1)
}

func (m *MockIdentityService) AdjustReputation(ctx context.Context, id uuid.UUID, delta float64) (float64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockIdentityService) RecordAttestationMade(ctx context.Context, verifierID uuid.UUID) error {
	args := m.Called(ctx, verifierID)
	return args.Error(0)
}

func (m *MockIdentityService) RecordVerifiedDay(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func newTestEngine(repo claims.Repository, identitySvc identity.Service, cfg Config) *Engine {
	return NewEngine(repo, identitySvc, security.NewSigner(), settlement.NewLocalAnchorer(), zap.NewNop(), cfg)
}

func knowsVerifier(m *MockIdentityService, verifierID uuid.UUID) {
	m.On("GetParticipant", mock.Anything, verifierID).
		Return(&identity.Participant{ID: verifierID, Name: "Peer", ReputationScore: 50}, nil)
}

func pendingClaim(ownerID uuid.UUID) *claims.WorkClaim {
	return &claims.WorkClaim{
		ID:            uuid.New(),
		ParticipantID: ownerID,
		ClaimDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		HoursWorked:   8,
		Status:        claims.StatusPending,
		CreatedAt:     time.Now(),
	}
}

func TestAttestRejectsSelfVerification(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	engine := newTestEngine(mockRepo, new(MockIdentityService), Config{})

	ownerID := uuid.New()
	claim := pendingClaim(ownerID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: ownerID,
	})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	mockRepo.AssertNotCalled(t, "CreateAttestation", mock.Anything, mock.Anything)
}

func TestAttestRejectsSealedClaim(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	engine := newTestEngine(mockRepo, new(MockIdentityService), Config{})

	claim := pendingClaim(uuid.New())
	claim.Status = claims.StatusVerified
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: uuid.New(),
	})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAttestRejectsDuplicateVerifier(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{})

	claim := pendingClaim(uuid.New())
	verifierID := uuid.New()
	knowsVerifier(mockIdentity, verifierID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockRepo.On("GetAttestation", mock.Anything, claim.ID, verifierID).
		Return(&claims.Attestation{ClaimID: claim.ID, VerifierID: verifierID}, nil)

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: verifierID,
	})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAttestRejectsUnregisteredVerifier(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{QuorumThreshold: 3, RewardVerifiers: false})

	claim := pendingClaim(uuid.New())
	verifierID := uuid.New()
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockIdentity.On("GetParticipant", mock.Anything, verifierID).
		Return(nil, apperr.Newf(apperr.KindNotFound, "participant %s not found", verifierID))

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: verifierID,
	})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	mockRepo.AssertNotCalled(t, "CreateAttestation", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "CountValidAttestations", mock.Anything, mock.Anything)
}

func TestAttestDiscardsAttestationWhenIdentityWriteFails(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{QuorumThreshold: 3, RewardVerifiers: true})

	claim := pendingClaim(uuid.New())
	verifierID := uuid.New()
	knowsVerifier(mockIdentity, verifierID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockRepo.On("GetAttestation", mock.Anything, claim.ID, verifierID).Return(nil, nil)
	mockRepo.On("CreateAttestation", mock.Anything, mock.AnythingOfType("*claims.Attestation")).Return(nil)
	mockIdentity.On("RecordAttestationMade", mock.Anything, verifierID).Return(nil)
	mockIdentity.On("AdjustReputation", mock.Anything, verifierID, 0.5).
		Return(0.0, apperr.Wrap(apperr.KindStorage, "failed to update reputation", errors.New("connection reset")))
	mockRepo.On("DeleteAttestation", mock.Anything, claim.ID, verifierID).Return(nil)

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: verifierID,
	})

	assert.Error(t, err)
	mockRepo.AssertCalled(t, "DeleteAttestation", mock.Anything, claim.ID, verifierID)
	mockRepo.AssertNotCalled(t, "CountValidAttestations", mock.Anything, mock.Anything)
}

func TestAttestRejectsDistantVerifier(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{MaxProximityMeters: 500})

	claim := pendingClaim(uuid.New())
	verifierID := uuid.New()
	proximity := 750.0
	knowsVerifier(mockIdentity, verifierID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockRepo.On("GetAttestation", mock.Anything, claim.ID, verifierID).Return(nil, nil)

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:         claim.ID,
		VerifierID:      verifierID,
		ProximityMeters: &proximity,
	})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	mockRepo.AssertNotCalled(t, "CreateAttestation", mock.Anything, mock.Anything)
}

func TestAttestBelowQuorumMarksPartiallyVerified(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{QuorumThreshold: 3, RewardVerifiers: false})

	claim := pendingClaim(uuid.New())
	verifierID := uuid.New()
	knowsVerifier(mockIdentity, verifierID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockRepo.On("GetAttestation", mock.Anything, claim.ID, verifierID).Return(nil, nil)
	mockRepo.On("CreateAttestation", mock.Anything, mock.AnythingOfType("*claims.Attestation")).Return(nil)
	mockIdentity.On("RecordAttestationMade", mock.Anything, verifierID).Return(nil)
	mockRepo.On("CountValidAttestations", mock.Anything, claim.ID).Return(1, nil)
	mockRepo.On("TransitionStatus", mock.Anything, claim.ID,
		[]claims.ClaimStatus{claims.StatusPending}, claims.StatusPartiallyVerified).Return(true, nil)

	result, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: verifierID,
	})

	assert.NoError(t, err)
	assert.False(t, result.Sealed)
	assert.Equal(t, 1, result.AttestationCount)
	mockRepo.AssertNotCalled(t, "SealClaim", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttestAtQuorumSealsClaim(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{QuorumThreshold: 3, RewardVerifiers: true})

	ownerID := uuid.New()
	claim := pendingClaim(ownerID)
	claim.Status = claims.StatusPartiallyVerified
	verifierID := uuid.New()

	knowsVerifier(mockIdentity, verifierID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockRepo.On("GetAttestation", mock.Anything, claim.ID, verifierID).Return(nil, nil)
	mockRepo.On("CreateAttestation", mock.Anything, mock.AnythingOfType("*claims.Attestation")).Return(nil)
	mockIdentity.On("RecordAttestationMade", mock.Anything, verifierID).Return(nil)
	mockIdentity.On("AdjustReputation", mock.Anything, verifierID, 0.5).Return(51.0, nil)
	mockRepo.On("CountValidAttestations", mock.Anything, claim.ID).Return(3, nil)
	mockRepo.On("SealClaim", mock.Anything, claim.ID, mock.AnythingOfType("claims.Settlement")).Return(true, nil)
	mockIdentity.On("RecordVerifiedDay", mock.Anything, ownerID).Return(nil)
	mockIdentity.On("AdjustReputation", mock.Anything, ownerID, 0.5).Return(50.5, nil)

	result, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: verifierID,
	})

	assert.NoError(t, err)
	assert.True(t, result.Sealed)
	assert.Equal(t, 3, result.AttestationCount)
	assert.NotNil(t, result.Settlement)
	assert.NotEmpty(t, result.Settlement.Reference)
	assert.NotEmpty(t, result.Settlement.ContentHash)
	mockIdentity.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestAttestSealLostRace(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{QuorumThreshold: 3, RewardVerifiers: false})

	claim := pendingClaim(uuid.New())
	claim.Status = claims.StatusPartiallyVerified
	verifierID := uuid.New()

	knowsVerifier(mockIdentity, verifierID)
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)
	mockRepo.On("GetAttestation", mock.Anything, claim.ID, verifierID).Return(nil, nil)
	mockRepo.On("CreateAttestation", mock.Anything, mock.Anything).Return(nil)
	mockIdentity.On("RecordAttestationMade", mock.Anything, verifierID).Return(nil)
	mockRepo.On("CountValidAttestations", mock.Anything, claim.ID).Return(3, nil)
	mockRepo.On("SealClaim", mock.Anything, claim.ID, mock.Anything).Return(false, nil)

	_, err := engine.Attest(context.Background(), AttestRequest{
		ClaimID:    claim.ID,
		VerifierID: verifierID,
	})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	mockIdentity.AssertNotCalled(t, "RecordVerifiedDay", mock.Anything, mock.Anything)
}

type failingAnchorer struct{}

func (failingAnchorer) Anchor(ctx context.Context, claim *claims.WorkClaim, count int) (claims.Settlement, error) {
	return claims.Settlement{}, errors.New("ledger unavailable")
}

func TestSealFallbackSequenceAdvances(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := NewEngine(mockRepo, mockIdentity, security.NewSigner(), failingAnchorer{}, zap.NewNop(), Config{})

	var sequences []int64
	mockRepo.On("SealClaim", mock.Anything, mock.Anything, mock.AnythingOfType("claims.Settlement")).
		Run(func(args mock.Arguments) {
			sequences = append(sequences, args.Get(2).(claims.Settlement).SequenceNumber)
		}).Return(true, nil)
	mockIdentity.On("RecordVerifiedDay", mock.Anything, mock.Anything).Return(nil)
	mockIdentity.On("AdjustReputation", mock.Anything, mock.Anything, 0.5).Return(50.5, nil)

	for i := 0; i < 3; i++ {
		claim := pendingClaim(uuid.New())
		claim.Status = claims.StatusPartiallyVerified
		result, err := engine.seal(context.Background(), claim, 3)
		assert.NoError(t, err)
		assert.True(t, result.Sealed)
	}

	assert.Equal(t, []int64{1, 2, 3}, sequences)
}

func TestRejectTerminalClaim(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	engine := newTestEngine(mockRepo, new(MockIdentityService), Config{})

	claim := pendingClaim(uuid.New())
	claim.Status = claims.StatusRejected
	mockRepo.On("GetClaimByID", mock.Anything, claim.ID).Return(claim, nil)

	err := engine.Reject(context.Background(), claim.ID)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSlashRequiresAttestation(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	engine := newTestEngine(mockRepo, new(MockIdentityService), Config{})

	claimID := uuid.New()
	verifierID := uuid.New()
	mockRepo.On("GetAttestation", mock.Anything, claimID, verifierID).Return(nil, nil)

	err := engine.Slash(context.Background(), verifierID, claimID)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestSlashAppliesPenalty(t *testing.T) {
	mockRepo := new(MockClaimRepository)
	mockIdentity := new(MockIdentityService)
	engine := newTestEngine(mockRepo, mockIdentity, Config{SlashPenalty: 5.0})

	claimID := uuid.New()
	verifierID := uuid.New()
	mockRepo.On("GetAttestation", mock.Anything, claimID, verifierID).
		Return(&claims.Attestation{ClaimID: claimID, VerifierID: verifierID, IsValid: true}, nil)
	mockRepo.On("InvalidateAttestation", mock.Anything, claimID, verifierID).Return(nil)
	mockIdentity.On("AdjustReputation", mock.Anything, verifierID, -5.0).Return(45.0, nil)

	err := engine.Slash(context.Background(), verifierID, claimID)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIdentity.AssertExpectations(t)
}
