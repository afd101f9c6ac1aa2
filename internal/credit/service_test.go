package credit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateReport(ctx context.Context, report *CreditReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRepository) ListReportsByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]CreditReport, error) {
	args := m.Called(ctx, participantID, limit)
	return args.Get(0).([]CreditReport), args.Error(1)
}

// MockHistory is a mock implementation of VerifiedHistory
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) ListVerifiedClaims(ctx context.Context, participantID uuid.UUID) ([]claims.WorkClaim, error) {
	args := m.Called(ctx, participantID)
	return args.Get(0).([]claims.WorkClaim), args.Error(1)
}

func (m *MockHistory) CountAttestationsPerVerifiedClaim(ctx context.Context, participantID uuid.UUID) (float64, error) {
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

func verifiedClaims(participantID uuid.UUID, hours float64, count int) []claims.WorkClaim {
	out := make([]claims.WorkClaim, count)
	for i := range out {
		out[i] = claims.WorkClaim{
			ID:            uuid.New(),
			ParticipantID: participantID,
			HoursWorked:   hours,
			Status:        claims.StatusVerified,
		}
	}
	return out
}

func setupReportTest(t *testing.T, verifiedDays int, hours, avgPeers float64) (*CreditReport, error) {
	t.Helper()
	mockRepo := new(MockRepository)
	mockHistory := new(MockHistory)
	mockIdentity := new(MockIdentityService)
	service := NewService(mockRepo, mockHistory, mockIdentity)

	participantID := uuid.New()
	mockIdentity.On("GetParticipant", mock.Anything, participantID).Return(&identity.Participant{
		ID:                participantID,
		Name:              "Amina",
		ReputationScore:   60,
		TotalVerifiedDays: verifiedDays,
	}, nil)
	mockHistory.On("ListVerifiedClaims", mock.Anything, participantID).
		Return(verifiedClaims(participantID, hours, 3), nil)
	mockHistory.On("CountAttestationsPerVerifiedClaim", mock.Anything, participantID).
		Return(avgPeers, nil)
	mockRepo.On("CreateReport", mock.Anything, mock.AnythingOfType("*credit.CreditReport")).Return(nil)

	return service.GenerateReport(context.Background(), participantID)
}

func TestGenerateReportEmergingTier(t *testing.T) {
	// 66 verified days is 3 months of tenure; 8 hour days and 3 peers.
	report, err := setupReportTest(t, 66, 8, 3)
	assert.NoError(t, err)

	// 3*4.5 + 3*15 + 40*2.5 + 300 = 458.5, rounded up
	assert.Equal(t, 459, report.Score)
	assert.Equal(t, TierEmerging, report.Tier)
	assert.Equal(t, 3, report.TenureMonths)
	assert.Equal(t, 40.0, report.AvgWeeklyHours)
	assert.Equal(t, int64(3856), report.CreditCeiling)
}

func TestGenerateReportStandardTier(t *testing.T) {
	// Two years of tenure with a full verification circle.
	report, err := setupReportTest(t, 528, 8, 12)
	assert.NoError(t, err)

	// 24*4.5 + 10*15 + 40*2.5 + 300 = 658; peers capped at 10
	assert.Equal(t, 658, report.Score)
	assert.Equal(t, TierStandard, report.Tier)
}

func TestGenerateReportPrimeTier(t *testing.T) {
	report, err := setupReportTest(t, 1320, 8, 10)
	assert.NoError(t, err)

	// 60*4.5 + 10*15 + 40*2.5 + 300 = 820
	assert.Equal(t, 820, report.Score)
	assert.Equal(t, TierPrime, report.Tier)
}

func TestGenerateReportScoreCap(t *testing.T) {
	report, err := setupReportTest(t, 2200, 10, 10)
	assert.NoError(t, err)
	assert.Equal(t, MaxScore, report.Score)
}

func TestGenerateReportMinimumTenure(t *testing.T) {
	// A brand new participant with under a month of verified days still
	// counts one month of tenure.
	report, err := setupReportTest(t, 10, 8, 3)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.TenureMonths)
}

func TestGenerateReportRequiresVerifiedHistory(t *testing.T) {
	mockRepo := new(MockRepository)
	mockHistory := new(MockHistory)
	mockIdentity := new(MockIdentityService)
	service := NewService(mockRepo, mockHistory, mockIdentity)

	participantID := uuid.New()
	mockIdentity.On("GetParticipant", mock.Anything, participantID).Return(&identity.Participant{
		ID: participantID, Name: "Joseph",
	}, nil)
	mockHistory.On("ListVerifiedClaims", mock.Anything, participantID).Return([]claims.WorkClaim{}, nil)

	_, err := service.GenerateReport(context.Background(), participantID)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	mockRepo.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
}
