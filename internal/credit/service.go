package credit

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

// VerifiedHistory is the slice of the claim repository credit scoring reads.
type VerifiedHistory interface {
	ListVerifiedClaims(ctx context.Context, participantID uuid.UUID) ([]claims.WorkClaim, error)
	CountAttestationsPerVerifiedClaim(ctx context.Context, participantID uuid.UUID) (float64, error)
}

type Service interface {
	GenerateReport(ctx context.Context, participantID uuid.UUID) (*CreditReport, error)
	ListReports(ctx context.Context, participantID uuid.UUID, limit int) ([]CreditReport, error)
}

type creditService struct {
	repo     Repository
	history  VerifiedHistory
	identity identity.Service
}

func NewService(repo Repository, history VerifiedHistory, identitySvc identity.Service) Service {
	return &creditService{repo: repo, history: history, identity: identitySvc}
}

// GenerateReport derives a fresh report from sealed claims and
// verification history. Pure computation over ledger state; the only
// write is appending the snapshot to the report history.
func (s *creditService) GenerateReport(ctx context.Context, participantID uuid.UUID) (*CreditReport, error) {
	participant, err := s.identity.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	verified, err := s.history.ListVerifiedClaims(ctx, participantID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to load verified claims", err)
	}
	if len(verified) == 0 {
		return nil, apperr.Newf(apperr.KindPrecondition,
			"participant %s has no verified work history", participantID)
	}

	tenureMonths := participant.TotalVerifiedDays / WorkingDaysPerMonth
	if tenureMonths < 1 {
		tenureMonths = 1
	}

	meanHours, err := stats.Mean(verifiedHours(verified))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to compute mean hours", err)
	}
	avgWeeklyHours := meanHours * 5

	avgPeers, err := s.history.CountAttestationsPerVerifiedClaim(ctx, participantID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to compute peer average", err)
	}

	score := computeScore(tenureMonths, avgPeers, avgWeeklyHours)

	report := &CreditReport{
		ID:               uuid.New(),
		ParticipantID:    participantID,
		Score:            score,
		Tier:             tierFor(score),
		CreditCeiling:    int64(math.Round(float64(score) * float64(tenureMonths) * 2.8)),
		TenureMonths:     tenureMonths,
		AvgPeersPerClaim: avgPeers,
		AvgWeeklyHours:   avgWeeklyHours,
		GeneratedAt:      time.Now(),
	}

	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to store credit report", err)
	}
	return report, nil
}

func (s *creditService) ListReports(ctx context.Context, participantID uuid.UUID, limit int) ([]CreditReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	reports, err := s.repo.ListReportsByParticipant(ctx, participantID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to list credit reports", err)
	}
	return reports, nil
}

func computeScore(tenureMonths int, avgPeers, avgWeeklyHours float64) int {
	score := int(math.Round(
		float64(tenureMonths)*4.5 +
			math.Min(avgPeers, 10)*15 +
			math.Min(avgWeeklyHours, 40)*2.5 +
			300))
	if score > MaxScore {
		score = MaxScore
	}
	return score
}

func tierFor(score int) Tier {
	switch {
	case score > 720:
		return TierPrime
	case score > 580:
		return TierStandard
	default:
		return TierEmerging
	}
}

func verifiedHours(list []claims.WorkClaim) []float64 {
	values := make([]float64, len(list))
	for i, c := range list {
		values[i] = c.HoursWorked
	}
	return values
}
