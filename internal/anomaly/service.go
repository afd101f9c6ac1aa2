package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

// FlagBroadcaster pushes fresh flags to connected reviewers. Best effort.
type FlagBroadcaster interface {
	BroadcastFlag(flag AnomalyFlag)
}

// FlagService persists and resolves anomaly flags. It implements the
// claim ledger's FlagEmitter.
type FlagService struct {
	repo FlagRepository
	feed FlagBroadcaster
}

func NewFlagService(repo FlagRepository, feed FlagBroadcaster) *FlagService {
	return &FlagService{repo: repo, feed: feed}
}

// EmitSuspiciousHours records a flag for a just-submitted claim whose
// score crossed the threshold.
func (s *FlagService) EmitSuspiciousHours(ctx context.Context, claim *claims.WorkClaim) error {
	flag := &AnomalyFlag{
		ID:         uuid.New(),
		EntityID:   claim.ID.String(),
		EntityKind: EntityClaim,
		FlagKind:   KindSuspiciousHours,
		RiskScore:  claim.AnomalyScore,
		Description: fmt.Sprintf("claim scored %.2f at submission (%.1f hours declared)",
			claim.AnomalyScore, claim.HoursWorked),
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateFlag(ctx, flag); err != nil {
		return err
	}
	if s.feed != nil {
		s.feed.BroadcastFlag(*flag)
	}
	return nil
}

// PersistScanFindings stores the high-risk bucket of a scan report so
// findings survive between scans. Called by the scheduled worker.
func (s *FlagService) PersistScanFindings(ctx context.Context, report *ScanReport) (int, error) {
	persisted := 0
	for _, f := range report.Flags {
		if f.RiskScore <= highRiskBoundary || f.FlagKind == KindSuspiciousHours {
			continue
		}
		// The report carries previously persisted flags merged back in,
		// and successive scans rediscover the same findings; only file
		// each (entity, kind) pair once while it stays unresolved.
		exists, err := s.repo.HasUnresolvedFlag(ctx, f.EntityID, f.FlagKind)
		if err != nil {
			return persisted, err
		}
		if exists {
			continue
		}
		flag := &AnomalyFlag{
			ID:          uuid.New(),
			EntityID:    f.EntityID,
			EntityKind:  f.EntityKind,
			FlagKind:    f.FlagKind,
			RiskScore:   f.RiskScore,
			Description: f.Description,
			CreatedAt:   time.Now(),
		}
		if err := s.repo.CreateFlag(ctx, flag); err != nil {
			return persisted, err
		}
		if s.feed != nil {
			s.feed.BroadcastFlag(*flag)
		}
		persisted++
	}
	return persisted, nil
}

// ResolveFlag marks a flag handled. Reviewer action.
func (s *FlagService) ResolveFlag(ctx context.Context, id uuid.UUID) error {
	resolved, err := s.repo.ResolveFlag(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to resolve flag", err)
	}
	if !resolved {
		return apperr.Newf(apperr.KindNotFound, "no unresolved flag %s", id)
	}
	return nil
}
