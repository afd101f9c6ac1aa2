package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

// AnomalyScorer computes the per-submission risk score before a claim is
// written. Implemented by the anomaly detector.
type AnomalyScorer interface {
	Score(ctx context.Context, participantID uuid.UUID, hours float64, date time.Time) (float64, error)
}

// FlagEmitter persists an anomaly flag for a freshly stored claim whose
// score crossed the configured threshold.
type FlagEmitter interface {
	EmitSuspiciousHours(ctx context.Context, claim *WorkClaim) error
}

// PeerNotifier tells candidate verifiers a claim is waiting. Delivery is
// best effort; a notification failure never fails the submission.
type PeerNotifier interface {
	NotifyClaimSubmitted(ctx context.Context, claim *WorkClaim)
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*WorkClaim, error)
	GetClaim(ctx context.Context, id uuid.UUID) (*WorkClaim, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]WorkClaim, error)
}

type SubmitRequest struct {
	ParticipantID   uuid.UUID
	ClaimDate       time.Time
	HoursWorked     float64
	TaskDescription string
	Geolocation     datatypes.JSON
}

type ServiceConfig struct {
	MaxClaimHours float64
	FlagThreshold float64
}

type ledgerService struct {
	repo     Repository
	scorer   AnomalyScorer
	flags    FlagEmitter
	notifier PeerNotifier
	cfg      ServiceConfig
}

func NewService(repo Repository, scorer AnomalyScorer, flags FlagEmitter, notifier PeerNotifier, cfg ServiceConfig) Service {
	if cfg.MaxClaimHours <= 0 {
		cfg.MaxClaimHours = 16.0
	}
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = 0.65
	}
	return &ledgerService{
		repo:     repo,
		scorer:   scorer,
		flags:    flags,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *ledgerService) Submit(ctx context.Context, req SubmitRequest) (*WorkClaim, error) {
	if req.HoursWorked <= 0 || req.HoursWorked > s.cfg.MaxClaimHours {
		return nil, apperr.Newf(apperr.KindValidation,
			"hours worked must be in (0, %.1f], got %.2f", s.cfg.MaxClaimHours, req.HoursWorked)
	}
	if req.ClaimDate.IsZero() {
		return nil, apperr.New(apperr.KindValidation, "claim date is required")
	}

	// Scored before insertion so the stored claim carries its risk.
	score, err := s.scorer.Score(ctx, req.ParticipantID, req.HoursWorked, req.ClaimDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to score claim", err)
	}

	claim := &WorkClaim{
		ID:              uuid.New(),
		ParticipantID:   req.ParticipantID,
		ClaimDate:       req.ClaimDate.Truncate(24 * time.Hour),
		HoursWorked:     req.HoursWorked,
		TaskDescription: req.TaskDescription,
		Geolocation:     req.Geolocation,
		AnomalyScore:    score,
		Status:          StatusPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.repo.CreateClaim(ctx, claim); err != nil {
		if IsUniqueViolation(err) {
			return nil, apperr.Newf(apperr.KindConflict,
				"claim already exists for participant %s on %s",
				req.ParticipantID, claim.ClaimDate.Format("2006-01-02"))
		}
		return nil, apperr.Wrap(apperr.KindStorage, "failed to store claim", err)
	}

	if score > s.cfg.FlagThreshold && s.flags != nil {
		if err := s.flags.EmitSuspiciousHours(ctx, claim); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "failed to record anomaly flag", err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyClaimSubmitted(ctx, claim)
	}

	return claim, nil
}

func (s *ledgerService) GetClaim(ctx context.Context, id uuid.UUID) (*WorkClaim, error) {
	claim, err := s.repo.GetClaimByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to load claim", err)
	}
	if claim == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "claim %s not found", id)
	}
	return claim, nil
}

func (s *ledgerService) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]WorkClaim, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := s.repo.ListClaimsByParticipant(ctx, participantID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to list claims", err)
	}
	return list, nil
}
