package identity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Participant, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error)
	ListParticipants(ctx context.Context, locationFilter string) ([]Participant, error)

	// AdjustReputation applies a clamped delta. Only the verification
	// engine calls this; handlers have no route to it.
	AdjustReputation(ctx context.Context, id uuid.UUID, delta float64) (float64, error)
	RecordAttestationMade(ctx context.Context, verifierID uuid.UUID) error
	RecordVerifiedDay(ctx context.Context, ownerID uuid.UUID) error
}

type RegisterRequest struct {
	Name     string
	Location string
	Sector   string
}

type identityService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &identityService{repo: repo}
}

func (s *identityService) Register(ctx context.Context, req RegisterRequest) (*Participant, error) {
	if req.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "participant name is required")
	}

	p := &Participant{
		ID:              uuid.New(),
		Name:            req.Name,
		Location:        req.Location,
		Sector:          req.Sector,
		ReputationScore: InitialReputation,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.repo.CreateParticipant(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to create participant", err)
	}
	return p, nil
}

func (s *identityService) GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error) {
	p, err := s.repo.GetParticipantByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to load participant", err)
	}
	if p == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "participant %s not found", id)
	}
	return p, nil
}

func (s *identityService) ListParticipants(ctx context.Context, locationFilter string) ([]Participant, error) {
	list, err := s.repo.ListParticipants(ctx, locationFilter)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to list participants", err)
	}
	return list, nil
}

func (s *identityService) AdjustReputation(ctx context.Context, id uuid.UUID, delta float64) (float64, error) {
	p, err := s.GetParticipant(ctx, id)
	if err != nil {
		return 0, err
	}

	newScore := ClampReputation(p.ReputationScore + delta)
	if err := s.repo.UpdateReputation(ctx, id, newScore); err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "failed to update reputation", err)
	}
	return newScore, nil
}

func (s *identityService) RecordAttestationMade(ctx context.Context, verifierID uuid.UUID) error {
	if err := s.repo.IncrementVerificationDepth(ctx, verifierID); err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to increment verification depth", err)
	}
	return nil
}

func (s *identityService) RecordVerifiedDay(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.repo.IncrementVerifiedDays(ctx, ownerID); err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to increment verified days", err)
	}
	return nil
}
