package identity

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateParticipant(ctx context.Context, p *Participant) error
	GetParticipantByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	UpdateReputation(ctx context.Context, id uuid.UUID, score float64) error
	IncrementVerificationDepth(ctx context.Context, id uuid.UUID) error
	IncrementVerifiedDays(ctx context.Context, id uuid.UUID) error
	ListParticipants(ctx context.Context, locationFilter string) ([]Participant, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateParticipant(ctx context.Context, p *Participant) error {
	query := `
		INSERT INTO participants (
			id, name, location, sector, reputation_score, verification_depth, total_verified_days
		) VALUES (
			:id, :name, :location, :sector, :reputation_score, :verification_depth, :total_verified_days
		)`
	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}

func (r *postgresRepository) GetParticipantByID(ctx context.Context, id uuid.UUID) (*Participant, error) {
	var p Participant
	err := r.db.GetContext(ctx, &p, "SELECT * FROM participants WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &p, err
}

func (r *postgresRepository) UpdateReputation(ctx context.Context, id uuid.UUID, score float64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE participants SET reputation_score = $1, updated_at = NOW() WHERE id = $2", score, id)
	return err
}

func (r *postgresRepository) IncrementVerificationDepth(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE participants SET verification_depth = verification_depth + 1, updated_at = NOW() WHERE id = $1", id)
	return err
}

func (r *postgresRepository) IncrementVerifiedDays(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE participants SET total_verified_days = total_verified_days + 1, updated_at = NOW() WHERE id = $1", id)
	return err
}

func (r *postgresRepository) ListParticipants(ctx context.Context, locationFilter string) ([]Participant, error) {
	var participants []Participant
	if locationFilter != "" {
		err := r.db.SelectContext(ctx, &participants,
			"SELECT * FROM participants WHERE location ILIKE '%' || $1 || '%' ORDER BY created_at", locationFilter)
		return participants, err
	}
	err := r.db.SelectContext(ctx, &participants, "SELECT * FROM participants ORDER BY created_at")
	return participants, err
}
