package anomaly

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FlagRepository interface {
	CreateFlag(ctx context.Context, flag *AnomalyFlag) error
	GetFlagByID(ctx context.Context, id uuid.UUID) (*AnomalyFlag, error)
	ListUnresolvedFlags(ctx context.Context, limit int) ([]AnomalyFlag, error)
	// HasUnresolvedFlag reports whether an unresolved flag of the given
	// kind already exists for the entity; keeps scheduled scans from
	// re-filing the same finding.
	HasUnresolvedFlag(ctx context.Context, entityID string, kind FlagKind) (bool, error)
	ResolveFlag(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresFlagRepository struct {
	db *sqlx.DB
}

func NewFlagRepository(db *sqlx.DB) FlagRepository {
	return &postgresFlagRepository{db: db}
}

func (r *postgresFlagRepository) CreateFlag(ctx context.Context, flag *AnomalyFlag) error {
	query := `
		INSERT INTO anomaly_flags (
			id, entity_id, entity_kind, flag_kind, risk_score, description, resolved
		) VALUES (
			:id, :entity_id, :entity_kind, :flag_kind, :risk_score, :description, :resolved
		)`
	_, err := r.db.NamedExecContext(ctx, query, flag)
	return err
}

func (r *postgresFlagRepository) GetFlagByID(ctx context.Context, id uuid.UUID) (*AnomalyFlag, error) {
	var flag AnomalyFlag
	err := r.db.GetContext(ctx, &flag, "SELECT * FROM anomaly_flags WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &flag, err
}

func (r *postgresFlagRepository) ListUnresolvedFlags(ctx context.Context, limit int) ([]AnomalyFlag, error) {
	var flags []AnomalyFlag
	err := r.db.SelectContext(ctx, &flags,
		"SELECT * FROM anomaly_flags WHERE resolved = false ORDER BY risk_score DESC LIMIT $1", limit)
	return flags, err
}

func (r *postgresFlagRepository) HasUnresolvedFlag(ctx context.Context, entityID string, kind FlagKind) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM anomaly_flags WHERE entity_id = $1 AND flag_kind = $2 AND resolved = false)",
		entityID, kind)
	return exists, err
}

func (r *postgresFlagRepository) ResolveFlag(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE anomaly_flags SET resolved = true WHERE id = $1 AND resolved = false", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}
