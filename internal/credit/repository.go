package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateReport(ctx context.Context, report *CreditReport) error
	ListReportsByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]CreditReport, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateReport(ctx context.Context, report *CreditReport) error {
	query := `
		INSERT INTO credit_reports (
			id, participant_id, score, tier, credit_ceiling,
			tenure_months, avg_peers_per_claim, avg_weekly_hours, generated_at
		) VALUES (
			:id, :participant_id, :score, :tier, :credit_ceiling,
			:tenure_months, :avg_peers_per_claim, :avg_weekly_hours, :generated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, report)
	return err
}

func (r *postgresRepository) ListReportsByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]CreditReport, error) {
	var reports []CreditReport
	err := r.db.SelectContext(ctx, &reports,
		"SELECT * FROM credit_reports WHERE participant_id = $1 ORDER BY generated_at DESC LIMIT $2",
		participantID, limit)
	return reports, err
}
