package claims

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	CreateClaim(ctx context.Context, claim *WorkClaim) error
	GetClaimByID(ctx context.Context, id uuid.UUID) (*WorkClaim, error)
	ListClaimsByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]WorkClaim, error)
	ListClaimsByParticipantSince(ctx context.Context, participantID uuid.UUID, since time.Time, limit int) ([]WorkClaim, error)
	ListVerifiedClaims(ctx context.Context, participantID uuid.UUID) ([]WorkClaim, error)

	// GetScanSnapshot reads every claim, every valid attestation and the
	// participant locations inside one read-only REPEATABLE READ
	// transaction, so the batch scan sees a consistent ledger even while
	// submissions and attestations continue.
	GetScanSnapshot(ctx context.Context) (*ScanSnapshot, error)

	// TransitionStatus is a compare-and-set: it moves the claim to the
	// target status only if its current status is one of from, and
	// reports whether the row was actually updated.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []ClaimStatus, to ClaimStatus) (bool, error)
	// SealClaim atomically marks the claim Verified and stamps the
	// settlement record; same compare-and-set semantics.
	SealClaim(ctx context.Context, id uuid.UUID, settlement Settlement) (bool, error)

	CreateAttestation(ctx context.Context, attestation *Attestation) error
	GetAttestation(ctx context.Context, claimID, verifierID uuid.UUID) (*Attestation, error)
	ListAttestationsByClaim(ctx context.Context, claimID uuid.UUID) ([]Attestation, error)
	CountValidAttestations(ctx context.Context, claimID uuid.UUID) (int, error)
	InvalidateAttestation(ctx context.Context, claimID, verifierID uuid.UUID) error
	// DeleteAttestation removes the row entirely; used to back out an
	// attestation whose follow-up writes failed.
	DeleteAttestation(ctx context.Context, claimID, verifierID uuid.UUID) error
	CountAttestationsPerVerifiedClaim(ctx context.Context, participantID uuid.UUID) (float64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

type participantLocation struct {
	ID       uuid.UUID `db:"id"`
	Location string    `db:"location"`
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// IsUniqueViolation reports whether err is a postgres unique-index
// violation (duplicate claim date or duplicate attestation).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (r *postgresRepository) CreateClaim(ctx context.Context, claim *WorkClaim) error {
	query := `
		INSERT INTO work_claims (
			id, participant_id, claim_date, hours_worked, task_description,
			geolocation, anomaly_score, status
		) VALUES (
			:id, :participant_id, :claim_date, :hours_worked, :task_description,
			:geolocation, :anomaly_score, :status
		)`
	_, err := r.db.NamedExecContext(ctx, query, claim)
	return err
}

func (r *postgresRepository) GetClaimByID(ctx context.Context, id uuid.UUID) (*WorkClaim, error) {
	var claim WorkClaim
	err := r.db.GetContext(ctx, &claim, "SELECT * FROM work_claims WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &claim, err
}

func (r *postgresRepository) ListClaimsByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]WorkClaim, error) {
	var list []WorkClaim
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM work_claims WHERE participant_id = $1 ORDER BY claim_date DESC LIMIT $2",
		participantID, limit)
	return list, err
}

func (r *postgresRepository) ListClaimsByParticipantSince(ctx context.Context, participantID uuid.UUID, since time.Time, limit int) ([]WorkClaim, error) {
	var list []WorkClaim
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM work_claims WHERE participant_id = $1 AND claim_date >= $2 ORDER BY claim_date DESC LIMIT $3",
		participantID, since, limit)
	return list, err
}

func (r *postgresRepository) ListVerifiedClaims(ctx context.Context, participantID uuid.UUID) ([]WorkClaim, error) {
	var list []WorkClaim
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM work_claims WHERE participant_id = $1 AND status = $2 ORDER BY claim_date",
		participantID, StatusVerified)
	return list, err
}

func (r *postgresRepository) GetScanSnapshot(ctx context.Context) (*ScanSnapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	snapshot := &ScanSnapshot{Locations: make(map[uuid.UUID]string)}

	if err := tx.SelectContext(ctx, &snapshot.Claims,
		"SELECT * FROM work_claims ORDER BY created_at"); err != nil {
		return nil, err
	}
	if err := tx.SelectContext(ctx, &snapshot.Attestations,
		"SELECT * FROM attestations WHERE is_valid = true ORDER BY signed_at"); err != nil {
		return nil, err
	}

	var locations []participantLocation
	if err := tx.SelectContext(ctx, &locations,
		"SELECT id, location FROM participants"); err != nil {
		return nil, err
	}
	for _, loc := range locations {
		snapshot.Locations[loc.ID] = loc.Location
	}

	return snapshot, tx.Commit()
}

func (r *postgresRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []ClaimStatus, to ClaimStatus) (bool, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE work_claims SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)",
		to, id, pq.Array(fromStrs))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *postgresRepository) SealClaim(ctx context.Context, id uuid.UUID, settlement Settlement) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE work_claims
		SET status = $1, settlement_ref = $2, content_hash = $3, sequence_number = $4, updated_at = NOW()
		WHERE id = $5 AND status = ANY($6)`,
		StatusVerified, settlement.Reference, settlement.ContentHash, settlement.SequenceNumber,
		id, pq.Array([]string{string(StatusPending), string(StatusPartiallyVerified)}))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *postgresRepository) CreateAttestation(ctx context.Context, attestation *Attestation) error {
	query := `
		INSERT INTO attestations (
			id, claim_id, verifier_id, signature_digest, proximity_meters, is_valid, signed_at
		) VALUES (
			:id, :claim_id, :verifier_id, :signature_digest, :proximity_meters, :is_valid, :signed_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, attestation)
	return err
}

func (r *postgresRepository) GetAttestation(ctx context.Context, claimID, verifierID uuid.UUID) (*Attestation, error) {
	var a Attestation
	err := r.db.GetContext(ctx, &a,
		"SELECT * FROM attestations WHERE claim_id = $1 AND verifier_id = $2", claimID, verifierID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *postgresRepository) ListAttestationsByClaim(ctx context.Context, claimID uuid.UUID) ([]Attestation, error) {
	var list []Attestation
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM attestations WHERE claim_id = $1 ORDER BY signed_at", claimID)
	return list, err
}

func (r *postgresRepository) CountValidAttestations(ctx context.Context, claimID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM attestations WHERE claim_id = $1 AND is_valid = true", claimID)
	return count, err
}

func (r *postgresRepository) InvalidateAttestation(ctx context.Context, claimID, verifierID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE attestations SET is_valid = false WHERE claim_id = $1 AND verifier_id = $2",
		claimID, verifierID)
	return err
}

func (r *postgresRepository) DeleteAttestation(ctx context.Context, claimID, verifierID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM attestations WHERE claim_id = $1 AND verifier_id = $2",
		claimID, verifierID)
	return err
}

func (r *postgresRepository) CountAttestationsPerVerifiedClaim(ctx context.Context, participantID uuid.UUID) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.GetContext(ctx, &avg, `
		SELECT AVG(cnt) FROM (
			SELECT COUNT(a.id) AS cnt
			FROM work_claims c
			LEFT JOIN attestations a ON a.claim_id = c.id AND a.is_valid = true
			WHERE c.participant_id = $1 AND c.status = $2
			GROUP BY c.id
		) counts`,
		participantID, StatusVerified)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}
