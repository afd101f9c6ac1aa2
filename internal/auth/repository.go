package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateAccount(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, role, participant_id, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :role, :participant_id, NOW(), NOW())`
	_, err := r.db.NamedExecContext(ctx, query, account)
	return err
}

func (r *postgresRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := r.db.GetContext(ctx, &account, `SELECT * FROM accounts WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *postgresRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account Account
	err := r.db.GetContext(ctx, &account, `SELECT * FROM accounts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
