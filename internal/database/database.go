package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
	"fairwork/labor-trust/labor-trust-backend/internal/auth"
	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/credit"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
)

// Connect opens the sqlx handle used by the repositories.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// Migrate creates or updates the schema from the model definitions.
// Runs through gorm so the unique indexes on claims and attestations
// come straight from the struct tags.
func Migrate(databaseURL string) error {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open database for migration: %w", err)
	}

	if err := db.AutoMigrate(
		&identity.Participant{},
		&claims.WorkClaim{},
		&claims.Attestation{},
		&anomaly.AnomalyFlag{},
		&credit.CreditReport{},
		&auth.Account{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
