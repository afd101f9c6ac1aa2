package identity

import (
	"time"

	"github.com/google/uuid"
)

const (
	// InitialReputation is assigned at registration.
	InitialReputation = 50.0
	// MinReputation and MaxReputation bound every adjustment.
	MinReputation = 0.0
	MaxReputation = 100.0
)

// Participant represents a registered worker/verifier
type Participant struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id" db:"id"`
	Name              string    `gorm:"not null" json:"name" db:"name"`
	Location          string    `json:"location" db:"location"`
	Sector            string    `json:"sector" db:"sector"`
	ReputationScore   float64   `gorm:"not null;default:50" json:"reputation_score" db:"reputation_score"`
	VerificationDepth int       `gorm:"not null;default:0" json:"verification_depth" db:"verification_depth"`
	TotalVerifiedDays int       `gorm:"not null;default:0" json:"total_verified_days" db:"total_verified_days"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ClampReputation bounds a reputation value to [MinReputation, MaxReputation].
func ClampReputation(v float64) float64 {
	if v < MinReputation {
		return MinReputation
	}
	if v > MaxReputation {
		return MaxReputation
	}
	return v
}
