package credit

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxScore caps the bounded credit score.
	MaxScore = 850
	// WorkingDaysPerMonth converts verified days into tenure months.
	WorkingDaysPerMonth = 22
)

type Tier string

const (
	TierPrime    Tier = "Prime"
	TierStandard Tier = "Standard"
	TierEmerging Tier = "Emerging"
)

// CreditReport is a derived snapshot over sealed claims and verification
// history. Never mutated; regenerating appends to the history.
type CreditReport struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id" db:"id"`
	ParticipantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"participant_id" db:"participant_id"`
	Score            int       `gorm:"not null" json:"score" db:"score"`
	Tier             Tier      `gorm:"not null" json:"tier" db:"tier"`
	CreditCeiling    int64     `gorm:"not null" json:"credit_ceiling" db:"credit_ceiling"`
	TenureMonths     int       `gorm:"not null" json:"tenure_months" db:"tenure_months"`
	AvgPeersPerClaim float64   `gorm:"not null" json:"avg_peers_per_claim" db:"avg_peers_per_claim"`
	AvgWeeklyHours   float64   `gorm:"not null" json:"avg_weekly_hours" db:"avg_weekly_hours"`
	GeneratedAt      time.Time `json:"generated_at" db:"generated_at"`
}
