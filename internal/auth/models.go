package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles an account can hold. Admins may reject claims and slash
// attestations; participants submit and attest.
const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// Account is a login identity. It is linked to at most one participant.
type Account struct {
	ID            uuid.UUID  `db:"id" json:"id" gorm:"type:uuid;primaryKey"`
	Email         string     `db:"email" json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string     `db:"password_hash" json:"-" gorm:"not null"`
	Role          string     `db:"role" json:"role" gorm:"not null;default:participant"`
	ParticipantID *uuid.UUID `db:"participant_id" json:"participant_id,omitempty" gorm:"type:uuid"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at" gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
