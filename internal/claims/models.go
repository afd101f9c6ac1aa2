package claims

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClaimStatus string

const (
	StatusPending           ClaimStatus = "PENDING"
	StatusPartiallyVerified ClaimStatus = "PARTIALLY_VERIFIED"
	StatusVerified          ClaimStatus = "VERIFIED"
	StatusRejected          ClaimStatus = "REJECTED"
)

// WorkClaim represents one participant's declared labor for one day.
// At most one claim exists per (participant, claim date); the unique
// index on those columns is the source of truth for that invariant.
type WorkClaim struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id" db:"id"`
	ParticipantID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_participant_date" json:"participant_id" db:"participant_id"`
	ClaimDate       time.Time      `gorm:"type:date;not null;uniqueIndex:idx_participant_date" json:"claim_date" db:"claim_date"`
	HoursWorked     float64        `gorm:"not null" json:"hours_worked" db:"hours_worked"`
	TaskDescription string         `json:"task_description" db:"task_description"`
	Geolocation     datatypes.JSON `json:"geolocation,omitempty" db:"geolocation"` // GeoJSON point
	AnomalyScore    float64        `gorm:"not null;default:0" json:"anomaly_score" db:"anomaly_score"`
	Status          ClaimStatus    `gorm:"not null;default:'PENDING'" json:"status" db:"status"`
	SettlementRef   *string        `json:"settlement_ref,omitempty" db:"settlement_ref"`
	ContentHash     *string        `json:"content_hash,omitempty" db:"content_hash"`
	SequenceNumber  *int64         `json:"sequence_number,omitempty" db:"sequence_number"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// Attestation is a peer's signed assertion that a claim is accurate.
// Immutable once recorded, except IsValid which slashing may clear.
type Attestation struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id" db:"id"`
	ClaimID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_claim_verifier" json:"claim_id" db:"claim_id"`
	VerifierID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_claim_verifier" json:"verifier_id" db:"verifier_id"`
	SignatureDigest string    `gorm:"not null" json:"signature_digest" db:"signature_digest"`
	ProximityMeters *float64  `json:"proximity_meters,omitempty" db:"proximity_meters"`
	IsValid         bool      `gorm:"not null;default:true" json:"is_valid" db:"is_valid"`
	SignedAt        time.Time `gorm:"not null" json:"signed_at" db:"signed_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ScanSnapshot is a consistent read of the ledger taken for the batch
// anomaly scan.
type ScanSnapshot struct {
	Claims       []WorkClaim
	Attestations []Attestation
	// Locations maps participant id to location, for region filtering.
	Locations map[uuid.UUID]string
}

// Settlement is the record stamped onto a claim when quorum seals it.
type Settlement struct {
	Reference      string `json:"reference"`
	ContentHash    string `json:"content_hash"`
	SequenceNumber int64  `json:"sequence_number"`
}
