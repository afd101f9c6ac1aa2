package anomaly

import (
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	EntityClaim       EntityKind = "claim"
	EntityParticipant EntityKind = "participant"
	EntityTimeWindow  EntityKind = "time_window"
)

type FlagKind string

const (
	KindSuspiciousHours     FlagKind = "suspicious_hours"
	KindImpossibleHours     FlagKind = "impossible_hours"
	KindVerificationClique  FlagKind = "verification_clique"
	KindTimestampClustering FlagKind = "timestamp_clustering"
)

// Risk scores for the batch scan signals.
const (
	riskImpossibleHours     = 0.92
	riskVerificationClique  = 0.87
	riskTimestampClustering = 0.71
)

// AnomalyFlag is a persisted suspicion record. Resolution is a reviewer
// action; the detector only ever creates flags.
type AnomalyFlag struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id" db:"id"`
	EntityID    string     `gorm:"not null" json:"entity_id" db:"entity_id"`
	EntityKind  EntityKind `gorm:"not null" json:"entity_kind" db:"entity_kind"`
	FlagKind    FlagKind   `gorm:"not null" json:"flag_kind" db:"flag_kind"`
	RiskScore   float64    `gorm:"not null" json:"risk_score" db:"risk_score"`
	Description string     `json:"description" db:"description"`
	Resolved    bool       `gorm:"not null;default:false" json:"resolved" db:"resolved"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Flag is one finding in a scan report. Not persisted; recomputed on
// every scan invocation.
type Flag struct {
	EntityID    string     `json:"entity_id"`
	EntityKind  EntityKind `json:"entity_kind"`
	FlagKind    FlagKind   `json:"flag_kind"`
	RiskScore   float64    `json:"risk_score"`
	Description string     `json:"description"`
}

// ScanSummary buckets flags by risk.
type ScanSummary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// ScanReport is the result of one batch scan.
type ScanReport struct {
	Flags       []Flag      `json:"flags"`
	Summary     ScanSummary `json:"summary"`
	GeneratedAt time.Time   `json:"generated_at"`
}
