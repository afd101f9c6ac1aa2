package anomaly

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
)

// Detector thresholds. Each signal names one failure mode: physiological
// impossibility, sudden deviation from own history, pattern gaming.
const (
	longDayHours      = 14.0
	impossibleHours   = 16.0
	longDayWeight     = 0.40
	impossibleWeight  = 0.35
	deviationFactor   = 1.8
	deviationWeight   = 0.25
	minHistoryForMean = 3
	historyWindow     = 7 * 24 * time.Hour
	historyLimit      = 10
	repeatWindow      = 14 * 24 * time.Hour
	repeatThreshold   = 5
	repeatWeight      = 0.20
)

// ClaimHistory is the slice of the claim repository the detector reads.
type ClaimHistory interface {
	ListClaimsByParticipantSince(ctx context.Context, participantID uuid.UUID, since time.Time, limit int) ([]claims.WorkClaim, error)
}

// Detector computes the per-submission risk score. Signals are additive,
// order-independent, individually capped, and the sum is capped at 1.0.
type Detector struct {
	history ClaimHistory
}

func NewDetector(history ClaimHistory) *Detector {
	return &Detector{history: history}
}

// Score rates a claim before it is stored. Deterministic for a given
// ledger state; no randomness.
func (d *Detector) Score(ctx context.Context, participantID uuid.UUID, hours float64, date time.Time) (float64, error) {
	score := 0.0

	if hours > longDayHours {
		score += longDayWeight
	}
	// Claims above the ledger ceiling are normally rejected before this
	// runs; the term still applies when the ceiling is configured higher.
	if hours > impossibleHours {
		score += impossibleWeight
	}

	recent, err := d.history.ListClaimsByParticipantSince(ctx, participantID, date.Add(-historyWindow), historyLimit)
	if err != nil {
		return 0, err
	}
	recent = dropLaterThan(recent, date)
	if len(recent) >= minHistoryForMean {
		mean, err := stats.Mean(hoursOf(recent))
		if err == nil && mean > 0 && hours > deviationFactor*mean {
			score += deviationWeight
		}
	}

	trailing, err := d.history.ListClaimsByParticipantSince(ctx, participantID, date.Add(-repeatWindow), 100)
	if err != nil {
		return 0, err
	}
	trailing = dropLaterThan(trailing, date)
	repeats := 0
	for _, c := range trailing {
		if c.HoursWorked == hours {
			repeats++
		}
	}
	if repeats >= repeatThreshold {
		score += repeatWeight
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, nil
}

func dropLaterThan(list []claims.WorkClaim, date time.Time) []claims.WorkClaim {
	kept := list[:0]
	for _, c := range list {
		if !c.ClaimDate.After(date) {
			kept = append(kept, c)
		}
	}
	return kept
}

func hoursOf(list []claims.WorkClaim) []float64 {
	values := make([]float64, len(list))
	for i, c := range list {
		values[i] = c.HoursWorked
	}
	return values
}
