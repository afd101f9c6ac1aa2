package anomaly

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fairwork/labor-trust/labor-trust-backend/internal/claims"
)

const (
	cliqueMinAttestations = 5
	clusterMinPerMinute   = 4
	mergedFlagLimit       = 10
	highRiskBoundary      = 0.7
	mediumRiskBoundary    = 0.4
)

// SnapshotSource provides the consistent ledger read the scan runs over.
type SnapshotSource interface {
	GetScanSnapshot(ctx context.Context) (*claims.ScanSnapshot, error)
}

// Scanner runs the whole-ledger batch scan. It only reads; flags it
// reports are not persisted here (the scan worker persists the high
// bucket separately).
type Scanner struct {
	snapshots SnapshotSource
	flags     FlagRepository
}

func NewScanner(snapshots SnapshotSource, flags FlagRepository) *Scanner {
	return &Scanner{snapshots: snapshots, flags: flags}
}

// Scan recomputes the report from current ledger state. Deterministic
// given the same snapshot. regionFilter is a substring match on
// participant location and narrows the impossible-hours signal only.
func (s *Scanner) Scan(ctx context.Context, regionFilter string) (*ScanReport, error) {
	snapshot, err := s.snapshots.GetScanSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot ledger: %w", err)
	}

	var flags []Flag
	flags = append(flags, s.impossibleHoursFlags(snapshot, regionFilter)...)
	flags = append(flags, s.cliqueFlags(snapshot)...)
	flags = append(flags, s.clusteringFlags(snapshot)...)

	// Administratively raised flags surface next to fresh findings.
	persisted, err := s.flags.ListUnresolvedFlags(ctx, mergedFlagLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted flags: %w", err)
	}
	for _, pf := range persisted {
		flags = append(flags, Flag{
			EntityID:    pf.EntityID,
			EntityKind:  pf.EntityKind,
			FlagKind:    pf.FlagKind,
			RiskScore:   pf.RiskScore,
			Description: pf.Description,
		})
	}

	sort.Slice(flags, func(i, j int) bool {
		if flags[i].RiskScore != flags[j].RiskScore {
			return flags[i].RiskScore > flags[j].RiskScore
		}
		return flags[i].EntityID < flags[j].EntityID
	})

	return &ScanReport{
		Flags:       flags,
		Summary:     summarize(flags),
		GeneratedAt: time.Now(),
	}, nil
}

// impossibleHoursFlags catches claims above the hard ceiling regardless
// of how they entered the ledger.
func (s *Scanner) impossibleHoursFlags(snapshot *claims.ScanSnapshot, regionFilter string) []Flag {
	var flags []Flag
	filter := strings.ToLower(regionFilter)
	for _, c := range snapshot.Claims {
		if c.HoursWorked <= impossibleHours {
			continue
		}
		if filter != "" {
			location := strings.ToLower(snapshot.Locations[c.ParticipantID])
			if !strings.Contains(location, filter) {
				continue
			}
		}
		flags = append(flags, Flag{
			EntityID:   c.ID.String(),
			EntityKind: EntityClaim,
			FlagKind:   KindImpossibleHours,
			RiskScore:  riskImpossibleHours,
			Description: fmt.Sprintf("claim declares %.1f hours in one day, above the %.1f ceiling",
				c.HoursWorked, impossibleHours),
		})
	}
	return flags
}

// cliqueFlags finds verifiers whose attestations all benefit a single
// owner, at volume. A pair or small ring vouching exclusively for one
// beneficiary looks like this.
func (s *Scanner) cliqueFlags(snapshot *claims.ScanSnapshot) []Flag {
	owners := make(map[uuid.UUID]uuid.UUID, len(snapshot.Claims))
	for _, c := range snapshot.Claims {
		owners[c.ID] = c.ParticipantID
	}

	type verifierStats struct {
		perOwner map[uuid.UUID]int
		total    int
	}
	byVerifier := make(map[uuid.UUID]*verifierStats)
	for _, a := range snapshot.Attestations {
		owner, ok := owners[a.ClaimID]
		if !ok {
			continue
		}
		vs := byVerifier[a.VerifierID]
		if vs == nil {
			vs = &verifierStats{perOwner: make(map[uuid.UUID]int)}
			byVerifier[a.VerifierID] = vs
		}
		vs.perOwner[owner]++
		vs.total++
	}

	var flags []Flag
	for verifierID, vs := range byVerifier {
		if len(vs.perOwner) != 1 || vs.total < cliqueMinAttestations {
			continue
		}
		var beneficiary uuid.UUID
		for owner := range vs.perOwner {
			beneficiary = owner
		}
		flags = append(flags, Flag{
			EntityID:   verifierID.String(),
			EntityKind: EntityParticipant,
			FlagKind:   KindVerificationClique,
			RiskScore:  riskVerificationClique,
			Description: fmt.Sprintf("verifier made %d attestations, all for participant %s",
				vs.total, beneficiary),
		})
	}
	return flags
}

// clusteringFlags groups claim creation times into minute buckets; a
// crowded bucket is a proxy for bot-submitted or pre-staged claims.
func (s *Scanner) clusteringFlags(snapshot *claims.ScanSnapshot) []Flag {
	buckets := make(map[time.Time]int)
	for _, c := range snapshot.Claims {
		buckets[c.CreatedAt.UTC().Truncate(time.Minute)]++
	}

	var flags []Flag
	for minute, count := range buckets {
		if count < clusterMinPerMinute {
			continue
		}
		flags = append(flags, Flag{
			EntityID:   minute.Format(time.RFC3339),
			EntityKind: EntityTimeWindow,
			FlagKind:   KindTimestampClustering,
			RiskScore:  riskTimestampClustering,
			Description: fmt.Sprintf("%d claims created within the minute starting %s",
				count, minute.Format(time.RFC3339)),
		})
	}
	return flags
}

func summarize(flags []Flag) ScanSummary {
	summary := ScanSummary{Total: len(flags)}
	for _, f := range flags {
		switch {
		case f.RiskScore > highRiskBoundary:
			summary.High++
		case f.RiskScore > mediumRiskBoundary:
			summary.Medium++
		default:
			summary.Low++
		}
	}
	return summary
}
