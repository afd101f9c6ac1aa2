package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
)

// ScanReportCSV writes a batch scan report as CSV.
func ScanReportCSV(report *anomaly.ScanReport, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"entity_id", "entity_kind", "flag_kind", "risk_score", "description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, flag := range report.Flags {
		record := []string{
			flag.EntityID,
			string(flag.EntityKind),
			string(flag.FlagKind),
			strconv.FormatFloat(flag.RiskScore, 'f', 2, 64),
			flag.Description,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
