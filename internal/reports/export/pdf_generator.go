package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"fairwork/labor-trust/labor-trust-backend/internal/credit"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
)

// CreditReportPDF renders a credit report as a one-page PDF document.
func CreditReportPDF(participant *identity.Participant, report *credit.CreditReport) (io.Reader, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(68, 114, 196)
	pdf.CellFormat(0, 10, "Labor Credit Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, fmt.Sprintf("Participant: %s (%s)", participant.Name, participant.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	rows := [][2]string{
		{"Credit score", fmt.Sprintf("%d", report.Score)},
		{"Tier", string(report.Tier)},
		{"Credit ceiling", fmt.Sprintf("%d", report.CreditCeiling)},
		{"Tenure (months)", fmt.Sprintf("%d", report.TenureMonths)},
		{"Average peers per claim", fmt.Sprintf("%.1f", report.AvgPeersPerClaim)},
		{"Average weekly hours", fmt.Sprintf("%.1f", report.AvgWeeklyHours)},
		{"Reputation", fmt.Sprintf("%.1f", participant.ReputationScore)},
		{"Total verified days", fmt.Sprintf("%d", participant.TotalVerifiedDays)},
	}

	pdf.SetFillColor(242, 242, 242)
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(70, 8, row[0], "1", 0, "L", fill, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, row[1], "1", 1, "L", fill, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render credit report PDF: %w", err)
	}
	return &buf, nil
}
