package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
)

// ScanReportExcel renders a batch scan report as an Excel workbook with
// a styled header and a summary block.
func ScanReportExcel(report *anomaly.ScanReport) (io.Reader, error) {
	file := excelize.NewFile()
	sheet := "Scan Report"
	file.SetSheetName("Sheet1", sheet)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	columns := []string{"Entity", "Entity Kind", "Flag Kind", "Risk Score", "Description"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(sheet, cell, col)
	}
	file.SetCellStyle(sheet, "A1", "E1", headerStyle)

	for rowIdx, flag := range report.Flags {
		row := rowIdx + 2
		values := []interface{}{
			flag.EntityID,
			string(flag.EntityKind),
			string(flag.FlagKind),
			flag.RiskScore,
			flag.Description,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			file.SetCellValue(sheet, cell, value)
		}
	}

	summaryRow := len(report.Flags) + 3
	summary := [][2]interface{}{
		{"High risk", report.Summary.High},
		{"Medium risk", report.Summary.Medium},
		{"Low risk", report.Summary.Low},
		{"Total", report.Summary.Total},
	}
	for i, entry := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		file.SetCellValue(sheet, labelCell, entry[0])
		file.SetCellValue(sheet, valueCell, entry[1])
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render scan report workbook: %w", err)
	}
	return &buf, nil
}
