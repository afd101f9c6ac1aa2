package reports

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
	"fairwork/labor-trust/labor-trust-backend/internal/credit"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
	"fairwork/labor-trust/labor-trust-backend/internal/reports/export"
	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
	"fairwork/labor-trust/labor-trust-backend/pkg/storage"
)

// Handler serves downloadable exports of credit reports and scan
// results, with optional archival to S3.
type Handler struct {
	credit   credit.Service
	identity identity.Service
	scanner  *anomaly.Scanner
	archive  storage.S3Client
	bucket   string
	logger   *zap.Logger
}

func NewHandler(creditSvc credit.Service, identitySvc identity.Service, scanner *anomaly.Scanner, archive storage.S3Client, bucket string, logger *zap.Logger) *Handler {
	return &Handler{
		credit:   creditSvc,
		identity: identitySvc,
		scanner:  scanner,
		archive:  archive,
		bucket:   bucket,
		logger:   logger,
	}
}

// ExportCreditReport handles GET /participants/:id/credit-report/export
func (h *Handler) ExportCreditReport(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	participant, err := h.identity.GetParticipant(c.Request.Context(), participantID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	report, err := h.credit.GenerateReport(c.Request.Context(), participantID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	pdf, err := export.CreditReportPDF(participant, report)
	if err != nil {
		h.logger.Error("failed to render credit report PDF", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	filename := fmt.Sprintf("credit-report-%s-%s.pdf", participantID, time.Now().Format("20060102"))
	h.serve(c, pdf, filename, "application/pdf")
}

// ExportScanReport handles GET /anomaly/scan/export?format=csv|xlsx&region=
func (h *Handler) ExportScanReport(c *gin.Context) {
	report, err := h.scanner.Scan(c.Request.Context(), c.Query("region"))
	if err != nil {
		h.logger.Error("batch scan failed", zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	stamp := time.Now().Format("20060102-150405")
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		var buf bytes.Buffer
		if err := export.ScanReportCSV(report, &buf); err != nil {
			h.logger.Error("failed to render scan CSV", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
			return
		}
		h.serve(c, &buf, fmt.Sprintf("anomaly-scan-%s.csv", stamp), "text/csv")
	case "xlsx":
		workbook, err := export.ScanReportExcel(report)
		if err != nil {
			h.logger.Error("failed to render scan workbook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
			return
		}
		h.serve(c, workbook, fmt.Sprintf("anomaly-scan-%s.xlsx", stamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}

// serve streams the export, archiving a copy first when requested.
func (h *Handler) serve(c *gin.Context, body io.Reader, filename, contentType string) {
	data, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read export"})
		return
	}

	if c.Query("archive") == "true" && h.archive != nil && h.bucket != "" {
		key := fmt.Sprintf("exports/%s/%s", time.Now().Format("2006/01/02"), filename)
		if err := h.archive.Upload(c.Request.Context(), h.bucket, key, bytes.NewReader(data)); err != nil {
			h.logger.Warn("failed to archive export",
				zap.String("key", key), zap.Error(err))
		} else {
			c.Header("X-Archive-Key", key)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
