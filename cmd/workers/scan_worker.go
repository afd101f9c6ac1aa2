package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/config"
	"fairwork/labor-trust/labor-trust-backend/internal/database"
)

// ScanWorker runs the batch anomaly scan on a schedule and persists
// the high risk findings.
type ScanWorker struct {
	scanner *anomaly.Scanner
	flags   *anomaly.FlagService
	logger  *zap.Logger
}

func NewScanWorker(scanner *anomaly.Scanner, flags *anomaly.FlagService, logger *zap.Logger) *ScanWorker {
	return &ScanWorker{scanner: scanner, flags: flags, logger: logger}
}

// RunOnce executes a single full scan pass.
func (w *ScanWorker) RunOnce(ctx context.Context) {
	report, err := w.scanner.Scan(ctx, "")
	if err != nil {
		w.logger.Error("Scheduled scan failed", zap.Error(err))
		return
	}

	persisted, err := w.flags.PersistScanFindings(ctx, report)
	if err != nil {
		w.logger.Error("Failed to persist scan findings", zap.Error(err))
		return
	}

	w.logger.Info("Scheduled scan complete",
		zap.Int("flags", report.Summary.Total),
		zap.Int("high_risk", report.Summary.High),
		zap.Int("persisted", persisted))
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	flagRepo := anomaly.NewFlagRepository(db)
	worker := NewScanWorker(
		anomaly.NewScanner(claims.NewRepository(db), flagRepo),
		anomaly.NewFlagService(flagRepo, nil),
		logger,
	)

	scheduler := cron.New()
	schedule := cfg.Trust.ScanSchedule
	if schedule == "" {
		schedule = "@hourly"
	}
	if _, err := scheduler.AddFunc(schedule, func() {
		worker.RunOnce(context.Background())
	}); err != nil {
		logger.Fatal("Invalid scan schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	logger.Info("Starting scan worker", zap.String("schedule", schedule))
	scheduler.Start()

	// Run one pass immediately so a fresh deployment has findings.
	worker.RunOnce(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Scan worker shutting down")
	<-scheduler.Stop().Done()
}
