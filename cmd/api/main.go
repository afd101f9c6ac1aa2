package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
	"fairwork/labor-trust/labor-trust-backend/internal/auth"
	"fairwork/labor-trust/labor-trust-backend/internal/claims"
	"fairwork/labor-trust/labor-trust-backend/internal/config"
	"fairwork/labor-trust/labor-trust-backend/internal/credit"
	"fairwork/labor-trust/labor-trust-backend/internal/database"
	"fairwork/labor-trust/labor-trust-backend/internal/identity"
	"fairwork/labor-trust/labor-trust-backend/internal/notifications"
	"fairwork/labor-trust/labor-trust-backend/internal/notifications/websocket"
	"fairwork/labor-trust/labor-trust-backend/internal/reports"
	"fairwork/labor-trust/labor-trust-backend/internal/settlement"
	"fairwork/labor-trust/labor-trust-backend/internal/verification"
	"fairwork/labor-trust/labor-trust-backend/pkg/security"
	"fairwork/labor-trust/labor-trust-backend/pkg/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Security.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	// Database
	dbURL := cfg.Database.GetDatabaseURL()
	if err := database.Migrate(dbURL); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	db, err := database.Connect(dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// AWS collaborators degrade to local substitutes when no credentials
	// are configured.
	var snsClient notifications.SNSAPI
	s3Client := storage.NewMockS3Client()
	if awsCfg, err := awsconfig.LoadDefaultConfig(context.Background()); err == nil {
		snsClient = sns.NewFromConfig(awsCfg)
		if real, err := storage.NewS3Client(context.Background()); err == nil {
			s3Client = real
		}
	} else {
		logger.Warn("AWS config unavailable, notifications and archival run locally", zap.Error(err))
	}

	// Reviewer feed
	wsManager := websocket.NewManager(logger)
	defer wsManager.Close()

	// Repositories
	identityRepo := identity.NewRepository(db)
	claimRepo := claims.NewRepository(db)
	flagRepo := anomaly.NewFlagRepository(db)
	creditRepo := credit.NewRepository(db)
	authRepo := auth.NewPostgresRepository(db)

	// Services
	identityService := identity.NewService(identityRepo)
	notifier := notifications.NewService(snsClient, cfg.Notifications.SNSTopicARN, wsManager, logger)
	flagService := anomaly.NewFlagService(flagRepo, notifier)
	detector := anomaly.NewDetector(claimRepo)
	scanner := anomaly.NewScanner(claimRepo, flagRepo)
	claimService := claims.NewService(claimRepo, detector, flagService, notifier, claims.ServiceConfig{
		MaxClaimHours: cfg.Trust.MaxClaimHours,
		FlagThreshold: cfg.Trust.FlagThreshold,
	})
	engine := verification.NewEngine(claimRepo, identityService, security.NewSigner(),
		settlement.NewLocalAnchorer(), logger, verification.Config{
			QuorumThreshold:    cfg.Trust.QuorumThreshold,
			MaxProximityMeters: cfg.Trust.MaxProximityMeters,
			RewardVerifiers:    cfg.Trust.RewardVerifiers,
			SlashPenalty:       cfg.Trust.SlashPenalty,
		})
	creditService := credit.NewService(creditRepo, claimRepo, identityService)
	authService := auth.NewService(authRepo, cfg.Security.JWTSecret)

	// Handlers
	identityHandler := identity.NewHandler(identityService, logger)
	claimHandler := claims.NewHandler(claimService, logger)
	verificationHandler := verification.NewHandler(engine, logger)
	anomalyHandler := anomaly.NewHandler(scanner, flagService, flagRepo, logger)
	creditHandler := credit.NewHandler(creditService, logger)
	reportsHandler := reports.NewHandler(creditService, identityService, scanner,
		s3Client, cfg.Exports.ArchiveBucket, logger)
	authHandler := auth.NewHandler(authService)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	auth.RegisterRoutes(router, authHandler)
	websocket.RegisterRoutes(router, wsManager, logger)

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	admin := auth.RequireRole(auth.RoleAdmin)
	{
		identity.RegisterRoutes(api, identityHandler)
		claims.RegisterRoutes(api, claimHandler)
		verification.RegisterRoutes(api, verificationHandler, admin)
		anomaly.RegisterRoutes(api, anomalyHandler, admin)
		credit.RegisterRoutes(api, creditHandler)
		reports.RegisterRoutes(api, reportsHandler)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", cfg.Server.GetServerAddr()))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
