// Package main provides the main entry point for the shared SMS number dashboard backend
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tasksms/dashboard/app/handlers"
	"github.com/tasksms/dashboard/app/middleware"
	"github.com/tasksms/dashboard/app/router"
	"github.com/tasksms/dashboard/app/services"
	businessflow "github.com/tasksms/dashboard/business_flow"
	"github.com/tasksms/dashboard/config"
	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/realtime"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router         router.Router
	config         *config.ProductionConfig
	realtimeServer *http.Server
	stopFuncs      []func()
}

func main() {
	log.Println("Starting dashboard backend...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ValidateProductionConfig(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Realtime.Host, cfg.Realtime.Port)
		log.Printf("Realtime listener starting on %s", address)
		if err := app.realtimeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start realtime listener: %v", err)
		}
	}()

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.realtimeServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during realtime shutdown: %v", err)
	}
	if err := app.router.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging directs logs to stdout and, when configured, a rotated file
func setupLogging(cfg config.LoggingConfig) {
	if cfg.FilePath == "" {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}))
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&models.SmsMessage{},
			&models.Country{},
			&models.NumberInventory{},
			&models.TeamMember{},
			&models.Allocation{},
			&models.AppStats{},
			&models.Admin{},
			&models.MemberSession{},
			&models.AuditLog{},
		); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Database migrations applied")
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeRealtimeStore picks Redis-backed fan-out for multi-node
// deployments and the in-process store otherwise
func initializeRealtimeStore(cfg config.RedisConfig) (realtime.Store, func(), error) {
	if !cfg.Enabled {
		log.Println("Realtime store: in-memory")
		return realtime.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Realtime store: redis at %s (db=%d)", cfg.Addr(), cfg.DB)
	return realtime.NewRedisStore(client), func() { _ = client.Close() }, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := initializeRealtimeStore(cfg.Redis)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, closeStore)

	// Initialize repositories
	messageRepo := repository.NewSmsMessageRepository(db)
	countryRepo := repository.NewCountryRepository(db)
	inventoryRepo := repository.NewNumberInventoryRepository(db)
	memberRepo := repository.NewTeamMemberRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	statsRepo := repository.NewAppStatsRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	sessionRepo := repository.NewMemberSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	captchaService, err := services.NewCaptchaService(cfg.Security.CaptchaTTL, cfg.Security.CaptchaPadding, cfg.Security.CaptchaImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize captcha service: %w", err)
	}

	tokenService, err := services.NewTokenService(
		utils.AccessTokenTTL,
		utils.RefreshTokenTTL,
		cfg.Security.JWTIssuer,
		cfg.Security.JWTAudience,
		cfg.Security.JWTUseRSAKeys,
		cfg.Security.JWTPrivateKeyPEM,
		cfg.Security.JWTPublicKeyPEM,
		cfg.Security.JWTSecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	if err := ensureAdmin(db, adminRepo, cfg.Admin); err != nil {
		return nil, err
	}

	// Initialize flows
	sessionFlow := businessflow.NewSessionFlow(adminRepo, memberRepo, sessionRepo, auditRepo, tokenService, captchaService, cfg.Admin.AllowedEmail)
	allocationFlow := businessflow.NewAllocationFlow(allocationRepo, inventoryRepo, memberRepo, auditRepo, store, db)
	messageFlow := businessflow.NewMessageFlow(messageRepo, allocationRepo, inventoryRepo, memberRepo, store)
	countryFlow := businessflow.NewCountryFlow(countryRepo, auditRepo, store)
	inventoryFlow := businessflow.NewInventoryFlow(inventoryRepo, countryRepo, auditRepo, store)
	teamFlow := businessflow.NewTeamFlow(memberRepo, allocationRepo, auditRepo, store, db)
	statsFlow := businessflow.NewStatsFlow(statsRepo, auditRepo, store)
	exportFlow := businessflow.NewExportFlow(messageFlow, auditRepo)

	// Initialize handlers
	h := router.Handlers{
		AdminAuth:  handlers.NewAdminAuthHandler(sessionFlow, captchaService, tokenService),
		Session:    handlers.NewSessionHandler(sessionFlow),
		Country:    handlers.NewCountryHandler(countryFlow),
		Inventory:  handlers.NewInventoryHandler(inventoryFlow),
		Team:       handlers.NewTeamHandler(teamFlow),
		Allocation: handlers.NewAllocationHandler(allocationFlow, sessionFlow),
		Message:    handlers.NewMessageHandler(messageFlow, sessionFlow),
		Stats:      handlers.NewStatsHandler(statsFlow),
		Monitor:    handlers.NewMonitorHandler(messageFlow, exportFlow),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	appRouter := router.NewFiberRouter(cfg, h, authMiddleware)

	// Realtime WebSocket fan-out on its own listener; gorilla/websocket needs
	// net/http hijacking, which the fasthttp-based API server cannot provide
	hub := realtime.NewHub(store)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	realtimeServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Realtime.Host, cfg.Realtime.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // long-lived websocket writes manage their own deadlines
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	stopCleanup := startSessionCleanup(context.Background(), sessionRepo, time.Hour)
	stopFuncs = append(stopFuncs, stopCleanup)

	return &Application{
		router:         appRouter,
		config:         cfg,
		realtimeServer: realtimeServer,
		stopFuncs:      stopFuncs,
	}, nil
}

// ensureAdmin seeds the single admin row on first start
func ensureAdmin(db *gorm.DB, adminRepo repository.AdminRepository, cfg config.AdminConfig) error {
	existing, err := adminRepo.ByEmail(context.Background(), cfg.AllowedEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if cfg.BootstrapPassword == "" {
		log.Printf("No admin row for %s and no bootstrap password set; admin login will fail until one is created", cfg.AllowedEmail)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Email:        cfg.AllowedEmail,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(context.Background(), admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Printf("Seeded admin account for %s", cfg.AllowedEmail)
	return nil
}

// startSessionCleanup purges expired member sessions in the background
func startSessionCleanup(parent context.Context, sessionRepo repository.MemberSessionRepository, interval time.Duration) func() {
	cleanupCtx, cancel := context.WithCancel(parent)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 30*time.Second)
				if err := sessionRepo.DeleteExpired(ctx); err != nil {
					log.Printf("Session cleanup failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}
