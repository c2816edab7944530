package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rollcall_backend/attendance"
	"rollcall_backend/config"
	"rollcall_backend/db"
	"rollcall_backend/routes"
	"rollcall_backend/scheduler"
	"rollcall_backend/tokens"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found") // Non-fatal in production
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET environment variable is required")
	}
	jwtSecret := []byte(cfg.JWTSecret)

	// Connect to database
	database, err := db.Initialize(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		logger.Fatal("Error connecting to database", zap.Error(err))
	}
	defer database.Close()

	// Initialize database schema
	if err := db.InitSchema(database); err != nil {
		logger.Fatal("Error initializing database schema", zap.Error(err))
	}

	// Seed initial data
	if err := db.SeedData(database); err != nil {
		logger.Fatal("Error seeding initial data", zap.Error(err))
	}

	// Wire up the token lifecycle
	sessions := db.NewSessionDirectory(database)
	tokenStore := tokens.NewPostgresStore(database)
	issuer := tokens.NewIssuer(tokenStore, sessions, cfg.ExpiryWindow, cfg.RotationInterval, logger)
	audit := attendance.NewAudit(database, logger)
	validator := attendance.NewValidator(tokenStore, attendance.NewPostgresStore(database), sessions, audit, cfg.LateGracePeriod, logger)

	// Start the rotation scheduler
	rotator := scheduler.NewRotator(issuer, sessions, cfg.RotationInterval, logger)
	if err := rotator.Start(); err != nil {
		logger.Fatal("Error starting token rotation", zap.Error(err))
	}
	defer rotator.Stop()

	// Initialize router
	r := gin.Default()

	// Setup CORS - Simplified for mobile app
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
		"PATCH",
	}
	r.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(r, database, jwtSecret, issuer, validator, audit, logger)

	// Run server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
}
