// Package main initializes and starts the VeriFlow dev backend,
// setting up configuration, logging, storage, repositories, services,
// and the HTTP router.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/VeriFlow/internal/config"
	"github.com/atinyakov/VeriFlow/internal/db"
	"github.com/atinyakov/VeriFlow/internal/logger"
	"github.com/atinyakov/VeriFlow/internal/metrics"
	"github.com/atinyakov/VeriFlow/internal/repository"
	"github.com/atinyakov/VeriFlow/internal/server/handler/http"
	"github.com/atinyakov/VeriFlow/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dsn := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	if version == "" {
		version = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	fmt.Printf("Build version: %s\n", version)
	fmt.Printf("Build date: %s\n", buildDate)

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Choose storage: PostgreSQL when a DSN is configured, otherwise
	// in-memory (handy for local runs against the client).
	var repo service.VerificationRepository
	if dsn != "" {
		postgresDB, err := db.InitPostgres(dsn)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}

		// Expire jobs abandoned mid-verification.
		db.StartStaleJobExpirer(context.Background(), postgresDB,
			time.Minute,  // interval
			24*time.Hour, // retention
			zapLogger,
		)

		repo = repository.NewPostgresVerificationRepository(postgresDB)
		zapLogger.Info("using postgres storage")
	} else {
		repo = repository.NewMemoryVerificationRepository()
		zapLogger.Info("using in-memory storage")
	}

	// Initialize metrics and the business-logic service.
	m := metrics.New()
	verifyService := service.NewVerificationService(repo, m, zapLogger)

	// Run the simulated status progression in the background.
	verifyService.StartProcessor(context.Background(), time.Second)

	// Create HTTP handlers for the verification endpoints.
	verifyHandler := &http.VerificationHandler{Service: verifyService}

	// Build the router with middleware and routes.
	router := http.NewRouter(verifyHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
