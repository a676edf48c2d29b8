package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/alphinus/kewa-app-sub000/internal/api/http"
	"github.com/alphinus/kewa-app-sub000/internal/application/access"
	"github.com/alphinus/kewa-app-sub000/internal/application/audit"
	"github.com/alphinus/kewa-app-sub000/internal/application/negotiation"
	"github.com/alphinus/kewa-app-sub000/internal/application/portal"
	"github.com/alphinus/kewa-app-sub000/internal/application/workorder"
	"github.com/alphinus/kewa-app-sub000/internal/config"
	"github.com/alphinus/kewa-app-sub000/internal/infrastructure/maillog"
	"github.com/alphinus/kewa-app-sub000/internal/infrastructure/postgres"
	"github.com/alphinus/kewa-app-sub000/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	workOrderRepo := postgres.NewWorkOrderRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()
	defer sseHub.Stop()
	linkSender := maillog.NewSender(cfg.LinkBaseURL, logger)

	// services
	auditKey := loadHexKey(cfg.AuditSigningKey)
	auditSvc := audit.NewService(auditRepo, logger, auditKey)
	accessSvc := access.NewService(tokenRepo, workOrderRepo, auditSvc, sseHub, logger)
	workOrderSvc := workorder.NewService(workOrderRepo, tokenRepo, auditSvc, sseHub, linkSender, cfg.LinkTTL, logger)
	negotiationSvc := negotiation.NewService(workOrderRepo, auditSvc, sseHub, logger)
	portalSvc := portal.NewService(accessSvc, negotiationSvc, workOrderSvc, logger)

	// API server
	apiServer := httpapi.NewServer(portalSvc, workOrderSvc, negotiationSvc, auditSvc, sseHub, cfg.OperatorAPIKey, logger)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}

func loadHexKey(hexStr string) []byte {
	if hexStr == "" {
		return nil
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}
	return b
}
