package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donaciones-backend/internal/client"
	"donaciones-backend/internal/config"
	"donaciones-backend/internal/handler"
	"donaciones-backend/internal/logger"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/provider"
	"donaciones-backend/internal/repository"
	"donaciones-backend/internal/server"
	"donaciones-backend/internal/service"
	"donaciones-backend/internal/storage"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// evidenceMaxAge is how long an evidence file survives before the sweep
// deletes it, referenced or not.
const evidenceMaxAge = 30 * 24 * time.Hour

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment, cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitDBClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}

	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	mercadoPagoClient := client.NewMercadoPagoClient(&cfg.MercadoPago)

	providers := map[string]provider.Provider{
		model.ProviderPaypal:      provider.NewPaypal(paypalClient),
		model.ProviderMercadoPago: provider.NewMercadoPago(mercadoPagoClient),
	}

	donationRepo := repository.NewDonationRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	evidenceStore := storage.NewEvidenceStore(cfg.Upload.Dir, cfg.BaseURL, cfg.Upload.MaxSizeBytes, log)

	donationService := service.NewDonationService(db, donationRepo, evidenceRepo, evidenceStore)
	invoiceService := service.NewInvoiceService(donationRepo, invoiceRepo)
	paymentService := service.NewPaymentService(
		db, providers, cfg.BaseURL,
		donationRepo,
		paymentRepo,
		webhookEventRepo,
		log,
	)

	donationHandler := handler.NewDonationHandler(donationService, cfg.Upload.MaxFiles)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	srv := server.NewServer(donationHandler, invoiceHandler, paymentHandler, evidenceStore, cfg.Auth.JWTSecret, log)

	// periodic evidence sweep
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := evidenceStore.CleanupOlderThan(evidenceMaxAge); err != nil {
					log.Error("evidence cleanup", zap.Error(err))
				}
			case <-sweepDone:
				return
			}
		}
	}()

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	close(sweepDone)

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
