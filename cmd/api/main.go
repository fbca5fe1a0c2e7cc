package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/auth"
	"travel-backoffice/internal/checkout"
	"travel-backoffice/internal/config"
	"travel-backoffice/internal/database"
	"travel-backoffice/internal/logger"
	"travel-backoffice/internal/mailer"
	"travel-backoffice/internal/payments"
	"travel-backoffice/internal/quote"
	"travel-backoffice/internal/server"
	"travel-backoffice/internal/sessions"
	"travel-backoffice/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		logrus.Fatalf("Error creating logger: %v", err)
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Error connecting to database")
	}
	defer db.Close()

	authSvc := auth.NewService(db, auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL, cfg.Security.TokenIssuer), log)
	seeded, err := authSvc.EnsureAdmin(context.Background(), cfg.Security.AdminEmail, cfg.Security.AdminPassword)
	if err != nil {
		log.WithError(err).Fatal("Error seeding admin account")
	}
	if seeded {
		log.WithField("email", cfg.Security.AdminEmail).Info("Seeded first admin account")
	}

	checkoutSvc := checkout.NewService(
		db,
		payments.NewClient(&cfg.Payments, log),
		mailer.NewClient(&cfg.Mail, log),
		cfg.Mail.Agency,
		cfg.Payments.Currency,
		log,
	)

	// A nil Uploader disables uploads and quote PDFs.
	var uploader storage.Uploader
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3(context.Background(), &cfg.Storage, log)
		if err != nil {
			log.WithError(err).Fatal("Error configuring object storage")
		}
		uploader = s3
	} else {
		log.Warn("Object storage not configured, uploads are disabled")
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sessions.NewSweeper(db, &cfg.Sessions, log).Run(sweepCtx)

	srv := server.NewServer(cfg, server.Deps{
		DB:       db,
		Auth:     authSvc,
		Checkout: checkoutSvc,
		Storage:  uploader,
		PDF:      quote.NewChromeRenderer(cfg.Quote.RenderTimeout),
		Logger:   log,
	})

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.WithError(err).Fatal("Error creating listener")
	}

	errChan := make(chan error, 1)

	go func() {
		log.WithField("addr", srv.Addr).Info("Server started")
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server encountered an error")
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.WithError(err).Fatal("Server error")
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("Initiating graceful shutdown")
		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulStop)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Fatal("Could not gracefully shut down the server")
		}

		log.Info("Server gracefully stopped")
	}
}
