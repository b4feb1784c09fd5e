package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "eventcatalog/docs"

	"eventcatalog/config"
	"eventcatalog/internal/adapters/auth"
	"eventcatalog/internal/adapters/email"
	"eventcatalog/internal/clock"
	deliveryhttp "eventcatalog/internal/delivery/http"
	"eventcatalog/internal/delivery/http/controllers"
	"eventcatalog/internal/domain"
	"eventcatalog/internal/repository/postgres"
	"eventcatalog/internal/services"
	"eventcatalog/migrations"
)

const (
	startupTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Event Catalog API
// @version 1.0
// @description Create events, browse the public catalog and RSVP.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := postgres.Open(startupCtx, cfg.DBUrl, cfg.DBConnectAttempts, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Apply(startupCtx, db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// The OIDC key set keeps this context for its lifetime, so it must not carry the startup deadline.
	verifier, err := newVerifier(context.Background(), cfg.Auth)
	if err != nil {
		return err
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)
	userRepo := postgres.NewUserRepository(db)

	clk := clock.NewSystem()
	links := services.EventLinks{BaseURL: cfg.AppBaseURL}
	eventSvc := services.NewEventService(eventRepo, userRepo, clk, cfg.QueryTimeout)
	rsvpSvc := services.NewRSVPService(eventRepo, rsvpRepo, invitationRepo, userRepo, emailSvc, links, clk, logger, cfg.QueryTimeout)
	invitationSvc := services.NewInvitationService(eventRepo, userRepo, invitationRepo, emailSvc, links, clk, logger, cfg.QueryTimeout)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:      controllers.NewEventController(logger, eventSvc),
		RSVPs:       controllers.NewRSVPController(logger, rsvpSvc),
		Invitations: controllers.NewInvitationController(logger, invitationSvc),
		Health:      controllers.NewHealthController(logger, db),
	}, verifier, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewHandler(mux, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment, "auth", cfg.Auth.Provider, "mail", cfg.Mail.Provider)
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (domain.TokenVerifier, error) {
	switch cfg.Provider {
	case config.AuthProviderOIDC:
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuerURL, cfg.OIDCClientID)
		if err != nil {
			return nil, fmt.Errorf("create oidc verifier: %w", err)
		}
		return v, nil
	default:
		return auth.NewJWTVerifier(cfg.JWTSecret), nil
	}
}
