package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quicklaunchweb/leadrelay/internal/api/router"
	appconfig "github.com/quicklaunchweb/leadrelay/internal/config"
	"github.com/quicklaunchweb/leadrelay/internal/http/handlers"
	"github.com/quicklaunchweb/leadrelay/internal/notify"
	"github.com/quicklaunchweb/leadrelay/internal/observability/metrics"
	"github.com/quicklaunchweb/leadrelay/internal/site"
	"github.com/quicklaunchweb/leadrelay/pkg/logging"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting leadrelay API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"default_site", cfg.DefaultSite,
		"provider", cfg.EmailProvider,
	)

	sender, credentialVar, credentialSet := buildSender(cfg, logger)
	intakeMetrics := metrics.NewIntakeMetrics(nil)

	dispatcher := notify.NewDispatcher(sender, notify.DispatcherOptions{
		CredentialVar: credentialVar,
		CredentialSet: credentialSet,
		To:            cfg.LeadToEmail,
		FromOverride:  cfg.LeadFromEmail,
		ReplyTo:       cfg.LeadReplyTo,
		Bcc:           cfg.LeadBCC,
		DryRun:        cfg.LeadDryRun,
		Production:    cfg.IsProduction(),
	}, logger)

	leadHandlers := make(map[string]*handlers.LeadHandler)
	for _, profile := range site.Profiles() {
		leadHandlers[profile.Key] = handlers.NewLeadHandler(profile, dispatcher, intakeMetrics, logger, cfg.IsDevelopment())
	}
	if _, ok := leadHandlers[cfg.DefaultSite]; !ok {
		logger.Error("unknown default site", "site", cfg.DefaultSite)
		os.Exit(1)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		LeadHandlers:       leadHandlers,
		DefaultSite:        cfg.DefaultSite,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildSender picks the configured email provider and reports which
// credential variable gates it.
func buildSender(cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, string, bool) {
	switch cfg.EmailProvider {
	case "smtp":
		if s := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, logger); s != nil {
			return s, "SMTP_HOST", true
		}
		return notify.NewStubEmailSender(logger), "SMTP_HOST", false
	default:
		if s := notify.NewSendGridSender(cfg.SendGridAPIKey, logger); s != nil {
			return s, "SENDGRID_API_KEY", true
		}
		return notify.NewStubEmailSender(logger), "SENDGRID_API_KEY", false
	}
}
