package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/quantifyai/refibot/internal/api/router"
	"github.com/quantifyai/refibot/internal/chatbot"
	appconfig "github.com/quantifyai/refibot/internal/config"
	"github.com/quantifyai/refibot/internal/http/handlers"
	"github.com/quantifyai/refibot/internal/messaging"
	"github.com/quantifyai/refibot/internal/notify"
	"github.com/quantifyai/refibot/internal/observability/metrics"
	"github.com/quantifyai/refibot/internal/persuade"
	"github.com/quantifyai/refibot/internal/portal"
	"github.com/quantifyai/refibot/internal/profile"
	"github.com/quantifyai/refibot/internal/rates"
	"github.com/quantifyai/refibot/internal/refinance"
	"github.com/quantifyai/refibot/internal/transcript"
	"github.com/quantifyai/refibot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting refibot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	chatMetrics := metrics.NewChatbotMetrics(reg)

	// Rate source, profile mirror, and transcript log. All degrade to
	// in-memory or disabled when no database is configured.
	fallbackRates := rates.StaticSource{
		LenderName:      cfg.DefaultLenderName,
		Rate:            cfg.DefaultRate,
		SmallLoanRate:   cfg.SmallLoanRate,
		SmallLoanCutoff: cfg.SmallLoanCutoff,
	}
	var rateSource rates.Source = fallbackRates
	var profiles profile.Repository = profile.NewInMemoryRepository()
	var transcripts *transcript.Store

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		rateSource = rates.NewPostgresSource(pool, fallbackRates, logger)
		profiles = profile.NewPostgresRepository(pool)

		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open transcript db", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		transcripts = transcript.NewStore(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory profiles and static rates")
	}

	calc := refinance.NewCalculator(rateSource, cfg.MinLifetimeSavings, logger)

	// Session store.
	var sessions chatbot.SessionStore
	if cfg.SessionStore == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		store, err := chatbot.NewRedisStore(client, chatbot.DefaultSessionTTL)
		if err != nil {
			logger.Error("failed to create redis session store", "error", err)
			os.Exit(1)
		}
		sessions = store
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = chatbot.NewMemoryStore()
		logger.Warn("using in-memory session store, sessions are lost on restart")
	}

	// Outbound messenger.
	var messenger messaging.Messenger
	if cfg.WhatsAppAccessToken != "" && cfg.WhatsAppPhoneNumberID != "" {
		client, err := messaging.NewWhatsAppClient(messaging.WhatsAppConfig{
			BaseURL:       cfg.WhatsAppBaseURL,
			AccessToken:   cfg.WhatsAppAccessToken,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
			Timeout:       cfg.OutboundTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to create whatsapp client", "error", err)
			os.Exit(1)
		}
		messenger = client
	} else {
		logger.Warn("whatsapp credentials not set, outbound messages go to the log")
		messenger = messaging.NewStubMessenger(logger)
	}

	// Lead submission to the portal CRM.
	var submitter portal.Submitter
	if cfg.PortalAPIURL != "" && cfg.PortalAPIKey != "" {
		submitter = portal.NewClient(cfg.PortalAPIURL, cfg.PortalAPIKey, cfg.PortalMaxRetries, cfg.PortalTimeout, logger)
	} else {
		logger.Warn("portal credentials not set, leads will not be submitted")
	}

	// Persuasive closing message, LLM-backed with a static fallback.
	var persuader chatbot.Persuader
	if cfg.GeminiAPIKey != "" {
		gemini, err := persuade.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini generator", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		persuader = persuade.NewFallbackGenerator(gemini, logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set, using static persuasion messages")
		persuader = persuade.NewFallbackGenerator(nil, logger)
	}

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	notifier := notify.NewService(messenger, cfg.AdminChatID, emailSender, cfg.AdminEmail, logger)

	engine := chatbot.NewEngine(
		sessions,
		refinance.DefaultLimits,
		calc,
		messenger,
		submitter,
		persuader,
		profiles,
		notifier,
		transcripts,
		chatMetrics,
		chatbot.Options{
			Referral: chatbot.ReferralPolicy{
				Required:    cfg.ReferralRequired,
				Prefix:      cfg.ReferralPrefix,
				DefaultCode: cfg.ReferralDefaultCode,
			},
			AdminContactURL:         cfg.AdminContactURL,
			SubmitDisqualifiedLeads: cfg.SubmitDisqualifiedLeads,
		},
		logger,
	)
	dispatcher := chatbot.NewDispatcher(engine)

	webhookHandler := handlers.NewWebhookHandler(func(chatID, text string) {
		dispatcher.Dispatch(context.Background(), chatID, text)
	}, cfg.WhatsAppVerifyToken, chatMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		WebhookHandler:     webhookHandler,
		Calculate:          handlers.NewCalculateHandler(calc, refinance.DefaultLimits, profiles, logger),
		AdminProfiles:      handlers.NewAdminProfilesHandler(profiles, transcripts, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CalculateRateLimit: cfg.CalculateRateLimit,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
