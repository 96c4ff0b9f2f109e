package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	server "github.com/mauv0809/courtside/internal/http"
	"github.com/mauv0809/courtside/internal/invite"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/notifier/email"
	"github.com/mauv0809/courtside/internal/notifier/slack"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/ratelimit"
	"github.com/mauv0809/courtside/internal/scheduler"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/mauv0809/courtside/internal/venue"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	log.Info("Database initialization time recorded", "duration_ms", time.Since(startTime).Milliseconds())
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	courtCache := cache.NewNoop()
	if cfg.Redis.Enabled() {
		courtCache = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "courtside")
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := courtCache.Ping(pingCtx); err != nil {
			// Court reads fall back to the database while Redis is down.
			log.Warn("Redis not reachable at startup", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	}

	notifiers := buildNotifiers(ctx, cfg, metricsSvc)

	events := pubsub.NewNoop()
	if cfg.ProjectID != "" {
		if events, err = pubsub.New(ctx, cfg.ProjectID); err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
	}
	defer events.Close()

	users := user.New(db)
	venues := venue.New(db, courtCache, cfg.CourtCacheTTL)
	checker := availability.New(db, venues)
	bookings := booking.New(db, users, notifiers, events, metricsSvc)
	invites := invite.NewStore(db, events, metricsSvc, cfg.DefaultPhoneRegion)
	authenticator := auth.New(cfg.JWTSecret, users)
	limiter := ratelimit.New(cfg.JoinRatePerMinute, cfg.TrustProxy)

	reminders, err := scheduler.New(bookings)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %s", err)
	}
	if _, err := reminders.RegisterReminders(cfg.ReminderCron); err != nil {
		log.Fatalf("Failed to register reminder job: %s", err)
	}
	reminders.Start()

	s := server.NewServer(
		db,
		courtCache,
		venues,
		checker,
		bookings,
		invites,
		authenticator,
		limiter,
		metricsSvc,
		metricsHandler,
		cfg,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("Server gracefully stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", "error", err)
	}

	if err := reminders.Stop(); err != nil {
		log.Error("Scheduler shutdown failed", "error", err)
	}
	// Let in-flight notifications and events finish before the database closes.
	bookings.Wait()
	log.Info("Server process shutting down")
}

// buildNotifiers returns the configured notification channels. With none
// configured notifications are dropped.
func buildNotifiers(ctx context.Context, cfg config.Config, m metrics.Metrics) notifier.Notifier {
	var channels notifier.Multi
	if cfg.SES.Enabled() {
		sender, err := email.NewSESClient(ctx, cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, cfg.SES.Region, cfg.SES.Sender)
		if err != nil {
			log.Fatalf("Failed to initialize SES: %s", err)
		}
		channels = append(channels, email.NewNotifier(sender, m))
		log.Info("Email notifications enabled", "region", cfg.SES.Region)
	}
	if cfg.Slack.Enabled() {
		channels = append(channels, slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, m, false))
		log.Info("Slack owner alerts enabled", "channel", cfg.Slack.ChannelID)
	}
	if len(channels) == 0 {
		log.Warn("No notification channel configured")
	}
	return channels
}
