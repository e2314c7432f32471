package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sarthak7846/uptime-monitor/db"
	"github.com/sarthak7846/uptime-monitor/internal/auth"
	"github.com/sarthak7846/uptime-monitor/internal/config"
	"github.com/sarthak7846/uptime-monitor/internal/handlers"
	"github.com/sarthak7846/uptime-monitor/internal/health"
	"github.com/sarthak7846/uptime-monitor/internal/middleware"
	"github.com/sarthak7846/uptime-monitor/internal/notify"
	"github.com/sarthak7846/uptime-monitor/internal/outbox"
	"github.com/sarthak7846/uptime-monitor/internal/prober"
	"github.com/sarthak7846/uptime-monitor/internal/router"
	"github.com/sarthak7846/uptime-monitor/internal/scheduler"
	"github.com/sarthak7846/uptime-monitor/internal/store"
	"github.com/sarthak7846/uptime-monitor/internal/types"
	"github.com/sarthak7846/uptime-monitor/internal/uptime"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// A missing .env is fine in containerized deployments
		fmt.Fprintln(os.Stderr, "no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)

	gin.SetMode(ginMode(cfg.Server.Mode))

	gdb, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	st := store.New(gdb)

	authManager, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize auth")
	}

	hub := handlers.NewHub(logger)

	engine := health.NewEngine(st, st, st, prober.NewHTTPProber(), hub, logger)

	tick := func(ctx context.Context, monitorID uint) error {
		err := engine.ProcessTick(ctx, monitorID)
		if errors.Is(err, store.ErrNotFound) {
			// The monitor is gone; stop probing it.
			return scheduler.ErrDropJob
		}
		return err
	}

	sched, err := scheduler.New(tick, cfg.Scheduler.WorkerLimit, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize scheduler")
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	monitors, err := st.ListAllMonitors(bootCtx)
	cancelBoot()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load monitors")
	}
	for i := range monitors {
		m := &monitors[i]
		if err := sched.Schedule(m.ID, time.Duration(m.Interval)*time.Millisecond); err != nil {
			logger.Error().Err(err).Uint("monitor_id", m.ID).Msg("failed to schedule monitor")
		}
	}
	sched.Start()
	logger.Info().Int("monitors", len(monitors)).Msg("scheduler started")

	deliverers := map[string]notify.Deliverer{
		types.ChannelEmail:   notify.NewEmailSender(cfg.Email.BaseURL, cfg.Email.APIKey, cfg.Email.From),
		types.ChannelWebhook: notify.NewWebhookSender(),
	}

	dispatcher := outbox.NewDispatcher(st, st, deliverers, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize, logger)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	go dispatcher.Run(dispatcherCtx)

	agg := uptime.NewAggregator(st, st)

	h := handlers.New(st, authManager, sched, agg, hub, logger)
	r := router.NewRouter(h, middleware.AuthMiddleware(authManager, st))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	stopDispatcher()

	if err := sched.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("scheduler shutdown failed")
	}

	logger.Info().Msg("goodbye")
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Logger()
}

func ginMode(mode string) string {
	if mode == "release" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
