package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/lunarweb/schedcal/internal/calendar"
	"github.com/lunarweb/schedcal/internal/google"
	"github.com/lunarweb/schedcal/internal/instrumentation"
	"github.com/lunarweb/schedcal/internal/schedule"
	"github.com/lunarweb/schedcal/internal/server"
)

// ServeConfig holds the configuration for the booking service.
type ServeConfig struct {
	HTTPAddr   string
	CalendarID string
	KeyFile    string

	Timezone    string
	DayStart    string
	DayEnd      string
	SlotMinutes int

	TokenCache bool
	Debug      bool

	MetricsEnabled bool
	MetricsAddr    string
}

func newServeCmd() *cobra.Command {
	var cfg ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP booking service",
		Long: `Start the HTTP booking service.

The service answers JSON action requests on its root endpoint:
  - getAvailableSlots: free slots for a date within working hours
  - createEvent: book an event and invite attendees

Credentials:
  A Google service account key is required. Provide it with
  --service-account-file or the GOOGLE_SERVICE_ACCOUNT_FILE env var,
  or put the key JSON itself in GOOGLE_SERVICE_ACCOUNT_JSON.
  Share the target calendar with the service account's client_email,
  otherwise every request fails with a permission error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &cfg)
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", ":8080", "HTTP server address")
	cmd.Flags().StringVar(&cfg.CalendarID, "calendar-id", "", "Calendar to compute slots for and book events against. Can also use CALENDAR_ID env var.")
	cmd.Flags().StringVar(&cfg.KeyFile, "service-account-file", "", "Path to the service account key JSON file. Can also use GOOGLE_SERVICE_ACCOUNT_FILE env var.")
	cmd.Flags().StringVar(&cfg.Timezone, "timezone", "Europe/London", "IANA time zone for working hours and day bounds")
	cmd.Flags().StringVar(&cfg.DayStart, "day-start", "09:00", "Start of the working day (HH:MM)")
	cmd.Flags().StringVar(&cfg.DayEnd, "day-end", "17:00", "End of the working day (HH:MM)")
	cmd.Flags().IntVar(&cfg.SlotMinutes, "slot-minutes", 30, "Slot length in minutes")
	cmd.Flags().BoolVar(&cfg.TokenCache, "token-cache", true, "Reuse access tokens until shortly before expiry instead of exchanging per request")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadServeEnvVars fills in configuration from environment variables.
// Environment variables only apply when the flag was not explicitly set.
func loadServeEnvVars(cmd *cobra.Command, cfg *ServeConfig) {
	if !cmd.Flags().Changed("calendar-id") && cfg.CalendarID == "" {
		cfg.CalendarID = os.Getenv("CALENDAR_ID")
	}
	if !cmd.Flags().Changed("service-account-file") && cfg.KeyFile == "" {
		cfg.KeyFile = os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		if os.Getenv("METRICS_ENABLED") == "false" {
			cfg.MetricsEnabled = false
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			cfg.MetricsAddr = addr
		}
	}
}

// loadServiceAccountKey resolves the service account key from the configured
// file path or, failing that, inline key JSON in the environment.
func loadServiceAccountKey(cfg ServeConfig) (*google.ServiceAccountKey, error) {
	if cfg.KeyFile != "" {
		return google.LoadKey(cfg.KeyFile)
	}
	if inline := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"); inline != "" {
		return google.ParseKey([]byte(inline))
	}
	return nil, fmt.Errorf("no service account key configured: set --service-account-file, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON")
}

func runServe(parent context.Context, cfg ServeConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.CalendarID == "" {
		return fmt.Errorf("calendar ID is required: set --calendar-id or CALENDAR_ID")
	}

	hours, err := schedule.NewWorkingHours(cfg.DayStart, cfg.DayEnd, time.Duration(cfg.SlotMinutes)*time.Minute, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid working hours: %w", err)
	}

	key, err := loadServiceAccountKey(cfg)
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	// Start metrics server on a dedicated port if enabled
	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use a ready channel to confirm the metrics server started
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	// Token chain: signer, optional cache, metrics wrapper. The oauth2
	// source used by the calendar HTTP client shares the same cache so
	// calendar calls reuse tokens too.
	src, err := google.NewTokenSource(key, google.TokenSourceConfig{})
	if err != nil {
		return fmt.Errorf("failed to create token source: %w", err)
	}

	var tokens google.TokenProvider = src
	var oauthSrc oauth2.TokenSource = src
	if cfg.TokenCache {
		cached := google.NewCachingTokenProvider(src)
		tokens = cached
		oauthSrc = cached
	}
	if provider.Enabled() {
		tokens = server.NewInstrumentedTokenProvider(tokens, provider.Metrics())
	}

	cal, err := calendar.NewClient(shutdownCtx, oauthSrc)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}
	var calAPI server.CalendarAPI = cal
	if provider.Enabled() {
		calAPI = server.NewInstrumentedCalendar(cal, provider.Metrics())
	}

	booking, err := server.NewBookingServer(server.BookingServerConfig{
		CalendarID: cfg.CalendarID,
		Hours:      hours,
		Tokens:     tokens,
		Calendar:   calAPI,
		Logger:     logger,
		Metrics:    provider.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create booking server: %w", err)
	}

	healthChecker := server.NewHealthChecker()

	mux := http.NewServeMux()
	mux.Handle("/", booking.Handler())
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting booking service",
		"addr", cfg.HTTPAddr,
		"calendar", cfg.CalendarID,
		"timezone", cfg.Timezone,
		"day_start", cfg.DayStart,
		"day_end", cfg.DayEnd,
		"slot_minutes", cfg.SlotMinutes,
		"token_cache", cfg.TokenCache,
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)

		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
