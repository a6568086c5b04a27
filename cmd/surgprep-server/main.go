package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/surgprep/surgprep/internal/config"
	"github.com/surgprep/surgprep/internal/domain/documents"
	"github.com/surgprep/surgprep/internal/domain/patient"
	"github.com/surgprep/surgprep/internal/platform/metrics"
	"github.com/surgprep/surgprep/internal/platform/middleware"
	"github.com/surgprep/surgprep/internal/platform/session"
	"github.com/surgprep/surgprep/internal/platform/web"
)

const version = "0.1.0"

// formBodyLimit applies to every request except document uploads.
const formBodyLimit = "1M"

func main() {
	rootCmd := &cobra.Command{
		Use:   "surgprep-server",
		Short: "Patient surgery prep server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the surgery prep web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Load and validate configuration without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := checkConfig(cfg); err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}

	cmd.AddCommand(checkCmd)
	return cmd
}

// checkConfig runs Config.Validate plus the checks that need platform
// packages.
func checkConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := middleware.ParseSize(cfg.MaxUploadSize); err != nil {
		return fmt.Errorf("MAX_UPLOAD_SIZE: %w", err)
	}
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	secret := "per-process random key"
	if cfg.SessionSecret != "" {
		secret = "set"
	}
	fmt.Fprintf(w, "env:              %s\n", cfg.Env)
	fmt.Fprintf(w, "port:             %s\n", cfg.Port)
	fmt.Fprintf(w, "timezone:         %s\n", cfg.Timezone)
	fmt.Fprintf(w, "session secret:   %s\n", secret)
	fmt.Fprintf(w, "session ttl:      %s\n", cfg.SessionTTL)
	fmt.Fprintf(w, "max upload size:  %s\n", cfg.MaxUploadSize)
	fmt.Fprintf(w, "metrics enabled:  %t\n", cfg.MetricsEnabled)
	fmt.Fprintln(w, "configuration OK")
}

func newLogger(dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// server bundles the echo instance with the state that outlives requests.
type server struct {
	echo    *echo.Echo
	store   *session.Store
	metrics *metrics.Metrics
}

func newServer(cfg *config.Config, logger zerolog.Logger) (*server, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	key, err := cfg.SessionKey()
	if err != nil {
		return nil, err
	}
	uploadLimit, err := middleware.ParseSize(cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	if key == nil {
		logger.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
	}

	m := metrics.New()
	store := session.NewStore(cfg.SessionTTL, m.SessionsActive)
	signer, err := session.NewSigner(key, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.BodyLimit(formBodyLimit, cfg.MaxUploadSize))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ok",
			"version":  version,
			"sessions": store.Len(),
		})
	})
	if cfg.MetricsEnabled {
		e.GET("/metrics", m.Handler())
	}

	sessions := session.Middleware(session.MiddlewareConfig{
		Store:  store,
		Signer: signer,
		Secure: cfg.CookieSecure,
	}, logger)
	ui := e.Group("", sessions)
	api := e.Group("/api/v1", sessions)

	ui.GET("/", func(c echo.Context) error {
		return c.Render(http.StatusOK, web.PageHome, web.Page{Title: "Home", Tab: "home"})
	})

	// Patients
	patientSvc := patient.NewService(logger, patient.WithRecorder(m), patient.WithLocation(loc))
	patientHandler := patient.NewHandler(patientSvc, func(c echo.Context) (patient.Workspace, error) {
		s, err := session.FromEcho(c)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	patientHandler.RegisterRoutes(ui, api)

	// Documents
	docSvc := documents.NewService(documents.PDFExtractor{}, documents.PlaceholderSummarizer{}, uploadLimit, m, logger)
	documents.NewHandler(docSvc).RegisterRoutes(ui, api)

	return &server{echo: e, store: store, metrics: m}, nil
}

func runServer() error {
	// Logger
	logger := newLogger(os.Getenv("ENV") == "" || os.Getenv("ENV") == "development")

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = newLogger(cfg.IsDev())
	if cfg.IsDev() {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go srv.store.RunSweeper(sweepCtx, cfg.SessionSweepInterval, logger)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopSweeper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.echo.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Int("sessions_dropped", srv.store.Len()).Msg("server stopped")
	return nil
}
