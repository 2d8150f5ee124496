package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/phisnet/backend/internal/api"
	"github.com/phisnet/backend/internal/catalog"
	"github.com/phisnet/backend/internal/classify"
	"github.com/phisnet/backend/internal/config"
	"github.com/phisnet/backend/internal/dashboard"
	"github.com/phisnet/backend/internal/history"
	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/monitoring"
	"github.com/phisnet/backend/internal/notify"
	"github.com/phisnet/backend/internal/reports"
	"github.com/phisnet/backend/internal/storage"
	"github.com/phisnet/backend/internal/threats"
	"github.com/phisnet/backend/internal/upload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "PHISNET.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)
	debug := logger.ParseLevel(cfg.Advanced.LogLevel) == zerolog.DebugLevel

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatal().Err(err).Msg("failed to create directories")
	}

	// Blob storage; leftovers from a previous run are purged
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	cat, err := catalog.Load(cfg.Advanced.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Advanced.CatalogPath).Msg("failed to load catalog")
	}

	analyses, err := history.NewStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open analytics store")
	}

	sinks := []upload.CompletionSink{analyses}
	var publisher *notify.RedisPublisher
	if cfg.Notifications.Enabled {
		publisher, err = notify.NewRedisPublisher(
			cfg.Notifications.RedisAddr,
			cfg.Notifications.Password,
			cfg.Notifications.DB,
			cfg.Notifications.Queue,
		)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Notifications.RedisAddr).Msg("completion notifications disabled")
		} else {
			sinks = append(sinks, publisher)
			log.Info().Str("queue", publisher.Queue()).Msg("completion notifications enabled")
		}
	}

	classifier := classify.NewMockClassifier(cat.Outcomes, cfg.Simulation.Seed, cfg.Simulation.FailureRatePercent)
	uploadMgr := upload.NewManager(fileStore, classifier, upload.Options{
		TickInterval:  cfg.TickInterval(),
		MaxStartDelay: cfg.MaxStartDelay(),
		MaxFileSize:   cfg.Simulation.MaxFileSizeBytes,
		Seed:          cfg.Simulation.Seed,
	}, sinks...)

	live := dashboard.NewLive(cat.Dashboard, cfg.DashboardInterval(), cfg.Simulation.Seed, cfg.Dashboard.Live)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	live.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, debug)

	// Configure middleware
	httpLog := logger.Component("http")
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.HasSuffix(path, "/stats")
		},
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := httpLog.Info()
			if v.Error != nil {
				ev = httpLog.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Uploads:        uploadMgr,
		Blobs:          fileStore,
		MaxFileSize:    cfg.Simulation.MaxFileSizeBytes,
		Threats:        threats.NewFeed(cat.Threats, cat.ThreatTypes),
		Dashboard:      live,
		Analytics:      analyses,
		Monitoring:     monitoring.NewBoard(cat.Monitoring.Components, cat.Monitoring.Alerts),
		Reports:        reports.NewLibrary(cat.ReportTypes, cat.Reports, cat.GreenIT),
		Version:        Version,
		WSPingInterval: time.Duration(cfg.Advanced.WebSocketPingSeconds) * time.Second,
	}))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(configPath, cfg)

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	// Stop the simulation before releasing what it writes to.
	uploadMgr.Close()
	live.Stop()
	if err := fileStore.Purge(); err != nil {
		log.Warn().Err(err).Msg("failed to purge uploads")
	}
	if publisher != nil {
		publisher.Close()
	}
	if err := analyses.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close analytics store")
	}
}

func printBanner(configPath string, cfg *config.AppConfig) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PHISNET Threat Monitoring Backend               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Uploads:   %-46s║\n", cfg.GetUploadDir())
	fmt.Printf("║  Tick:      %-46s║\n", cfg.TickInterval())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
