package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Eursukkul/race-registration/internal/config"
	"github.com/Eursukkul/race-registration/internal/export"
	"github.com/Eursukkul/race-registration/internal/geocode"
	"github.com/Eursukkul/race-registration/internal/handler"
	applog "github.com/Eursukkul/race-registration/internal/logger"
	"github.com/Eursukkul/race-registration/internal/middleware"
	"github.com/Eursukkul/race-registration/internal/notify"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/Eursukkul/race-registration/internal/storage"
	"github.com/Eursukkul/race-registration/pkg/database"
	"github.com/Eursukkul/race-registration/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate database failed", zap.Error(err))
	}

	// Notifications go to RabbitMQ when configured; the notifier process
	// fans them out to email and Telegram.
	var sink notify.Notifier = notify.Nop{}
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logger.Fatal("connect rabbitmq failed", zap.Error(err))
		}
		defer publisher.Close()
		sink = notify.NewAMQPNotifier(publisher)
	} else {
		logger.Warn("RABBITMQ_URL not set, registration notifications disabled")
	}
	notifier := notify.NewAsync(sink, logger, 10*time.Second)
	defer notifier.Wait()

	var sheets service.SheetsExporter
	if cfg.SheetsEnabled() {
		exporter, err := export.NewSheetsExporter(context.Background(),
			cfg.SheetsCredentialFile, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			logger.Fatal("init google sheets failed", zap.Error(err))
		}
		sheets = exporter
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	raceTypeRepo := repository.NewRaceTypeRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	organizerRepo := repository.NewOrganizerRepository(db)
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	docs := storage.NewDocumentStore(cfg.UploadDir)
	capacity := service.NewCapacityService(regRepo)
	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout)
	eventSvc := service.NewEventService(eventRepo, raceTypeRepo, locationRepo, capacity, geocoder, docs, logger)
	regSvc := service.NewRegistrationService(regRepo, eventRepo, organizerRepo, userRepo,
		docs, notifier, logger,
		service.RegistrationOptions{
			EnforceCapacity:  cfg.EnforceCapacity,
			PublicActiveOnly: cfg.PublicActiveOnly,
			PhoneRegion:      cfg.PhoneRegion,
		})
	reviewSvc := service.NewReviewService(reviewRepo, eventRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWTKey())
	profileSvc := service.NewProfileService(userRepo, docs, logger)
	organizerSvc := service.NewOrganizerService(organizerRepo, userRepo, eventRepo, logger)
	exportSvc := service.NewExportService(regRepo, sheets)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Validator = middleware.NewRequestValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.BodyLimit(cfg.MaxUploadSize))
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "race-registration"})
	})
	// Only event images are public. Receipts and profile photos go through
	// authenticated handlers.
	e.Static("/media/events", filepath.Join(cfg.UploadDir, "events"))

	requireAuth := middleware.JWT(cfg.JWTKey())
	optionalAuth := middleware.OptionalJWT(cfg.JWTKey())

	api := e.Group("/api/v1")
	handler.NewAuthHandler(authSvc).RegisterRoutes(api.Group("/auth"))
	handler.NewProfileHandler(profileSvc).RegisterRoutes(api.Group("/profile", requireAuth))
	handler.NewEventHandler(eventSvc).RegisterRoutes(api.Group("/events"))
	handler.NewRegistrationHandler(regSvc).RegisterRoutes(api, requireAuth, optionalAuth)
	handler.NewReviewHandler(reviewSvc).RegisterRoutes(api, requireAuth)
	handler.NewAdminHandler(eventSvc, exportSvc, organizerSvc, regSvc).RegisterRoutes(api.Group("/admin", requireAuth, middleware.RequireAdmin))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := serve(e, cfg, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server exited", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// serve runs plain HTTP in debug mode or when no TLS domains are set, and
// HTTPS with Let's Encrypt certificates otherwise.
func serve(e *echo.Echo, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Debug || len(cfg.TLSDomains) == 0 {
		logger.Info("starting server", zap.String("addr", ":"+cfg.ServerPort), zap.Bool("debug", cfg.Debug))
		return e.Start(":" + cfg.ServerPort)
	}

	e.AutoTLSManager.Prompt = autocert.AcceptTOS
	e.AutoTLSManager.Cache = autocert.DirCache(".cache")
	e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.TLSDomains...)
	e.TLSServer.ReadTimeout = 30 * time.Second
	e.TLSServer.WriteTimeout = 120 * time.Second
	e.TLSServer.IdleTimeout = 15 * time.Second

	logger.Info("starting tls server", zap.Strings("domains", cfg.TLSDomains))
	return e.StartAutoTLS(":443")
}
