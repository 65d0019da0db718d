package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/middleware"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const (
	appName    = "AI Resume Analyzer API"
	appVersion = "1.0.0"

	// multipartOverhead leaves room for the job field and part headers.
	multipartOverhead = 1 << 20
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("config loaded", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportRepo, err := newReportRepository(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize report store", zap.Error(err))
	}

	engine, err := newAnalysisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize analysis engine", zap.Error(err))
	}
	log.Info("analysis engine initialized", zap.String(logger.FieldEngine, cfg.Engine.Provider))

	verifier := newIdentityVerifier(cfg, log)

	analyzer := services.NewAnalyzerService(services.NewTextExtractor(), engine, reportRepo, log)

	analyzeHandler := handlers.NewAnalyzeHandler(analyzer, cfg.Storage.MaxFileSize)
	historyHandler := handlers.NewHistoryHandler(analyzer)
	assistantHandler := handlers.NewAssistantHandler(analyzer)

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Engine.Timeout*time.Duration(cfg.Engine.MaxRetries+1) + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   appName,
			"version":   appVersion,
			"endpoints": handlers.Endpoints(),
		})
	})

	handlers.RegisterRoutes(app,
		middleware.RequireAuth(verifier, log),
		analyzeHandler,
		historyHandler,
		assistantHandler,
	)

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func newReportRepository(cfg *config.Config, log *zap.Logger) (repositories.ReportRepository, error) {
	if cfg.Database.Driver == config.DatabaseDriverMemory {
		log.Warn("using in-memory report store; history is lost on restart")
		return repositories.NewMemoryReportRepository(), nil
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	return repositories.NewReportRepository(db), nil
}

func newAnalysisClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.AnalysisClient, error) {
	if cfg.Engine.Provider == config.EngineProviderGemini {
		return services.NewGeminiService(ctx, services.GeminiOptions{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			Timeout:    cfg.Engine.Timeout,
			MaxRetries: cfg.Engine.MaxRetries,
		}, log)
	}

	return services.NewEngineClient(services.EngineOptions{
		BaseURL:    cfg.Engine.BaseURL,
		Timeout:    cfg.Engine.Timeout,
		MaxRetries: cfg.Engine.MaxRetries,
		RetryWait:  cfg.Engine.RetryWait,
	}, log), nil
}

func newIdentityVerifier(cfg *config.Config, log *zap.Logger) services.IdentityVerifier {
	if cfg.Auth.HMACSecret != "" {
		log.Warn("verifying tokens with a shared HMAC secret; do not use in production")
		return services.NewIdentityVerifier(services.NewStaticKeySet(cfg.Auth.HMACSecret), cfg.Auth.Issuer, cfg.Auth.Audience)
	}

	keySet := services.NewRemoteKeySet(
		resty.New().SetTimeout(10*time.Second).SetRetryCount(1),
		cfg.Auth.CertsURL,
		cfg.Auth.KeyRefresh,
		log,
	)
	return services.NewIdentityVerifier(keySet, cfg.Auth.Issuer, cfg.Auth.Audience)
}
