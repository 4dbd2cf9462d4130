package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cre-underwriter/config"
	httpLayer "cre-underwriter/http"
	"cre-underwriter/repository"
	"cre-underwriter/service"
)

func main() {
	configPath := flag.String("config", "config/app.yaml", "configuration file")
	flag.Parse()

	// .env es opcional; las variables del entorno tienen prioridad
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cache, closeCache := newCache(cfg.Cache, logger)
	defer closeCache()

	solver, err := service.NewIRRSolver(cfg.Solver.Strategy, service.SolverConfig{
		InitialGuess:  cfg.Solver.InitialGuess,
		Tolerance:     cfg.Solver.Tolerance,
		MaxIterations: cfg.Solver.MaxIterations,
	})
	if err != nil {
		logger.Fatal("irr solver", zap.Error(err))
	}

	evaluator := service.NewScenarioEvaluator(service.NewAmortizationScheduler(), solver, logger)
	runner := service.NewScenarioRunner(evaluator, logger, cfg.Server.Parallelism)
	sensitivity := service.NewSensitivityAnalyzer(evaluator, logger, cfg.Sensitivity.Perturbations, cfg.Server.Parallelism)
	analysisService := service.NewAnalysisService(runner, sensitivity, cache, cfg.Cache.TTL, logger)

	var ocr service.OCREngine
	if cfg.Extraction.OCREnabled {
		ocr = service.NewTesseractOCR(cfg.Extraction.PdfToPPMPath, cfg.Extraction.TesseractPath)
	}
	extractionService := service.NewExtractionService(ocr, logger)

	compsService := service.NewCompsService(
		service.NewStubCompsProvider(cfg.Comps.APIKey),
		cache,
		cfg.Cache.TTL,
		cfg.Comps.AlignmentTolerance,
		logger,
	)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
	defer rateLimiter.Stop()

	handler := httpLayer.NewRouter(httpLayer.Handlers{
		Analysis:   httpLayer.NewAnalysisHandler(analysisService, logger),
		Extraction: httpLayer.NewExtractionHandler(extractionService, cfg.Extraction.MaxUploadBytes, logger),
		Comps:      httpLayer.NewCompsHandler(compsService, logger),
	}, rateLimiter, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("error starting server", zap.Error(err))
		return
	case <-quit:
		logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// newCache returns the configured cache. An unreachable Redis falls back to
// the in-memory cache so the API still serves uncached results.
func newCache(cfg config.CacheConfig, logger *zap.Logger) (repository.CacheRepository, func()) {
	if cfg.Backend != "redis" {
		return repository.NewMemoryCache(), func() {}
	}

	redisCache := repository.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, using in-memory cache",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = redisCache.Close()
		return repository.NewMemoryCache(), func() {}
	}

	logger.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	return redisCache, func() { _ = redisCache.Close() }
}
