package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/repository"
)

// AnalysisService is the entry point used by the HTTP layer and the CLI.
type AnalysisService struct {
	runner      *ScenarioRunner
	sensitivity *SensitivityAnalyzer
	cache       repository.CacheRepository
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewAnalysisService creates an AnalysisService. Results are cached for ttl.
func NewAnalysisService(
	runner *ScenarioRunner,
	sensitivity *SensitivityAnalyzer,
	cache repository.CacheRepository,
	ttl time.Duration,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		runner:      runner,
		sensitivity: sensitivity,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger,
	}
}

// Calculate runs every scenario of the request.
func (s *AnalysisService) Calculate(
	ctx context.Context,
	req domain.AnalysisRequest,
) (domain.AnalysisResponse, error) {

	if err := checkScenarioCount(len(req.Scenarios)); err != nil {
		return domain.AnalysisResponse{}, err
	}

	id := uuid.New().String()
	key, err := cacheKey("analysis", req)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	if run, ok := s.cachedRun(ctx, key); ok {
		s.logger.Debug("analysis served from cache", zap.String("analysis_id", id))
		return domain.AnalysisResponse{
			AnalysisID: id,
			Cached:     true,
			Results:    run.Results,
			Errors:     run.Errors,
		}, nil
	}

	run := s.runner.Run(req.General, req.Scenarios)
	s.logger.Info("analysis completed",
		zap.String("analysis_id", id),
		zap.Int("scenarios", len(req.Scenarios)),
		zap.Int("failed", len(run.Errors)),
	)

	// Guardar el resultado (no crítico si falla)
	if payload, err := json.Marshal(run); err != nil {
		s.logger.Warn("failed to encode analysis for cache", zap.Error(err))
	} else if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache analysis", zap.Error(err))
	}

	return domain.AnalysisResponse{
		AnalysisID: id,
		Results:    run.Results,
		Errors:     run.Errors,
	}, nil
}

func (s *AnalysisService) cachedRun(ctx context.Context, key string) (domain.ScenarioRun, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed", zap.Error(err))
		return domain.ScenarioRun{}, false
	}
	if !ok {
		return domain.ScenarioRun{}, false
	}
	var run domain.ScenarioRun
	if err := json.Unmarshal([]byte(raw), &run); err != nil {
		s.logger.Warn("discarding unreadable cache entry", zap.Error(err))
		return domain.ScenarioRun{}, false
	}
	return run, true
}

// Sensitivity sweeps a single scenario.
func (s *AnalysisService) Sensitivity(
	deal domain.DealParameters,
	scenario domain.ScenarioAssumptions,
	perturbations []float64,
) ([]domain.SensitivityPoint, error) {
	return s.sensitivity.Analyze(deal, scenario, perturbations)
}

// SensitivityAll sweeps every scenario of the request.
func (s *AnalysisService) SensitivityAll(
	req domain.AnalysisRequest,
	perturbations []float64,
) (domain.SensitivityResponse, error) {
	if err := checkScenarioCount(len(req.Scenarios)); err != nil {
		return domain.SensitivityResponse{}, err
	}
	sweeps, failures := s.sensitivity.AnalyzeAll(req.General, req.Scenarios, perturbations)
	return domain.SensitivityResponse{Scenarios: sweeps, Errors: failures}, nil
}

// DefaultPerturbations returns the configured rent sweep.
func (s *AnalysisService) DefaultPerturbations() []float64 {
	return s.sensitivity.DefaultGrid()
}

func checkScenarioCount(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: no scenarios", domain.ErrMalformedRequest)
	}
	if n > MaxScenariosPerRequest {
		return fmt.Errorf("%w: %d scenarios exceeds the maximum of %d",
			domain.ErrInvalidParameter, n, MaxScenariosPerRequest)
	}
	return nil
}

// cacheKey hashes the JSON form of v. encoding/json sorts map keys, so equal
// requests produce equal keys.
func cacheKey(namespace string, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}
