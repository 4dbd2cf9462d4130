package service

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cre-underwriter/domain"
)

// SensitivityAnalyzer re-evaluates a scenario across rent perturbations.
type SensitivityAnalyzer struct {
	evaluator     *ScenarioEvaluator
	logger        *zap.Logger
	perturbations []float64
	parallelism   int
}

// NewSensitivityAnalyzer creates an analyzer whose default grid is
// perturbations, or DefaultPerturbations when that is empty.
func NewSensitivityAnalyzer(
	evaluator *ScenarioEvaluator,
	logger *zap.Logger,
	perturbations []float64,
	parallelism int,
) *SensitivityAnalyzer {
	if len(perturbations) == 0 {
		perturbations = DefaultPerturbations
	}
	return &SensitivityAnalyzer{
		evaluator:     evaluator,
		logger:        logger,
		perturbations: append([]float64(nil), perturbations...),
		parallelism:   max(parallelism, 1),
	}
}

func (a *SensitivityAnalyzer) DefaultGrid() []float64 {
	return append([]float64(nil), a.perturbations...)
}

// Analyze evaluates rent*(1+p) for each p, holding every other assumption at
// its baseline. Points come back in the order of perturbations.
func (a *SensitivityAnalyzer) Analyze(
	deal domain.DealParameters,
	scenario domain.ScenarioAssumptions,
	perturbations []float64,
) ([]domain.SensitivityPoint, error) {

	if len(perturbations) == 0 {
		perturbations = a.perturbations
	}
	if len(perturbations) > MaxPerturbations {
		return nil, fmt.Errorf("%w: %d perturbations exceeds the maximum of %d",
			domain.ErrInvalidParameter, len(perturbations), MaxPerturbations)
	}
	for _, p := range perturbations {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: perturbation %v", domain.ErrInvalidParameter, p)
		}
	}

	points := make([]domain.SensitivityPoint, len(perturbations))

	var g errgroup.Group
	g.SetLimit(a.parallelism)

	for i, p := range perturbations {
		g.Go(func() error {
			shifted := scenario
			shifted.RentPerSqft = scenario.RentPerSqft * (1 + p)

			result, err := a.evaluator.Evaluate(deal, shifted)
			if err != nil {
				return fmt.Errorf("rent perturbation %+.2f: %w", p, err)
			}

			points[i] = domain.SensitivityPoint{
				Perturbation: p,
				Rent:         shifted.RentPerSqft,
				IRR:          result.IRR,
				IRRStatus:    result.IRRStatus,
				CapRate:      result.CapRate,
				CoCReturn:    result.CoCReturn,
				CoCDefined:   result.CoCDefined,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// AnalyzeAll sweeps every scenario. Failures are isolated per scenario key.
func (a *SensitivityAnalyzer) AnalyzeAll(
	deal domain.DealParameters,
	scenarios map[string]domain.ScenarioAssumptions,
	perturbations []float64,
) (map[string][]domain.SensitivityPoint, map[string]string) {

	sweeps := make(map[string][]domain.SensitivityPoint, len(scenarios))
	var failures map[string]string
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(a.parallelism)

	for name, scenario := range scenarios {
		g.Go(func() error {
			points, err := a.Analyze(deal, scenario, perturbations)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Warn("sensitivity sweep failed",
					zap.String("scenario", name), zap.Error(err))
				if failures == nil {
					failures = make(map[string]string)
				}
				failures[name] = err.Error()
				return nil
			}
			sweeps[name] = points
			return nil
		})
	}
	_ = g.Wait()

	return sweeps, failures
}
