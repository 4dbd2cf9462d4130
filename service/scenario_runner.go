package service

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cre-underwriter/domain"
)

// ScenarioRunner evaluates every named scenario of a deal independently.
type ScenarioRunner struct {
	evaluator   *ScenarioEvaluator
	logger      *zap.Logger
	parallelism int
}

// NewScenarioRunner creates a runner. parallelism <= 1 evaluates scenarios
// one after another.
func NewScenarioRunner(
	evaluator *ScenarioEvaluator,
	logger *zap.Logger,
	parallelism int,
) *ScenarioRunner {
	return &ScenarioRunner{
		evaluator:   evaluator,
		logger:      logger,
		parallelism: max(parallelism, 1),
	}
}

// Run returns one result per scenario key. A scenario that fails is reported
// in Errors and does not affect the others.
func (r *ScenarioRunner) Run(
	deal domain.DealParameters,
	scenarios map[string]domain.ScenarioAssumptions,
) domain.ScenarioRun {

	run := domain.ScenarioRun{
		Results: make(map[string]domain.ScenarioResult, len(scenarios)),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.parallelism)

	for name, assumptions := range scenarios {
		g.Go(func() error {
			result, err := r.evaluator.Evaluate(deal, assumptions)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("scenario evaluation failed",
					zap.String("scenario", name), zap.Error(err))
				if run.Errors == nil {
					run.Errors = make(map[string]string)
				}
				run.Errors[name] = err.Error()
				return nil
			}
			run.Results[name] = result
			return nil
		})
	}
	_ = g.Wait()

	return run
}
