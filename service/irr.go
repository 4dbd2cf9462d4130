package service

import (
	"fmt"
	"math"

	"cre-underwriter/domain"
)

// IRRSolution is the periodic rate found for a cash-flow vector. When
// Converged is false Rate holds the best estimate reached and Solve also
// returns an error wrapping domain.ErrNonConvergence.
type IRRSolution struct {
	Rate       float64
	Iterations int
	Converged  bool
}

// IRRSolver finds r such that sum(CF_t / (1+r)^t) = 0. Flows that never
// change sign have no such r and yield domain.ErrDegenerateInput.
type IRRSolver interface {
	Solve(cashFlows []float64) (IRRSolution, error)
}

type SolverConfig struct {
	InitialGuess  float64
	Tolerance     float64
	MaxIterations int
}

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		InitialGuess:  DefaultIRRGuess,
		Tolerance:     DefaultIRRTolerance,
		MaxIterations: DefaultIRRMaxIterations,
	}
}

func (c SolverConfig) withDefaults() SolverConfig {
	d := DefaultSolverConfig()
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.InitialGuess <= MinIRRRate {
		c.InitialGuess = d.InitialGuess
	}
	return c
}

// NewIRRSolver returns the solver registered under strategy ("newton" or
// "hybrid").
func NewIRRSolver(strategy string, cfg SolverConfig) (IRRSolver, error) {
	switch strategy {
	case "", "newton":
		return NewNewtonSolver(cfg), nil
	case "hybrid":
		return NewHybridSolver(cfg), nil
	}
	return nil, fmt.Errorf("%w: unknown irr solver %q", domain.ErrInvalidParameter, strategy)
}

// npv returns the net present value of cashFlows at rate and its derivative
// with respect to rate.
func npv(cashFlows []float64, rate float64) (value, derivative float64) {
	base := 1 + rate
	for t, cf := range cashFlows {
		period := float64(t)
		value += cf / math.Pow(base, period)
		derivative += -period * cf / math.Pow(base, period+1)
	}
	return value, derivative
}

func validateCashFlows(cashFlows []float64) error {
	if len(cashFlows) < 2 {
		return fmt.Errorf("%w: irr needs at least two cash flows, got %d",
			domain.ErrInvalidParameter, len(cashFlows))
	}
	for i, cf := range cashFlows {
		if math.IsNaN(cf) || math.IsInf(cf, 0) {
			return fmt.Errorf("%w: cash flow %d is %v", domain.ErrInvalidParameter, i, cf)
		}
	}
	return nil
}

// requireSignChange rejects flows whose NPV cannot cross zero.
func requireSignChange(cashFlows []float64) error {
	var pos, neg bool
	for _, cf := range cashFlows {
		pos = pos || cf > 0
		neg = neg || cf < 0
	}
	if !pos || !neg {
		return fmt.Errorf("%w: cash flows never change sign", domain.ErrDegenerateInput)
	}
	return nil
}

func notConverged(solution IRRSolution) (IRRSolution, error) {
	return solution, fmt.Errorf("%w after %d iterations, best estimate %.6f",
		domain.ErrNonConvergence, solution.Iterations, solution.Rate)
}

// NewtonSolver is a plain Newton-Raphson iteration. It offers no convergence
// guarantee when the flows have several or no real roots.
type NewtonSolver struct {
	cfg SolverConfig
}

func NewNewtonSolver(cfg SolverConfig) *NewtonSolver {
	return &NewtonSolver{cfg: cfg.withDefaults()}
}

func (s *NewtonSolver) Solve(cashFlows []float64) (IRRSolution, error) {
	if err := validateCashFlows(cashFlows); err != nil {
		return IRRSolution{}, err
	}
	if err := requireSignChange(cashFlows); err != nil {
		return IRRSolution{}, err
	}

	rate := s.cfg.InitialGuess
	for i := 0; i < s.cfg.MaxIterations; i++ {
		value, derivative := npv(cashFlows, rate)
		if math.Abs(value) < s.cfg.Tolerance {
			return IRRSolution{Rate: rate, Iterations: i, Converged: true}, nil
		}
		if derivative == 0 {
			return notConverged(IRRSolution{Rate: rate, Iterations: i})
		}

		rate -= value / derivative
		if rate < MinIRRRate {
			rate = MinIRRRate
		}
	}

	return notConverged(IRRSolution{Rate: rate, Iterations: s.cfg.MaxIterations})
}

// HybridSolver runs Newton steps inside a sign-change bracket and falls back
// to bisection whenever a step leaves the bracket. Without a bracket it
// behaves like NewtonSolver.
type HybridSolver struct {
	cfg    SolverConfig
	newton *NewtonSolver
}

func NewHybridSolver(cfg SolverConfig) *HybridSolver {
	cfg = cfg.withDefaults()
	return &HybridSolver{cfg: cfg, newton: NewNewtonSolver(cfg)}
}

func (s *HybridSolver) Solve(cashFlows []float64) (IRRSolution, error) {
	if err := validateCashFlows(cashFlows); err != nil {
		return IRRSolution{}, err
	}
	if err := requireSignChange(cashFlows); err != nil {
		return IRRSolution{}, err
	}

	lo, hi, ok := bracketRoot(cashFlows)
	if !ok {
		return s.newton.Solve(cashFlows)
	}

	fLo, _ := npv(cashFlows, lo)
	rate := s.cfg.InitialGuess
	if rate <= lo || rate >= hi {
		rate = (lo + hi) / 2
	}

	for i := 0; i < s.cfg.MaxIterations; i++ {
		value, derivative := npv(cashFlows, rate)
		if math.Abs(value) < s.cfg.Tolerance {
			return IRRSolution{Rate: rate, Iterations: i, Converged: true}, nil
		}

		if (value < 0) == (fLo < 0) {
			lo, fLo = rate, value
		} else {
			hi = rate
		}

		next := rate
		if derivative != 0 {
			next = rate - value/derivative
		}
		if derivative == 0 || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		rate = next
	}

	return notConverged(IRRSolution{Rate: rate, Iterations: s.cfg.MaxIterations})
}

// bracketRoot scans a fixed rate grid for an NPV sign change.
func bracketRoot(cashFlows []float64) (lo, hi float64, ok bool) {
	grid := []float64{MinIRRRate, -0.9, -0.75, -0.5, -0.25, 0, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5, 10}
	prev, _ := npv(cashFlows, grid[0])
	for i := 1; i < len(grid); i++ {
		cur, _ := npv(cashFlows, grid[i])
		if (prev < 0) != (cur < 0) {
			return grid[i-1], grid[i], true
		}
		prev = cur
	}
	return 0, 0, false
}
