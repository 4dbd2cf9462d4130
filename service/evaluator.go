package service

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"cre-underwriter/domain"
)

// ScenarioEvaluator turns one deal plus one scenario into a ScenarioResult.
// It holds no per-evaluation state and is safe for concurrent use as long as
// its IRRSolver is.
type ScenarioEvaluator struct {
	scheduler *AmortizationScheduler
	solver    IRRSolver
	logger    *zap.Logger
}

func NewScenarioEvaluator(
	scheduler *AmortizationScheduler,
	solver IRRSolver,
	logger *zap.Logger,
) *ScenarioEvaluator {
	return &ScenarioEvaluator{scheduler: scheduler, solver: solver, logger: logger}
}

// Normalize clamps every input into its valid range and reports what moved.
// Inputs from forms, extracted documents and comps all pass through here.
func Normalize(
	deal domain.DealParameters,
	scenario domain.ScenarioAssumptions,
) (domain.DealParameters, domain.ScenarioAssumptions, []domain.Adjustment) {
	c := clamper{}

	deal.PurchasePrice = c.float("purchasePrice", deal.PurchasePrice, MinPurchasePrice, math.Inf(1))
	deal.MonthlyOperatingExpenses = c.float("monthlyOperatingExpenses", deal.MonthlyOperatingExpenses, 0, math.Inf(1))
	deal.SquareFeet = c.int("sqft", deal.SquareFeet, MinSquareFeet, math.MaxInt)
	deal.HoldPeriodYears = c.int("holdPeriod", deal.HoldPeriodYears, MinHoldYears, MaxHoldYears)
	deal.LoanTermYears = c.int("loanTerm", deal.LoanTermYears, deal.HoldPeriodYears, MaxLoanTermYears)
	deal.InterestOnlyYears = c.int("interestOnlyPeriod", deal.InterestOnlyYears, 0, deal.LoanTermYears)
	deal.CAMPerSqft = c.float("cam", deal.CAMPerSqft, 0, MaxCostPerSqft)
	deal.TaxesPerSqft = c.float("taxes", deal.TaxesPerSqft, 0, MaxCostPerSqft)

	scenario.RentPerSqft = c.float("rent", scenario.RentPerSqft, 0, MaxRentPerSqft)
	scenario.DownPaymentPercent = c.float("downPayment", scenario.DownPaymentPercent, 0, MaxDownPayment)
	scenario.InterestRate = c.float("interestRate", scenario.InterestRate, 0, MaxInterestRate)
	scenario.AppreciationRate = c.float("appreciation", scenario.AppreciationRate, 0, MaxAppreciation)

	return deal, scenario, c.adjustments
}

type clamper struct {
	adjustments []domain.Adjustment
}

func (c *clamper) float(field string, v, lo, hi float64) float64 {
	used := v
	switch {
	case math.IsNaN(v):
		used = lo
	case v < lo:
		used = lo
	case v > hi:
		used = hi
	}
	if used != v {
		c.adjustments = append(c.adjustments, domain.Adjustment{Field: field, Given: nanToZero(v), Used: used})
	}
	return used
}

func (c *clamper) int(field string, v, lo, hi int) int {
	used := min(max(v, lo), hi)
	if used != v {
		c.adjustments = append(c.adjustments, domain.Adjustment{Field: field, Given: float64(v), Used: float64(used)})
	}
	return used
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Evaluate normalizes the inputs and computes every metric of the scenario.
func (e *ScenarioEvaluator) Evaluate(
	deal domain.DealParameters,
	scenario domain.ScenarioAssumptions,
) (domain.ScenarioResult, error) {

	deal, scenario, adjustments := Normalize(deal, scenario)

	price := deal.PurchasePrice
	sqft := float64(deal.SquareFeet)
	hold := deal.HoldPeriodYears

	downPayment := price * scenario.DownPaymentPercent / 100
	loanAmount := price - downPayment

	annualRent := scenario.RentPerSqft * sqft
	annualExpenses := deal.MonthlyOperatingExpenses*MonthsPerYear + (deal.CAMPerSqft+deal.TaxesPerSqft)*sqft
	noi := annualRent - annualExpenses

	schedule, err := e.scheduler.Schedule(domain.LoanTerms{
		Amount:            loanAmount,
		AnnualRate:        scenario.InterestRate / 100,
		TermYears:         deal.LoanTermYears,
		InterestOnlyYears: deal.InterestOnlyYears,
	})
	if err != nil {
		return domain.ScenarioResult{}, fmt.Errorf("amortization schedule: %w", err)
	}

	holdMonths := min(hold*MonthsPerYear, len(schedule))
	held := schedule[:holdMonths]

	var totalDebtService, principalPaydown float64
	for _, entry := range held {
		totalDebtService += entry.Payment
		principalPaydown += entry.Principal
	}
	annualDebtService := totalDebtService / float64(hold)
	cashFlow := noi - annualDebtService
	totalCashFlow := cashFlow * float64(hold)

	growth := 1 + scenario.AppreciationRate/100
	futureValue := price * math.Pow(growth, float64(hold))
	remainingBalance := loanAmount
	if len(held) > 0 {
		remainingBalance = held[len(held)-1].Balance
	}
	saleProceeds := futureValue - remainingBalance

	annualCashFlows := make([]float64, hold)
	for i := range annualCashFlows {
		annualCashFlows[i] = cashFlow
	}
	irrCashFlows := make([]float64, 0, hold+1)
	irrCashFlows = append(irrCashFlows, -downPayment)
	irrCashFlows = append(irrCashFlows, annualCashFlows...)
	irrCashFlows[len(irrCashFlows)-1] += saleProceeds

	result := domain.ScenarioResult{
		NOI:               noi,
		CapRate:           clamp(noi/price, 0, MaxCapRate),
		DownPayment:       downPayment,
		LoanAmount:        loanAmount,
		AnnualDebtService: annualDebtService,
		CashFlow:          cashFlow,
		TotalCashFlow:     totalCashFlow,
		FutureValue:       futureValue,
		RemainingBalance:  remainingBalance,
		SaleProceeds:      saleProceeds,
		EquityGain:        saleProceeds - downPayment + totalCashFlow,
		PrincipalPaydown:  principalPaydown,
		TotalReturn:       totalCashFlow + (futureValue - price) + principalPaydown,
		AnnualCashFlows:   annualCashFlows,
		IRRCashFlows:      irrCashFlows,
		Years:             summarizeYears(held, noi, price, growth),
		Schedule:          held,
		Adjustments:       adjustments,
	}

	if downPayment > 0 {
		result.CoCReturn = clamp(cashFlow/downPayment, 0, MaxCoCReturn)
		result.CoCDefined = true
		result.EquityMultiple = (downPayment + result.TotalReturn) / downPayment
		result.EquityMultipleDefined = true

		solution, err := e.solver.Solve(irrCashFlows)
		switch {
		case errors.Is(err, domain.ErrDegenerateInput):
			// p. ej. gastos muy por encima de la renta: no hay tasa que anule el NPV
			result.IRRStatus = domain.IRRUndefined
			result.UndefinedMetrics = append(result.UndefinedMetrics, domain.MetricIRR)
			e.logger.Debug("irr undefined", zap.Error(err))
		case errors.Is(err, domain.ErrNonConvergence):
			result.IRR = clamp(solution.Rate, MinIRR, MaxIRR)
			result.IRRIterations = solution.Iterations
			result.IRRStatus = domain.IRRNotConverged
			e.logger.Warn("irr did not converge, using best estimate",
				zap.Float64("estimate", solution.Rate),
				zap.Int("iterations", solution.Iterations),
				zap.Error(err),
			)
		case err != nil:
			return domain.ScenarioResult{}, fmt.Errorf("irr: %w", err)
		default:
			result.IRR = clamp(solution.Rate, MinIRR, MaxIRR)
			result.IRRIterations = solution.Iterations
			result.IRRStatus = domain.IRRConverged
		}
	} else {
		result.IRRStatus = domain.IRRUndefined
		result.UndefinedMetrics = append(result.UndefinedMetrics,
			domain.MetricCoCReturn, domain.MetricIRR, domain.MetricEquityMultiple)
	}

	firstYear := held[:min(MonthsPerYear, len(held))]
	var firstYearDebtService float64
	for _, entry := range firstYear {
		firstYearDebtService += entry.Payment
	}
	if firstYearDebtService > 0 {
		result.DSCR = noi / firstYearDebtService
		result.DSCRDefined = true
	} else {
		result.UndefinedMetrics = append(result.UndefinedMetrics, domain.MetricDSCR)
	}

	return result, nil
}

// summarizeYears rolls the schedule up by loan year. Cash flow here uses the
// debt service actually paid that year.
func summarizeYears(
	schedule []domain.AmortizationEntry,
	noi, price, growth float64,
) []domain.YearSummary {
	years := make([]domain.YearSummary, 0, len(schedule)/MonthsPerYear)
	for start := 0; start < len(schedule); start += MonthsPerYear {
		end := min(start+MonthsPerYear, len(schedule))
		y := domain.YearSummary{Year: start/MonthsPerYear + 1}
		for _, entry := range schedule[start:end] {
			y.DebtService += entry.Payment
			y.Interest += entry.Interest
			y.Principal += entry.Principal
		}
		y.CashFlow = noi - y.DebtService
		y.EndingBalance = schedule[end-1].Balance
		y.PropertyValue = price * math.Pow(growth, float64(y.Year))
		y.Equity = y.PropertyValue - y.EndingBalance
		years = append(years, y)
	}
	return years
}
