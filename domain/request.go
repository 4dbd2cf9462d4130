package domain

import (
	"fmt"
	"math"
)

// Defaults applied to fields missing from a request body.
const (
	DefaultPurchasePrice       = 1_000_000.0
	DefaultSquareFeet          = 10_000
	DefaultCAMPerSqft          = 5.0
	DefaultTaxesPerSqft        = 2.0
	DefaultHoldPeriodYears     = 10
	DefaultLoanTermYears       = 25
	DefaultInterestOnlyYears   = 2
	DefaultRentPerSqft         = 25.0
	DefaultDownPaymentPercent  = 25.0
	DefaultInterestRatePercent = 5.0
	DefaultAppreciationPercent = 3.0
)

// GeneralInput is the wire form of DealParameters. Nil fields take defaults;
// an explicit zero is kept. Whole-number fields accept any JSON number and
// are rounded.
type GeneralInput struct {
	PurchasePrice            *float64 `json:"purchasePrice"`
	MonthlyOperatingExpenses *float64 `json:"monthlyOperatingExpenses"`
	SquareFeet               *float64 `json:"sqft"`
	HoldPeriodYears          *float64 `json:"holdPeriod"`
	LoanTermYears            *float64 `json:"loanTerm"`
	InterestOnlyYears        *float64 `json:"interestOnlyPeriod"`
	CAMPerSqft               *float64 `json:"cam"`
	TaxesPerSqft             *float64 `json:"taxes"`
}

type ScenarioInput struct {
	RentPerSqft        *float64 `json:"rent"`
	DownPaymentPercent *float64 `json:"downPayment"`
	InterestRate       *float64 `json:"interestRate"`
	AppreciationRate   *float64 `json:"appreciation"`
}

// AnalysisInput is the body accepted by the analysis, sensitivity and report
// endpoints and by deal files.
type AnalysisInput struct {
	General       *GeneralInput            `json:"general"`
	Scenarios     map[string]ScenarioInput `json:"scenarios"`
	Scenario      *ScenarioInput           `json:"scenario,omitempty"`
	Perturbations []float64                `json:"perturbations,omitempty"`
}

func (g GeneralInput) Resolve() DealParameters {
	return DealParameters{
		PurchasePrice:            floatOr(g.PurchasePrice, DefaultPurchasePrice),
		MonthlyOperatingExpenses: floatOr(g.MonthlyOperatingExpenses, 0),
		SquareFeet:               intOr(g.SquareFeet, DefaultSquareFeet),
		HoldPeriodYears:          intOr(g.HoldPeriodYears, DefaultHoldPeriodYears),
		LoanTermYears:            intOr(g.LoanTermYears, DefaultLoanTermYears),
		InterestOnlyYears:        intOr(g.InterestOnlyYears, DefaultInterestOnlyYears),
		CAMPerSqft:               floatOr(g.CAMPerSqft, DefaultCAMPerSqft),
		TaxesPerSqft:             floatOr(g.TaxesPerSqft, DefaultTaxesPerSqft),
	}
}

func (s ScenarioInput) Resolve() ScenarioAssumptions {
	return ScenarioAssumptions{
		RentPerSqft:        floatOr(s.RentPerSqft, DefaultRentPerSqft),
		DownPaymentPercent: floatOr(s.DownPaymentPercent, DefaultDownPaymentPercent),
		InterestRate:       floatOr(s.InterestRate, DefaultInterestRatePercent),
		AppreciationRate:   floatOr(s.AppreciationRate, DefaultAppreciationPercent),
	}
}

// Resolve validates the structure of the input and fills defaults. Only a
// missing general block or an empty scenario map is rejected; numeric ranges
// are left to the evaluator.
func (in AnalysisInput) Resolve() (AnalysisRequest, error) {
	if in.General == nil {
		return AnalysisRequest{}, fmt.Errorf("%w: general parameters are required", ErrMalformedRequest)
	}
	if len(in.Scenarios) == 0 {
		return AnalysisRequest{}, fmt.Errorf("%w: at least one scenario is required", ErrMalformedRequest)
	}

	scenarios := make(map[string]ScenarioAssumptions, len(in.Scenarios))
	for name, s := range in.Scenarios {
		if name == "" {
			return AnalysisRequest{}, fmt.Errorf("%w: scenario name cannot be empty", ErrMalformedRequest)
		}
		scenarios[name] = s.Resolve()
	}

	return AnalysisRequest{
		General:   in.General.Resolve(),
		Scenarios: scenarios,
	}, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// intOr rounds half away from zero; values beyond the int range saturate.
func intOr(v *float64, def int) int {
	if v == nil {
		return def
	}
	r := math.Round(*v)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt32:
		return math.MaxInt32
	case r <= math.MinInt32:
		return math.MinInt32
	}
	return int(r)
}
