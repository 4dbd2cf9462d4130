package domain

// DealParameters are the general inputs shared by every scenario of one analysis.
// Rates are expressed per square foot per year; years are whole years.
type DealParameters struct {
	PurchasePrice            float64 `json:"purchasePrice"`
	MonthlyOperatingExpenses float64 `json:"monthlyOperatingExpenses"`
	SquareFeet               int     `json:"sqft"`
	HoldPeriodYears          int     `json:"holdPeriod"`
	LoanTermYears            int     `json:"loanTerm"`
	InterestOnlyYears        int     `json:"interestOnlyPeriod"`
	CAMPerSqft               float64 `json:"cam"`
	TaxesPerSqft             float64 `json:"taxes"`
}

// ScenarioAssumptions are the per-scenario variables. Percentages are whole
// numbers (5 means 5%).
type ScenarioAssumptions struct {
	RentPerSqft        float64 `json:"rent"`
	DownPaymentPercent float64 `json:"downPayment"`
	InterestRate       float64 `json:"interestRate"`
	AppreciationRate   float64 `json:"appreciation"`
}

// Adjustment records an input the evaluator had to move into its valid range.
type Adjustment struct {
	Field string  `json:"field"`
	Given float64 `json:"given"`
	Used  float64 `json:"used"`
}
