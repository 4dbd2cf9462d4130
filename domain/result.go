package domain

type IRRStatus string

const (
	IRRConverged    IRRStatus = "converged"
	IRRNotConverged IRRStatus = "not_converged"
	// IRRUndefined is reported when there is no equity outlay to earn a return on.
	IRRUndefined IRRStatus = "undefined"
)

// Names used in ScenarioResult.UndefinedMetrics.
const (
	MetricCoCReturn      = "cocReturn"
	MetricIRR            = "irr"
	MetricEquityMultiple = "equityMultiple"
	MetricDSCR           = "dscr"
)

type YearSummary struct {
	Year          int     `json:"year"`
	DebtService   float64 `json:"debtService"`
	Interest      float64 `json:"interest"`
	Principal     float64 `json:"principal"`
	CashFlow      float64 `json:"cashFlow"`
	EndingBalance float64 `json:"endingBalance"`
	PropertyValue float64 `json:"propertyValue"`
	Equity        float64 `json:"equity"`
}

// ScenarioResult is the immutable output of one scenario evaluation.
// Ratios are fractions (0.15 = 15%). A metric whose Defined flag is false was
// not computable (zero down payment, no debt service) and its value is 0.
type ScenarioResult struct {
	NOI         float64 `json:"noi"`
	CapRate     float64 `json:"capRate"`
	DownPayment float64 `json:"downPayment"`
	LoanAmount  float64 `json:"loanAmount"`

	AnnualDebtService float64 `json:"annualDebtService"`
	CashFlow          float64 `json:"cashFlow"`
	TotalCashFlow     float64 `json:"totalCashFlow"`

	CoCReturn  float64 `json:"cocReturn"`
	CoCDefined bool    `json:"cocDefined"`

	IRR           float64   `json:"irr"`
	IRRStatus     IRRStatus `json:"irrStatus"`
	IRRIterations int       `json:"irrIterations"`

	DSCR        float64 `json:"dscr"`
	DSCRDefined bool    `json:"dscrDefined"`

	FutureValue      float64 `json:"futureValue"`
	RemainingBalance float64 `json:"remainingBalance"`
	SaleProceeds     float64 `json:"saleProceeds"`
	EquityGain       float64 `json:"equityGain"`
	PrincipalPaydown float64 `json:"principalPaydown"`
	TotalReturn      float64 `json:"totalReturn"`

	EquityMultiple        float64 `json:"equityMultiple"`
	EquityMultipleDefined bool    `json:"equityMultipleDefined"`

	AnnualCashFlows  []float64           `json:"annualCashFlows"`
	IRRCashFlows     []float64           `json:"irrCashFlows"`
	Years            []YearSummary       `json:"years"`
	Schedule         []AmortizationEntry `json:"amortSchedule"`
	UndefinedMetrics []string            `json:"undefinedMetrics,omitempty"`
	Adjustments      []Adjustment        `json:"adjustments,omitempty"`
}

// ScenarioRun is the keyed output of a multi-scenario evaluation. A scenario
// that failed appears only in Errors.
type ScenarioRun struct {
	Results map[string]ScenarioResult `json:"results"`
	Errors  map[string]string         `json:"errors,omitempty"`
}

type SensitivityPoint struct {
	Perturbation float64   `json:"perturbation"`
	Rent         float64   `json:"rent"`
	IRR          float64   `json:"irr"`
	IRRStatus    IRRStatus `json:"irrStatus"`
	CapRate      float64   `json:"capRate"`
	CoCReturn    float64   `json:"cocReturn"`
	CoCDefined   bool      `json:"cocDefined"`
}
