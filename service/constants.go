package service

const (
	MinPurchasePrice = 100_000.0
	MinSquareFeet    = 1_000
	MaxRentPerSqft   = 100.0
	MaxDownPayment   = 100.0 // %
	MaxInterestRate  = 20.0  // % anual
	MaxAppreciation  = 10.0  // % anual
	MinHoldYears     = 1
	MaxHoldYears     = 30
	MaxLoanTermYears = 30
	MaxCostPerSqft   = 50.0 // CAM e impuestos
	MaxCapRate       = 0.20
	MaxCoCReturn     = 1.0
	MinIRR           = -1.0
	MaxIRR           = 1.0
	MonthsPerYear    = 12
	BalanceTolerance = 0.01 // saldo considerado pagado

	// Newton-Raphson
	DefaultIRRGuess         = 0.10
	DefaultIRRTolerance     = 1e-5
	DefaultIRRMaxIterations = 1000
	MinIRRRate              = -0.99

	MaxScenariosPerRequest = 20
	MaxPerturbations       = 41
)

// DefaultPerturbations is the rent sweep used when the caller gives none.
var DefaultPerturbations = []float64{-0.10, -0.05, 0, 0.05, 0.10}
