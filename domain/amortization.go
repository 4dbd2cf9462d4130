package domain

type LoanTerms struct {
	Amount            float64
	AnnualRate        float64 // fraction, 0.05 = 5%
	TermYears         int
	InterestOnlyYears int
}

type AmortizationEntry struct {
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}
