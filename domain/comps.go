package domain

type Comp struct {
	Address      string  `json:"address"`
	RentPerSqft  float64 `json:"rent_psf"`
	CAMPerSqft   float64 `json:"cam_psf"`
	TaxesPerSqft float64 `json:"taxes_psf"`
}

type MarketBenchmarks struct {
	AvgRentPerSqft  float64 `json:"avg_rent_psf"`
	AvgCAMPerSqft   float64 `json:"avg_cam_psf"`
	AvgTaxesPerSqft float64 `json:"avg_taxes_psf"`
}

type CompsReport struct {
	Comps      []Comp           `json:"comps"`
	Benchmarks MarketBenchmarks `json:"market_benchmarks"`
	Insights   string           `json:"insights"`
	Warnings   string           `json:"warnings"`
	IsValid    bool             `json:"is_valid"`
}

type ComparisonStatus string

const (
	ComparisonOver    ComparisonStatus = "over"
	ComparisonUnder   ComparisonStatus = "under"
	ComparisonAligned ComparisonStatus = "aligned"
)

type BenchmarkComparison struct {
	Metric     string           `json:"metric"`
	Assumption float64          `json:"assumption"`
	Benchmark  float64          `json:"benchmark"`
	Difference float64          `json:"difference"`
	Status     ComparisonStatus `json:"status"`
}

type CompsRequest struct {
	Address      string                   `json:"address"`
	PropertyType string                   `json:"propertyType"`
	General      *GeneralInput            `json:"general,omitempty"`
	Scenarios    map[string]ScenarioInput `json:"scenarios,omitempty"`
}

type CompsResponse struct {
	CompsReport
	Comparison []BenchmarkComparison `json:"comparison,omitempty"`
}
