package service

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"cre-underwriter/domain"
	"cre-underwriter/repository"
)

const (
	DefaultPropertyType       = "Office"
	DefaultAlignmentTolerance = 0.05
)

// CompsProvider looks up comparable properties near an address.
type CompsProvider interface {
	FetchComps(ctx context.Context, address, propertyType string) (domain.CompsReport, error)
}

// StubCompsProvider returns a fixed Austin comp set. There is no external
// market data integration.
type StubCompsProvider struct {
	apiKey string
}

func NewStubCompsProvider(apiKey string) *StubCompsProvider {
	return &StubCompsProvider{apiKey: apiKey}
}

func (p *StubCompsProvider) FetchComps(
	ctx context.Context,
	address, propertyType string,
) (domain.CompsReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.CompsReport{}, err
	}
	report := domain.CompsReport{
		Comps: []domain.Comp{
			{Address: "123 Main St, Austin, TX 78701", RentPerSqft: 25.0, CAMPerSqft: 5.0, TaxesPerSqft: 2.0},
			{Address: "456 Oak Ave, Austin, TX 78702", RentPerSqft: 28.0, CAMPerSqft: 4.5, TaxesPerSqft: 1.8},
			{Address: "789 Pine Rd, Austin, TX 78703", RentPerSqft: 30.0, CAMPerSqft: 5.5, TaxesPerSqft: 2.2},
		},
		Benchmarks: domain.MarketBenchmarks{
			AvgRentPerSqft:  28.75,
			AvgCAMPerSqft:   5.0,
			AvgTaxesPerSqft: 2.0,
		},
		Insights: "Market shows stable rents.",
		IsValid:  true,
	}
	if p.apiKey == "" {
		report.Warnings = "no comps API key configured, sample comps returned"
	}
	return report, nil
}

type CompsService struct {
	provider  CompsProvider
	cache     repository.CacheRepository
	cacheTTL  time.Duration
	tolerance float64
	logger    *zap.Logger
}

// NewCompsService creates a CompsService. Assumptions within tolerance
// (a fraction of the benchmark) of a benchmark are reported as aligned.
func NewCompsService(
	provider CompsProvider,
	cache repository.CacheRepository,
	ttl time.Duration,
	tolerance float64,
	logger *zap.Logger,
) *CompsService {
	if tolerance <= 0 {
		tolerance = DefaultAlignmentTolerance
	}
	return &CompsService{
		provider:  provider,
		cache:     cache,
		cacheTTL:  ttl,
		tolerance: tolerance,
		logger:    logger,
	}
}

// Lookup fetches comps for the address and, when the request carries deal
// parameters and a base scenario, compares them against the benchmarks.
func (s *CompsService) Lookup(
	ctx context.Context,
	req domain.CompsRequest,
) (domain.CompsResponse, error) {

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.CompsResponse{}, fmt.Errorf("%w: address is required", domain.ErrMalformedRequest)
	}
	propertyType := strings.TrimSpace(req.PropertyType)
	if propertyType == "" {
		propertyType = DefaultPropertyType
	}

	report, err := s.fetch(ctx, address, propertyType)
	if err != nil {
		return domain.CompsResponse{}, err
	}

	resp := domain.CompsResponse{CompsReport: report}
	if req.General != nil {
		if base, ok := findBaseScenario(req.Scenarios); ok {
			resp.Comparison = s.Compare(report.Benchmarks, req.General.Resolve(), base.Resolve())
		}
	}
	return resp, nil
}

func (s *CompsService) fetch(ctx context.Context, address, propertyType string) (domain.CompsReport, error) {
	key := "comps:" + strings.ToLower(address) + "|" + strings.ToLower(propertyType)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("comps cache lookup failed", zap.Error(err))
	}
	if ok {
		var report domain.CompsReport
		if err := json.Unmarshal([]byte(raw), &report); err == nil {
			return report, nil
		}
	}

	report, err := s.provider.FetchComps(ctx, address, propertyType)
	if err != nil {
		return domain.CompsReport{}, fmt.Errorf("fetch comps: %w", err)
	}

	if payload, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache comps", zap.Error(err))
		}
	}
	return report, nil
}

// Compare reports how the base scenario's rent and the deal's CAM and taxes
// sit against market benchmarks. Inputs are normalized first, like any other
// input source.
func (s *CompsService) Compare(
	benchmarks domain.MarketBenchmarks,
	deal domain.DealParameters,
	base domain.ScenarioAssumptions,
) []domain.BenchmarkComparison {
	deal, base, _ = Normalize(deal, base)
	return []domain.BenchmarkComparison{
		s.compare("rent", base.RentPerSqft, benchmarks.AvgRentPerSqft),
		s.compare("cam", deal.CAMPerSqft, benchmarks.AvgCAMPerSqft),
		s.compare("taxes", deal.TaxesPerSqft, benchmarks.AvgTaxesPerSqft),
	}
}

func (s *CompsService) compare(metric string, assumption, benchmark float64) domain.BenchmarkComparison {
	c := domain.BenchmarkComparison{
		Metric:     metric,
		Assumption: assumption,
		Benchmark:  benchmark,
		Status:     domain.ComparisonAligned,
	}
	if benchmark == 0 {
		if assumption > 0 {
			c.Status = domain.ComparisonOver
		}
		return c
	}
	c.Difference = (assumption - benchmark) / benchmark
	switch {
	case math.Abs(c.Difference) <= s.tolerance:
		c.Status = domain.ComparisonAligned
	case c.Difference > 0:
		c.Status = domain.ComparisonOver
	default:
		c.Status = domain.ComparisonUnder
	}
	return c
}

// findBaseScenario prefers the scenario named exactly "base", then any case
// of "base" or "base case", taking the first such name in sorted order.
func findBaseScenario(scenarios map[string]domain.ScenarioInput) (domain.ScenarioInput, bool) {
	if s, ok := scenarios["base"]; ok {
		return s, true
	}
	for _, name := range slices.Sorted(maps.Keys(scenarios)) {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "base" || n == "base case" {
			return scenarios[name], true
		}
	}
	return domain.ScenarioInput{}, false
}
