package service

import (
	"errors"
	"math"
	"testing"

	"cre-underwriter/domain"
)

func TestSchedule_FullyAmortizing(t *testing.T) {

	scheduler := NewAmortizationScheduler()

	schedule, err := scheduler.Schedule(domain.LoanTerms{
		Amount:     800000,
		AnnualRate: 0.05,
		TermYears:  20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(schedule) != 240 {
		t.Fatalf("expected 240 entries, got %d", len(schedule))
	}

	// 800k al 5% a 20 años
	first := schedule[0].Payment
	if first < 5279 || first > 5281 {
		t.Errorf("expected payment near 5279.6, got %.4f", first)
	}

	last := schedule[len(schedule)-1]
	if last.Balance > BalanceTolerance {
		t.Errorf("expected final balance ~0, got %.6f", last.Balance)
	}

	for i, e := range schedule {
		if e.Month != i+1 {
			t.Fatalf("entry %d has month %d", i, e.Month)
		}
		if math.Abs(e.Payment-(e.Interest+e.Principal)) > 1e-9 {
			t.Errorf("month %d: payment %.6f != interest %.6f + principal %.6f",
				e.Month, e.Payment, e.Interest, e.Principal)
		}
		if i > 0 && e.Balance > schedule[i-1].Balance {
			t.Errorf("balance increased at month %d", e.Month)
		}
		if e.Balance < 0 {
			t.Errorf("negative balance at month %d", e.Month)
		}
	}
}

func TestSchedule_InterestOnlyThenReprices(t *testing.T) {

	scheduler := NewAmortizationScheduler()
	r := 0.05 / 12

	schedule, err := scheduler.Schedule(domain.LoanTerms{
		Amount:            800000,
		AnnualRate:        0.05,
		TermYears:         20,
		InterestOnlyYears: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, e := range schedule[:24] {
		if e.Principal != 0 {
			t.Errorf("month %d: expected no principal during interest-only, got %.4f", e.Month, e.Principal)
		}
		if math.Abs(e.Payment-800000*r) > 1e-6 {
			t.Errorf("month %d: expected interest-only payment %.4f, got %.4f", e.Month, 800000*r, e.Payment)
		}
		if e.Balance != 800000 {
			t.Errorf("month %d: balance moved during interest-only: %.4f", e.Month, e.Balance)
		}
	}

	repriced := levelPayment(800000, r, 216)
	if math.Abs(schedule[24].Payment-repriced) > 1e-6 {
		t.Errorf("expected month 25 payment %.4f, got %.4f", repriced, schedule[24].Payment)
	}
	if math.Abs(schedule[24].Payment-levelPayment(800000, r, 240)) < 1 {
		t.Errorf("payment was not resized over the remaining term")
	}

	for _, e := range schedule[25:] {
		if math.Abs(e.Payment-repriced) > 1e-6 && e.Month != 240 {
			t.Errorf("month %d: payment changed after repricing: %.4f", e.Month, e.Payment)
		}
	}

	if final := schedule[len(schedule)-1].Balance; final > BalanceTolerance {
		t.Errorf("expected final balance ~0, got %.6f", final)
	}
}

func TestSchedule_ZeroRate(t *testing.T) {

	schedule, err := NewAmortizationScheduler().Schedule(domain.LoanTerms{
		Amount:    1200,
		TermYears: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, e := range schedule {
		if math.Abs(e.Payment-100) > 1e-9 {
			t.Errorf("month %d: expected 100.00, got %.4f", e.Month, e.Payment)
		}
		if e.Interest != 0 {
			t.Errorf("month %d: expected zero interest", e.Month)
		}
	}
	if schedule[11].Balance > 1e-9 {
		t.Errorf("expected zero final balance, got %.6f", schedule[11].Balance)
	}
}

func TestSchedule_LoanYear(t *testing.T) {

	schedule, err := NewAmortizationScheduler().Schedule(domain.LoanTerms{
		Amount:     100000,
		AnnualRate: 0.06,
		TermYears:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[int]int{0: 1, 11: 1, 12: 2, 23: 2, 24: 3, 35: 3}
	for idx, year := range cases {
		if schedule[idx].Year != year {
			t.Errorf("month %d: expected year %d, got %d", schedule[idx].Month, year, schedule[idx].Year)
		}
	}
}

func TestSchedule_InterestOnlyWholeTerm(t *testing.T) {

	schedule, err := NewAmortizationScheduler().Schedule(domain.LoanTerms{
		Amount:            500000,
		AnnualRate:        0.06,
		TermYears:         5,
		InterestOnlyYears: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(schedule) != 60 {
		t.Fatalf("expected 60 entries, got %d", len(schedule))
	}
	if schedule[59].Balance != 500000 {
		t.Errorf("expected balloon balance 500000, got %.2f", schedule[59].Balance)
	}
}

func TestSchedule_ZeroAmount(t *testing.T) {

	schedule, err := NewAmortizationScheduler().Schedule(domain.LoanTerms{
		Amount:            0,
		AnnualRate:        0.05,
		TermYears:         10,
		InterestOnlyYears: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range schedule {
		if e.Payment != 0 || e.Balance != 0 {
			t.Fatalf("month %d: expected an all-zero row, got %+v", e.Month, e)
		}
	}
}

func TestSchedule_InvalidTerms(t *testing.T) {

	tests := []struct {
		name  string
		terms domain.LoanTerms
	}{
		{"NaN amount", domain.LoanTerms{Amount: math.NaN(), AnnualRate: 0.05, TermYears: 10}},
		{"negative amount", domain.LoanTerms{Amount: -1, AnnualRate: 0.05, TermYears: 10}},
		{"infinite rate", domain.LoanTerms{Amount: 1000, AnnualRate: math.Inf(1), TermYears: 10}},
		{"negative rate", domain.LoanTerms{Amount: 1000, AnnualRate: -0.01, TermYears: 10}},
		{"zero term", domain.LoanTerms{Amount: 1000, AnnualRate: 0.05, TermYears: 0}},
		{"negative interest-only", domain.LoanTerms{Amount: 1000, AnnualRate: 0.05, TermYears: 10, InterestOnlyYears: -1}},
		{"interest-only past term", domain.LoanTerms{Amount: 1000, AnnualRate: 0.05, TermYears: 10, InterestOnlyYears: 11}},
	}

	scheduler := NewAmortizationScheduler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scheduler.Schedule(tt.terms)
			if !errors.Is(err, domain.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
