package service

import (
	"fmt"
	"math"

	"cre-underwriter/domain"
)

// levelPayment is the fixed monthly payment that retires balance over months.
func levelPayment(balance, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return balance / float64(months)
	}
	n := float64(months)
	return balance * (monthlyRate / (1 - math.Pow(1+monthlyRate, -n)))
}

// AmortizationScheduler builds month-by-month loan tables with an optional
// interest-only phase.
type AmortizationScheduler struct{}

func NewAmortizationScheduler() *AmortizationScheduler {
	return &AmortizationScheduler{}
}

// Schedule returns TermYears*12 entries. During the interest-only months the
// payment equals the interest. At the first amortizing month the level payment
// is sized against the balance outstanding at that point and the months left,
// and stays fixed afterwards.
func (s *AmortizationScheduler) Schedule(
	terms domain.LoanTerms,
) ([]domain.AmortizationEntry, error) {

	if err := validateLoanTerms(terms); err != nil {
		return nil, err
	}

	monthlyRate := terms.AnnualRate / MonthsPerYear
	totalMonths := terms.TermYears * MonthsPerYear
	ioMonths := terms.InterestOnlyYears * MonthsPerYear

	schedule := make([]domain.AmortizationEntry, 0, totalMonths)
	balance := terms.Amount
	var payment float64

	for month := 1; month <= totalMonths; month++ {
		interest := balance * monthlyRate
		var principal float64

		if month <= ioMonths {
			payment = interest
		} else {
			if month == ioMonths+1 {
				payment = levelPayment(balance, monthlyRate, totalMonths-ioMonths)
			}
			principal = payment - interest
			if principal > balance {
				principal = balance
			}
		}

		balance = math.Max(balance-principal, 0)

		schedule = append(schedule, domain.AmortizationEntry{
			Month:     month,
			Year:      (month + MonthsPerYear - 1) / MonthsPerYear,
			Payment:   interest + principal,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return schedule, nil
}

func validateLoanTerms(terms domain.LoanTerms) error {
	if math.IsNaN(terms.Amount) || math.IsInf(terms.Amount, 0) || terms.Amount < 0 {
		return fmt.Errorf("%w: loan amount %v", domain.ErrInvalidParameter, terms.Amount)
	}
	if math.IsNaN(terms.AnnualRate) || math.IsInf(terms.AnnualRate, 0) || terms.AnnualRate < 0 {
		return fmt.Errorf("%w: annual rate %v", domain.ErrInvalidParameter, terms.AnnualRate)
	}
	if terms.TermYears <= 0 {
		return fmt.Errorf("%w: term of %d years", domain.ErrInvalidParameter, terms.TermYears)
	}
	if terms.InterestOnlyYears < 0 || terms.InterestOnlyYears > terms.TermYears {
		return fmt.Errorf("%w: interest-only period of %d years on a %d year term",
			domain.ErrInvalidParameter, terms.InterestOnlyYears, terms.TermYears)
	}
	return nil
}
