package domain

import "math"

type DocumentType string

const (
	DocumentTitle   DocumentType = "title"
	DocumentCoStar  DocumentType = "costar"
	DocumentUnknown DocumentType = "unknown"
)

// ExtractedFields are best-effort values pulled from a document. Nil means
// the pattern did not match.
type ExtractedFields struct {
	RentPerSqft              *float64 `json:"rent,omitempty"`
	CAMPerSqft               *float64 `json:"cam,omitempty"`
	TaxesPerSqft             *float64 `json:"taxes,omitempty"`
	SquareFeet               *int     `json:"sqft,omitempty"`
	PurchasePrice            *float64 `json:"price,omitempty"`
	OperatingExpensesPerSqft *float64 `json:"operatingExpenses,omitempty"`
	PropertyType             string   `json:"propertyType,omitempty"`
}

// Count returns how many fields were extracted.
func (f ExtractedFields) Count() int {
	n := 0
	for _, set := range []bool{
		f.RentPerSqft != nil,
		f.CAMPerSqft != nil,
		f.TaxesPerSqft != nil,
		f.SquareFeet != nil,
		f.PurchasePrice != nil,
		f.OperatingExpensesPerSqft != nil,
		f.PropertyType != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// ApplyDefaults overwrites deal and scenario fields with the extracted
// values. Operating expenses per square foot become a monthly amount once the
// square footage is known. Nothing is clamped here.
func (f ExtractedFields) ApplyDefaults(deal *DealParameters, scenario *ScenarioAssumptions) {
	if f.PurchasePrice != nil {
		deal.PurchasePrice = *f.PurchasePrice
	}
	if f.SquareFeet != nil {
		deal.SquareFeet = *f.SquareFeet
	}
	if f.CAMPerSqft != nil {
		deal.CAMPerSqft = *f.CAMPerSqft
	}
	if f.TaxesPerSqft != nil {
		deal.TaxesPerSqft = *f.TaxesPerSqft
	}
	if f.OperatingExpensesPerSqft != nil && deal.SquareFeet > 0 {
		monthly := *f.OperatingExpensesPerSqft * float64(deal.SquareFeet) / 12
		deal.MonthlyOperatingExpenses = math.Round(monthly*100) / 100
	}
	if f.RentPerSqft != nil && scenario != nil {
		scenario.RentPerSqft = *f.RentPerSqft
	}
}

type ExtractionValidation struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

type ExtractionResult struct {
	DocumentType DocumentType         `json:"documentType"`
	Fields       ExtractedFields      `json:"fields"`
	TextLength   int                  `json:"textLength"`
	TextSample   string               `json:"textSample"`
	UsedOCR      bool                 `json:"usedOcr"`
	Validation   ExtractionValidation `json:"validation"`
}
