package service

import (
	"testing"

	"cre-underwriter/domain"
)

const costarText = `CoStar Lease Comparable
Tenant: Acme Holdings
Asking Rent: $32.50/sf/yr
CAM: $6.25/sf
Taxes: $3.10 psf
Building size: 12,500 sqft
Price: $4,200,000
Operating Expenses: $4.00/sf
Property Type: Office`

const titleText = `PRELIMINARY TITLE REPORT
This title insurance commitment covers the grant deed and a recorded access easement.
Consideration: $2,750,000
Parcel area: 15,000 square feet
Real estate tax: $3.25 per sf`

func TestDetectDocumentType(t *testing.T) {

	tests := []struct {
		name string
		text string
		want domain.DocumentType
	}{
		{"costar", costarText, domain.DocumentCoStar},
		{"title", titleText, domain.DocumentTitle},
		{"too few indicators", "Asking $30/sf for 5,000 sf in a new building downtown.", domain.DocumentUnknown},
		{"tie", "deed easement title report lease rent tenant", domain.DocumentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDocumentType(tt.text); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseCoStar(t *testing.T) {

	f := ParseCoStar(costarText)

	checkFloat(t, "rent", f.RentPerSqft, 32.5)
	checkFloat(t, "cam", f.CAMPerSqft, 6.25)
	checkFloat(t, "taxes", f.TaxesPerSqft, 3.10)
	checkFloat(t, "price", f.PurchasePrice, 4_200_000)
	checkFloat(t, "opex", f.OperatingExpensesPerSqft, 4)
	if f.SquareFeet == nil || *f.SquareFeet != 12500 {
		t.Errorf("expected sqft 12500, got %v", f.SquareFeet)
	}
	if f.PropertyType != "office" {
		t.Errorf("expected office, got %q", f.PropertyType)
	}
	if f.Count() != 7 {
		t.Errorf("expected 7 fields, got %d", f.Count())
	}
}

func TestParseTitle(t *testing.T) {

	f := ParseTitle(titleText)

	checkFloat(t, "price", f.PurchasePrice, 2_750_000)
	checkFloat(t, "taxes", f.TaxesPerSqft, 3.25)
	if f.SquareFeet == nil || *f.SquareFeet != 15000 {
		t.Errorf("expected sqft 15000, got %v", f.SquareFeet)
	}
	if f.RentPerSqft != nil {
		t.Errorf("title reports carry no rent")
	}
}

func TestParseTitle_DeedTransferPrice(t *testing.T) {

	f := ParseTitle("Deed of transfer recorded for $1,250,000 on the parcel")
	checkFloat(t, "price", f.PurchasePrice, 1_250_000)
}

func TestParseDocument_UnknownKeepsRicherParse(t *testing.T) {

	docType, f := ParseDocument("Asking $30/sf for 5,000 sf in a new building downtown.")

	if docType != domain.DocumentCoStar {
		t.Errorf("expected costar parse to win, got %s", docType)
	}
	checkFloat(t, "rent", f.RentPerSqft, 30)
	if f.SquareFeet == nil || *f.SquareFeet != 5000 {
		t.Errorf("expected sqft 5000, got %v", f.SquareFeet)
	}
}

func TestValidateExtraction(t *testing.T) {

	t.Run("clean", func(t *testing.T) {
		v := ValidateExtraction(ParseCoStar(costarText), domain.DocumentCoStar)
		if !v.IsValid || len(v.Warnings) != 0 || len(v.Errors) != 0 {
			t.Errorf("expected clean validation, got %+v", v)
		}
	})

	t.Run("warnings", func(t *testing.T) {
		f := domain.ExtractedFields{
			RentPerSqft:   ptr(250.0),
			SquareFeet:    ptr(100),
			PurchasePrice: ptr(1_000_000.0),
			CAMPerSqft:    ptr(60.0),
		}
		v := ValidateExtraction(f, domain.DocumentCoStar)
		if len(v.Warnings) != 4 {
			t.Errorf("expected 4 warnings, got %v", v.Warnings)
		}
		if !v.IsValid {
			t.Errorf("warnings alone do not invalidate")
		}
	})

	t.Run("costar without rent or size", func(t *testing.T) {
		v := ValidateExtraction(domain.ExtractedFields{CAMPerSqft: ptr(5.0)}, domain.DocumentCoStar)
		if v.IsValid || len(v.Errors) != 1 {
			t.Errorf("expected one error, got %+v", v)
		}
	})

	t.Run("title without price", func(t *testing.T) {
		v := ValidateExtraction(domain.ExtractedFields{SquareFeet: ptr(5000)}, domain.DocumentTitle)
		if v.IsValid || len(v.Errors) != 1 {
			t.Errorf("expected one error, got %+v", v)
		}
	})
}

func checkFloat(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: not extracted", name)
		return
	}
	if *got != want {
		t.Errorf("%s: expected %g, got %g", name, want, *got)
	}
}
