package dealfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cre-underwriter/domain"
)

func TestParse_StrictJSON(t *testing.T) {

	in, format, err := Parse([]byte(`{"general": {"purchasePrice": 1500000}, "scenarios": {"base": {"rent": 28}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != FormatJSON {
		t.Errorf("expected json, got %s", format)
	}
	if in.General == nil || *in.General.PurchasePrice != 1_500_000 {
		t.Errorf("unexpected general %+v", in.General)
	}
}

func TestParse_Hjson(t *testing.T) {

	data := `
# Downtown office, broker package March numbers
{
  general: {
    purchasePrice: 2400000
    // rentable area
    sqft: 18000
    holdPeriod: 7
  }
  scenarios: {
    base: { rent: 31, downPayment: 30 }
    downside: { rent: 26, interestRate: 7.5 }
  }
  perturbations: [-0.2, 0, 0.2]
}`

	in, format, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != FormatHjson {
		t.Errorf("expected hjson, got %s", format)
	}

	req, err := in.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.General.SquareFeet != 18000 || req.General.HoldPeriodYears != 7 {
		t.Errorf("unexpected general %+v", req.General)
	}
	if req.Scenarios["downside"].InterestRate != 7.5 {
		t.Errorf("unexpected downside %+v", req.Scenarios["downside"])
	}
	if len(in.Perturbations) != 3 {
		t.Errorf("expected 3 perturbations, got %v", in.Perturbations)
	}
}

func TestParse_Rejects(t *testing.T) {

	for _, data := range []string{"", "   ", "[1, 2, 3]"} {
		if _, _, err := Parse([]byte(data)); !errors.Is(err, domain.ErrMalformedRequest) {
			t.Errorf("%q: expected ErrMalformedRequest, got %v", data, err)
		}
	}
}

func TestLoad(t *testing.T) {

	path := filepath.Join(t.TempDir(), "deal.json")
	if err := os.WriteFile(path, []byte(`{"general": {}, "scenarios": {"base": {}}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	in, _, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := in.Resolve(); err != nil {
		t.Errorf("expected a resolvable deal, got %v", err)
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for a missing file")
	}
}
