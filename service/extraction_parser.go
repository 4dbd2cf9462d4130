package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cre-underwriter/domain"
)

var (
	rentPattern  = regexp.MustCompile(`(?i)\$\s*(\d+\.?\d*)\s*(?:/sqft|/sf|/square\s+foot|/sf/yr|/yr|psf|per\s+sf(?:/yr)?)`)
	camPattern   = regexp.MustCompile(`(?i)(?:CAM|common\s+area\s+maintenance)\s*[:=]?\s*\$\s*(\d+\.?\d*)\s*(?:/sqft|/sf|psf)`)
	taxPattern   = regexp.MustCompile(`(?i)(?:tax|taxes)\s*[:=]?\s*\$\s*(\d+\.?\d*)\s*(?:/sqft|/sf|psf)`)
	sqftPattern  = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)\s*(?:sqft|sf|square\s+feet)`)
	pricePattern = regexp.MustCompile(`(?i)(?:purchase\s+price|price)\s*[:=]?\s*\$\s*(\d{1,3}(?:,\d{3})*)`)
	opexPattern  = regexp.MustCompile(`(?i)(?:operating\s+expenses|opex)\s*[:=]?\s*\$\s*(\d+\.?\d*)\s*(?:/sqft|/sf|psf)`)
	typePattern  = regexp.MustCompile(`(?i)\b(office|retail|industrial)\b`)

	titlePricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:sale|purchase|consideration)\s*[:=]?\s*\$\s*(\d{1,3}(?:,\d{3})*)`),
		regexp.MustCompile(`(?i)(?:deed|transfer)[^$]*\$(\d{1,3}(?:,\d{3})*)`),
	}
	titleTaxPattern = regexp.MustCompile(`(?i)(?:property tax|annual tax|real estate tax)\s*[:=]?\s*\$\s*(\d+\.?\d*)`)

	titleIndicators  = []string{"title report", "preliminary report", "title insurance", "deed", "easement"}
	costarIndicators = []string{"costar", "lease", "rent", "tenant", "psf", "rsf", "cam"}
)

// DetectDocumentType scores indicator phrases. A type wins with more than two
// hits and strictly more hits than the other.
func DetectDocumentType(text string) domain.DocumentType {
	lower := strings.ToLower(text)
	title := countIndicators(lower, titleIndicators)
	costar := countIndicators(lower, costarIndicators)

	switch {
	case title > costar && title > 2:
		return domain.DocumentTitle
	case costar > title && costar > 2:
		return domain.DocumentCoStar
	}
	return domain.DocumentUnknown
}

func countIndicators(text string, indicators []string) int {
	n := 0
	for _, ind := range indicators {
		if strings.Contains(text, ind) {
			n++
		}
	}
	return n
}

// ParseCoStar pulls lease/listing fields from CoStar-style text.
func ParseCoStar(text string) domain.ExtractedFields {
	var f domain.ExtractedFields
	f.RentPerSqft = matchFloat(rentPattern, text)
	f.CAMPerSqft = matchFloat(camPattern, text)
	f.TaxesPerSqft = matchFloat(taxPattern, text)
	f.SquareFeet = matchInt(sqftPattern, text)
	f.PurchasePrice = matchFloat(pricePattern, text)
	f.OperatingExpensesPerSqft = matchFloat(opexPattern, text)
	if m := typePattern.FindStringSubmatch(text); m != nil {
		f.PropertyType = strings.ToLower(m[1])
	}
	return f
}

// ParseTitle pulls the sale price, size and tax from a title report.
func ParseTitle(text string) domain.ExtractedFields {
	lower := strings.ToLower(text)
	var f domain.ExtractedFields
	for _, p := range titlePricePatterns {
		if v := matchFloat(p, lower); v != nil {
			f.PurchasePrice = v
			break
		}
	}
	f.SquareFeet = matchInt(sqftPattern, lower)
	f.TaxesPerSqft = matchFloat(titleTaxPattern, lower)
	return f
}

// ParseDocument dispatches on the detected type. Unknown documents run both
// parsers and keep the one that found more fields.
func ParseDocument(text string) (domain.DocumentType, domain.ExtractedFields) {
	docType := DetectDocumentType(text)
	switch docType {
	case domain.DocumentTitle:
		return docType, ParseTitle(text)
	case domain.DocumentCoStar:
		return docType, ParseCoStar(text)
	}

	title := ParseTitle(text)
	costar := ParseCoStar(text)
	if title.Count() > costar.Count() {
		return domain.DocumentTitle, title
	}
	return domain.DocumentCoStar, costar
}

// ValidateExtraction flags implausible values and missing essentials.
func ValidateExtraction(f domain.ExtractedFields, docType domain.DocumentType) domain.ExtractionValidation {
	v := domain.ExtractionValidation{Warnings: []string{}, Errors: []string{}}

	if f.RentPerSqft != nil && (*f.RentPerSqft < 5 || *f.RentPerSqft > 200) {
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("Rent $%g/sf seems unusual (typical: $5-200/sf)", *f.RentPerSqft))
	}
	if f.SquareFeet != nil && (*f.SquareFeet < 500 || *f.SquareFeet > 1_000_000) {
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("Square footage %d seems unusual", *f.SquareFeet))
	}
	if f.PurchasePrice != nil && f.SquareFeet != nil && *f.SquareFeet > 0 {
		perSqft := *f.PurchasePrice / float64(*f.SquareFeet)
		if perSqft < 50 || perSqft > 2000 {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("Price per sqft $%.0f seems unusual (typical: $50-2000/sf)", perSqft))
		}
	}
	if f.CAMPerSqft != nil && *f.CAMPerSqft > 50 {
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("CAM charges $%g/sf seem high (typical: $2-15/sf)", *f.CAMPerSqft))
	}

	if docType == domain.DocumentCoStar && f.RentPerSqft == nil && f.SquareFeet == nil {
		v.Errors = append(v.Errors, "No rental or size data found in CoStar report")
	}
	if docType == domain.DocumentTitle && f.PurchasePrice == nil {
		v.Errors = append(v.Errors, "No sale price found in title report")
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

func matchFloat(p *regexp.Regexp, text string) *float64 {
	m := p.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

func matchInt(p *regexp.Regexp, text string) *int {
	m := p.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &v
}
