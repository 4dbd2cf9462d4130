// Package report renders an underwriting analysis as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"cre-underwriter/domain"
)

const DefaultTitle = "Deal Underwriting Report"

type Input struct {
	Title       string
	AnalysisID  string
	GeneratedAt time.Time
	Deal        domain.DealParameters
	Scenarios   map[string]domain.ScenarioAssumptions
	Results     map[string]domain.ScenarioResult
	Errors      map[string]string
	Sensitivity map[string][]domain.SensitivityPoint
}

// NewInput assembles a report from an analysis and its rent sweeps.
func NewInput(
	req domain.AnalysisRequest,
	analysis domain.AnalysisResponse,
	sweeps domain.SensitivityResponse,
) Input {
	return Input{
		AnalysisID:  analysis.AnalysisID,
		GeneratedAt: time.Now(),
		Deal:        req.General,
		Scenarios:   req.Scenarios,
		Results:     analysis.Results,
		Errors:      analysis.Errors,
		Sensitivity: sweeps.Scenarios,
	}
}

// Markdown builds the full report: deal summary, scenario comparison,
// yearly breakdown, rent sensitivity and notes.
func Markdown(in Input) string {
	var b strings.Builder

	title := in.Title
	if title == "" {
		title = DefaultTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if in.AnalysisID != "" {
		fmt.Fprintf(&b, "Analysis `%s`", in.AnalysisID)
		if !in.GeneratedAt.IsZero() {
			fmt.Fprintf(&b, ", generated %s", in.GeneratedAt.UTC().Format(time.RFC3339))
		}
		b.WriteString("\n\n")
	}

	writeDeal(&b, in.Deal)

	names := scenarioNames(in)
	if len(names) > 0 {
		writeComparison(&b, names, in)
	}

	for _, name := range names {
		r, ok := in.Results[name]
		if !ok {
			continue
		}
		writeYears(&b, name, r.Years)
	}

	writeSensitivity(&b, in.Sensitivity)
	writeNotes(&b, names, in)

	return b.String()
}

func writeDeal(b *strings.Builder, d domain.DealParameters) {
	b.WriteString("## Deal Summary\n\n")
	b.WriteString("| Parameter | Value |\n|---|---:|\n")
	fmt.Fprintf(b, "| Purchase price | %s |\n", Money(d.PurchasePrice))
	fmt.Fprintf(b, "| Square feet | %s |\n", groupThousands(fmt.Sprint(d.SquareFeet)))
	fmt.Fprintf(b, "| Monthly operating expenses | %s |\n", Money(d.MonthlyOperatingExpenses))
	fmt.Fprintf(b, "| CAM per sf | %s |\n", Money(d.CAMPerSqft))
	fmt.Fprintf(b, "| Taxes per sf | %s |\n", Money(d.TaxesPerSqft))
	fmt.Fprintf(b, "| Hold period | %d years |\n", d.HoldPeriodYears)
	fmt.Fprintf(b, "| Loan term | %d years |\n", d.LoanTermYears)
	fmt.Fprintf(b, "| Interest-only period | %d years |\n\n", d.InterestOnlyYears)
}

func writeComparison(b *strings.Builder, names []string, in Input) {
	b.WriteString("## Scenario Comparison\n\n")

	b.WriteString("| Metric |")
	for _, name := range names {
		fmt.Fprintf(b, " %s |", escapeCell(name))
	}
	b.WriteString("\n|---|")
	for range names {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	row := func(label string, cell func(domain.ScenarioAssumptions, domain.ScenarioResult) string) {
		fmt.Fprintf(b, "| %s |", label)
		for _, name := range names {
			r, ok := in.Results[name]
			if !ok {
				b.WriteString(" failed |")
				continue
			}
			fmt.Fprintf(b, " %s |", cell(in.Scenarios[name], r))
		}
		b.WriteString("\n")
	}

	row("Rent per sf", func(s domain.ScenarioAssumptions, _ domain.ScenarioResult) string { return Money(s.RentPerSqft) })
	row("Down payment", func(s domain.ScenarioAssumptions, _ domain.ScenarioResult) string { return Percent(s.DownPaymentPercent / 100) })
	row("Interest rate", func(s domain.ScenarioAssumptions, _ domain.ScenarioResult) string { return Percent(s.InterestRate / 100) })
	row("Appreciation", func(s domain.ScenarioAssumptions, _ domain.ScenarioResult) string { return Percent(s.AppreciationRate / 100) })
	row("NOI", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Money(r.NOI) })
	row("Cap rate", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Percent(r.CapRate) })
	row("Annual debt service", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Money(r.AnnualDebtService) })
	row("Annual cash flow", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Money(r.CashFlow) })
	row("Cash-on-cash", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string {
		if !r.CoCDefined {
			return "n/a"
		}
		return Percent(r.CoCReturn)
	})
	row("IRR", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string {
		switch r.IRRStatus {
		case domain.IRRUndefined:
			return "n/a"
		case domain.IRRNotConverged:
			return Percent(r.IRR) + " (est.)"
		}
		return Percent(r.IRR)
	})
	row("DSCR", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string {
		if !r.DSCRDefined {
			return "n/a"
		}
		return Multiple(r.DSCR)
	})
	row("Equity multiple", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string {
		if !r.EquityMultipleDefined {
			return "n/a"
		}
		return Multiple(r.EquityMultiple)
	})
	row("Sale proceeds", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Money(r.SaleProceeds) })
	row("Equity gain", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Money(r.EquityGain) })
	row("Total return", func(_ domain.ScenarioAssumptions, r domain.ScenarioResult) string { return Money(r.TotalReturn) })
	b.WriteString("\n")
}

func writeYears(b *strings.Builder, name string, years []domain.YearSummary) {
	if len(years) == 0 {
		return
	}
	fmt.Fprintf(b, "## Yearly Breakdown: %s\n\n", name)
	b.WriteString("| Year | Debt service | Interest | Principal | Cash flow | Balance | Value | Equity |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, y := range years {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			y.Year,
			Money(y.DebtService),
			Money(y.Interest),
			Money(y.Principal),
			Money(y.CashFlow),
			Money(y.EndingBalance),
			Money(y.PropertyValue),
			Money(y.Equity),
		)
	}
	b.WriteString("\n")
}

func writeSensitivity(b *strings.Builder, sweeps map[string][]domain.SensitivityPoint) {
	if len(sweeps) == 0 {
		return
	}
	names := make([]string, 0, len(sweeps))
	for name := range sweeps {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("## Rent Sensitivity\n\n")
	for _, name := range names {
		fmt.Fprintf(b, "### %s\n\n", name)
		b.WriteString("| Rent change | Rent per sf | Cap rate | Cash-on-cash | IRR |\n")
		b.WriteString("|---:|---:|---:|---:|---:|\n")
		for _, p := range sweeps[name] {
			coc := "n/a"
			if p.CoCDefined {
				coc = Percent(p.CoCReturn)
			}
			irr := "n/a"
			if p.IRRStatus != domain.IRRUndefined {
				irr = Percent(p.IRR)
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
				signedPercent(p.Perturbation), Money(p.Rent), Percent(p.CapRate), coc, irr)
		}
		b.WriteString("\n")
	}
}

func writeNotes(b *strings.Builder, names []string, in Input) {
	var notes []string
	for _, name := range names {
		if msg, failed := in.Errors[name]; failed {
			notes = append(notes, fmt.Sprintf("**%s** could not be evaluated: %s", name, msg))
			continue
		}
		r := in.Results[name]
		if len(r.UndefinedMetrics) > 0 {
			notes = append(notes, fmt.Sprintf("**%s**: %s undefined (no equity or no debt service)",
				name, strings.Join(r.UndefinedMetrics, ", ")))
		}
		if r.IRRStatus == domain.IRRNotConverged {
			notes = append(notes, fmt.Sprintf("**%s**: IRR did not converge after %d iterations; best estimate shown",
				name, r.IRRIterations))
		}
		for _, adj := range r.Adjustments {
			notes = append(notes, fmt.Sprintf("**%s**: %s adjusted from %g to %g",
				name, adj.Field, adj.Given, adj.Used))
		}
	}
	if len(notes) == 0 {
		return
	}
	b.WriteString("## Notes\n\n")
	for _, n := range notes {
		fmt.Fprintf(b, "- %s\n", n)
	}
	b.WriteString("\n")
}

// scenarioNames lists every evaluated or failed scenario in sorted order.
func scenarioNames(in Input) []string {
	seen := make(map[string]bool, len(in.Results)+len(in.Errors))
	for name := range in.Results {
		seen[name] = true
	}
	for name := range in.Errors {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func signedPercent(fraction float64) string {
	s := Percent(fraction)
	if fraction > 0 {
		return "+" + s
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts a Markdown report into a standalone HTML page.
func RenderHTML(title, md string) (string, error) {
	if title == "" {
		title = DefaultTitle
	}
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>body{font-family:sans-serif;max-width:1100px;margin:2em auto}" +
		"table{border-collapse:collapse;margin-bottom:1.5em}" +
		"th,td{border:1px solid #ccc;padding:4px 8px}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}
