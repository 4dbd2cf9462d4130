// Command underwrite runs every scenario of a deal file plus a rent
// sensitivity sweep and prints the report.
//
//	underwrite -deal deal.hjson [-doc listing.pdf] [-format markdown|html|json] [-out report.html]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cre-underwriter/config"
	"cre-underwriter/dealfile"
	"cre-underwriter/domain"
	"cre-underwriter/report"
	"cre-underwriter/repository"
	"cre-underwriter/service"
)

type options struct {
	dealPath   string
	docPath    string
	configPath string
	format     string
	outPath    string
	title      string
	noSweep    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dealPath, "deal", "", "deal file (JSON or Hjson)")
	flag.StringVar(&opts.docPath, "doc", "", "optional listing, lease or title document whose extracted values override the deal file")
	flag.StringVar(&opts.configPath, "config", "config/app.yaml", "configuration file")
	flag.StringVar(&opts.format, "format", "markdown", "output format: markdown, html or json")
	flag.StringVar(&opts.outPath, "out", "", "write the report to this file instead of stdout")
	flag.StringVar(&opts.title, "title", "", "report title")
	flag.BoolVar(&opts.noSweep, "no-sensitivity", false, "skip the rent sensitivity sweep")
	flag.Parse()

	if opts.dealPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	// .env es opcional
	_ = godotenv.Load()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "underwrite:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	input, format, err := dealfile.Load(opts.dealPath)
	if err != nil {
		return err
	}
	logger.Debug("deal file loaded", zap.String("path", opts.dealPath), zap.String("format", string(format)))

	req, err := input.Resolve()
	if err != nil {
		return err
	}

	if opts.docPath != "" {
		if err := applyDocument(ctx, cfg, logger, opts.docPath, &req); err != nil {
			return err
		}
	}

	analysis, err := newAnalysisService(cfg, logger)
	if err != nil {
		return err
	}

	result, err := analysis.Calculate(ctx, req)
	if err != nil {
		return err
	}

	var sweeps domain.SensitivityResponse
	if !opts.noSweep {
		sweeps, err = analysis.SensitivityAll(req, input.Perturbations)
		if err != nil {
			return err
		}
	}

	out := io.Writer(os.Stdout)
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return write(out, opts, req, result, sweeps)
}

func write(
	out io.Writer,
	opts options,
	req domain.AnalysisRequest,
	result domain.AnalysisResponse,
	sweeps domain.SensitivityResponse,
) error {
	switch strings.ToLower(opts.format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			domain.AnalysisResponse
			Sensitivity map[string][]domain.SensitivityPoint `json:"sensitivity,omitempty"`
		}{result, sweeps.Scenarios})
	case "markdown", "md", "html":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	in := report.NewInput(req, result, sweeps)
	in.Title = opts.title
	md := report.Markdown(in)

	if strings.EqualFold(opts.format, "html") {
		page, err := report.RenderHTML(in.Title, md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, page)
		return err
	}
	_, err := io.WriteString(out, md)
	return err
}

// applyDocument extracts fields from a document and applies them to the deal
// and every scenario.
func applyDocument(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	path string,
	req *domain.AnalysisRequest,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	var ocr service.OCREngine
	if cfg.Extraction.OCREnabled {
		ocr = service.NewTesseractOCR(cfg.Extraction.PdfToPPMPath, cfg.Extraction.TesseractPath)
	}
	extracted, err := service.NewExtractionService(ocr, logger).Extract(ctx, path, data)
	if err != nil {
		return err
	}
	for _, msg := range extracted.Validation.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", msg)
	}
	if !extracted.Validation.IsValid {
		return errors.New(strings.Join(extracted.Validation.Errors, "; "))
	}

	for name, s := range req.Scenarios {
		extracted.Fields.ApplyDefaults(&req.General, &s)
		req.Scenarios[name] = s
	}
	return nil
}

func newAnalysisService(cfg *config.Config, logger *zap.Logger) (*service.AnalysisService, error) {
	solver, err := service.NewIRRSolver(cfg.Solver.Strategy, service.SolverConfig{
		InitialGuess:  cfg.Solver.InitialGuess,
		Tolerance:     cfg.Solver.Tolerance,
		MaxIterations: cfg.Solver.MaxIterations,
	})
	if err != nil {
		return nil, err
	}
	evaluator := service.NewScenarioEvaluator(service.NewAmortizationScheduler(), solver, logger)
	runner := service.NewScenarioRunner(evaluator, logger, cfg.Server.Parallelism)
	sweeper := service.NewSensitivityAnalyzer(evaluator, logger, cfg.Sensitivity.Perturbations, cfg.Server.Parallelism)

	// Una sola corrida: la caché en memoria basta
	return service.NewAnalysisService(runner, sweeper, repository.NewMemoryCache(), cfg.Cache.TTL, logger), nil
}
