package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"cre-underwriter/domain"
)

const (
	MinExtractedChars = 50
	TextSampleChars   = 500
)

// OCREngine recognizes text in a scanned PDF.
type OCREngine interface {
	Recognize(ctx context.Context, document []byte) (string, error)
}

// TesseractOCR rasterizes pages with pdftoppm and reads them with the
// tesseract CLI.
type TesseractOCR struct {
	PdfToPPM  string
	Tesseract string
}

func NewTesseractOCR(pdftoppmPath, tesseractPath string) *TesseractOCR {
	if pdftoppmPath == "" {
		pdftoppmPath = "pdftoppm"
	}
	if tesseractPath == "" {
		tesseractPath = "tesseract"
	}
	return &TesseractOCR{PdfToPPM: pdftoppmPath, Tesseract: tesseractPath}
}

func (t *TesseractOCR) Recognize(ctx context.Context, document []byte) (string, error) {
	dir, err := os.MkdirTemp("", "cre-ocr-*")
	if err != nil {
		return "", fmt.Errorf("ocr workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(input, document, 0o600); err != nil {
		return "", fmt.Errorf("ocr workspace: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	if out, err := exec.CommandContext(ctx, t.PdfToPPM, "-r", "300", "-png", input, prefix).CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", err
	}
	sort.Strings(pages)

	var text strings.Builder
	for _, page := range pages {
		out, err := exec.CommandContext(ctx, t.Tesseract, page, "stdout").Output()
		if err != nil {
			return "", fmt.Errorf("tesseract %s: %w", filepath.Base(page), err)
		}
		text.Write(out)
	}
	return text.String(), nil
}

// ExtractionService turns uploaded lease, listing and title documents into
// best-effort deal field defaults.
type ExtractionService struct {
	ocr    OCREngine
	logger *zap.Logger
}

// NewExtractionService creates an ExtractionService. ocr may be nil to
// disable the scanned-document fallback.
func NewExtractionService(ocr OCREngine, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{ocr: ocr, logger: logger}
}

// Extract reads the document, detects its type and parses its fields.
func (s *ExtractionService) Extract(
	ctx context.Context,
	filename string,
	data []byte,
) (domain.ExtractionResult, error) {

	text, usedOCR, err := s.ExtractText(ctx, filename, data)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	if len(strings.TrimSpace(text)) < MinExtractedChars {
		return domain.ExtractionResult{}, fmt.Errorf(
			"%w: document may be scanned or corrupted", domain.ErrInsufficientText)
	}

	docType, fields := ParseDocument(text)
	s.logger.Info("document parsed",
		zap.String("file", filename),
		zap.String("type", string(docType)),
		zap.Int("fields", fields.Count()),
		zap.Bool("ocr", usedOCR),
	)

	return domain.ExtractionResult{
		DocumentType: docType,
		Fields:       fields,
		TextLength:   utf8.RuneCountInString(text),
		TextSample:   sample(text, TextSampleChars),
		UsedOCR:      usedOCR,
		Validation:   ValidateExtraction(fields, docType),
	}, nil
}

// ExtractText returns the plain text of a .pdf, .html/.htm or .txt file.
func (s *ExtractionService) ExtractText(
	ctx context.Context,
	filename string,
	data []byte,
) (string, bool, error) {

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := pdfText(data)
		if err != nil {
			s.logger.Warn("pdf text layer unreadable", zap.String("file", filename), zap.Error(err))
		}
		if strings.TrimSpace(text) != "" {
			return text, false, nil
		}
		if s.ocr == nil {
			if err != nil {
				return "", false, fmt.Errorf("read pdf: %w", err)
			}
			return "", false, nil
		}
		ocrText, ocrErr := s.ocr.Recognize(ctx, data)
		if ocrErr != nil {
			return "", false, fmt.Errorf("ocr fallback: %w", ocrErr)
		}
		return ocrText, true, nil
	case ".html", ".htm":
		text, err := htmlText(data)
		return text, false, err
	case ".txt":
		return string(data), false, nil
	}
	return "", false, fmt.Errorf("%w: %s", domain.ErrUnsupportedDocument, filename)
}

func pdfText(data []byte) (text string, err error) {
	// el parser de pdf entra en pánico con algunos streams corruptos
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("p, div, br, li, tr, h1, h2, h3, h4, h5, h6").AfterHtml("\n")
	doc.Find("td, th").AfterHtml(" ")

	var lines []string
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		for _, line := range strings.Split(body.Text(), "\n") {
			if line = strings.Join(strings.Fields(line), " "); line != "" {
				lines = append(lines, line)
			}
		}
	})
	return strings.Join(lines, "\n"), nil
}

func sample(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}
