// Package pdftext converts raw PDF content into plain text, page by
// page. It is tolerant of noisy layouts and right-to-left scripts and
// never lets a malformed document crash the host process.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/tenderworks/documentsummaryflow/internal/models"
)

// Extractor converts PDF bytes to plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract validates the document, then extracts text from every page in
// order. Each page contributing text is terminated by a newline; pages
// yielding no text are skipped. An all-blank document is an
// unprocessable-input error, not a success with empty output.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// Parser panics on malformed input must surface as stage errors.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = models.NewStageError(models.StatusInternal, fmt.Sprintf("pdf parser panicked: %v", r))
		}
	}()

	if len(data) == 0 {
		return "", models.NewStageError(models.StatusInvalidInput, "document content is empty")
	}

	pageCount, err := validate(data)
	if err != nil {
		return "", models.WrapStageError(models.StatusInvalidInput, "document is not a readable PDF", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", models.WrapStageError(models.StatusInvalidInput, "failed to open PDF", err)
	}
	defer doc.Close()

	var builder strings.Builder
	for page := 0; page < pageCount; page++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		pageText, err := doc.Text(page)
		if err != nil {
			return "", models.WrapStageError(models.StatusInternal, fmt.Sprintf("failed to extract text from page %d", page+1), err)
		}

		normalized := NormalizePage(pageText)
		if normalized == "" {
			continue
		}
		builder.WriteString(normalized)
		builder.WriteString("\n")
	}

	result := builder.String()
	if strings.TrimSpace(result) == "" {
		return "", models.NewStageError(models.StatusUnprocessable, "no text could be extracted from the document")
	}
	return result, nil
}

// validate runs a relaxed structural validation pass and returns the
// page count. Corrupt or non-PDF input fails here before the renderer
// ever sees it.
func validate(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

// Bidirectional formatting controls that PDF generators for
// right-to-left scripts scatter through extracted text.
var bidiControls = map[rune]struct{}{
	'‎': {}, '‏': {},
	'‪': {}, '‫': {}, '‬': {}, '‭': {}, '‮': {},
	'⁦': {}, '⁧': {}, '⁨': {}, '⁩': {},
}

// NormalizePage cleans one page's raw text: bidi control characters are
// stripped, line endings unified, and trailing whitespace removed per
// line. Returns "" for pages with no visible content.
func NormalizePage(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if _, ok := bidiControls[r]; ok {
			return -1
		}
		if r == '\r' {
			return -1
		}
		return r
	}, raw)

	lines := strings.Split(cleaned, "\n")
	var kept []string
	for _, line := range lines {
		kept = append(kept, strings.TrimRight(line, " \t"))
	}

	joined := strings.Join(kept, "\n")
	if strings.TrimSpace(joined) == "" {
		return ""
	}
	return strings.TrimRight(joined, "\n")
}
