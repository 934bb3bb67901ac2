package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/mauidude/go-readability"
)

// DocumentTextRepository defines the interface for reading text out of an acquired document.
type DocumentTextRepository interface {
	// ExtractText returns the text of the first maxPages pages (PDF) or the
	// readable article body (HTML). Synthetic documents yield an empty string.
	ExtractText(ctx context.Context, doc *entity.SourceDocument, maxPages int) (string, error)
}

// NewDocumentTextRepository creates a new instance of DocumentTextRepository.
func NewDocumentTextRepository(log *logger.Logger) DocumentTextRepository {
	return &documentTextRepository{logger: log}
}

type documentTextRepository struct {
	logger *logger.Logger
}

func (r *documentTextRepository) ExtractText(ctx context.Context, doc *entity.SourceDocument, maxPages int) (string, error) {
	if doc.IsSynthetic() {
		return "", nil
	}

	switch doc.Kind {
	case entity.DocumentKindPDF:
		return extractPDFText(doc.Location, maxPages)
	case entity.DocumentKindHTML:
		raw, err := os.ReadFile(doc.Location)
		if err != nil {
			return "", fmt.Errorf("failed to read html document: %w", err)
		}
		return extractHTMLText(string(raw))
	default:
		return "", fmt.Errorf("unsupported document kind %q", doc.Kind)
	}
}

// extractPDFText reads up to maxPages pages. The pdf package panics on some
// malformed files, so panics are turned into errors.
func extractPDFText(path string, maxPages int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("panic during PDF extraction: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// extractHTMLText pulls the main article out of a results page and flattens it
// to text. Short readability output falls back to the whole page.
func extractHTMLText(html string) (string, error) {
	page, err := htmlToText(html)
	if err != nil {
		return "", err
	}

	doc, err := readability.NewDocument(html)
	if err != nil {
		return page, nil
	}
	article, err := htmlToText(doc.Content())
	if err != nil || len(article) < minArticleChars {
		return page, nil
	}
	return article, nil
}

const minArticleChars = 200

func htmlToText(html string) (string, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	parsed.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(parsed.Text()), " "), nil
}
