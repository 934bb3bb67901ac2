package strategy

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/repository"
	"market-khabri/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

var (
	resultLinkKeywords = []string{"result", "quarterly", "financial", "q4", "q3", "q2", "q1"}
	resultPageKeywords = []string{"quarterly results", "financial results", "results press release"}
)

// OfficialSiteStrategy scans a company's investor-relations page for the latest
// results PDF, or failing that a results press-release page.
type OfficialSiteStrategy struct {
	web             repository.WebRepository
	logger          *logger.Logger
	pages           map[string]string
	downloadDir     string
	pageTimeout     time.Duration
	downloadTimeout time.Duration
	now             func() time.Time
}

// NewOfficialSiteStrategy creates a new instance of OfficialSiteStrategy.
// pages maps symbols to investor-relations URLs; keys are matched case-insensitively.
func NewOfficialSiteStrategy(web repository.WebRepository, log *logger.Logger, pages map[string]string, downloadDir string, pageTimeout, downloadTimeout time.Duration) *OfficialSiteStrategy {
	normalized := make(map[string]string, len(pages))
	for symbol, page := range pages {
		normalized[strings.ToUpper(symbol)] = page
	}
	return &OfficialSiteStrategy{
		web:             web,
		logger:          log,
		pages:           normalized,
		downloadDir:     downloadDir,
		pageTimeout:     pageTimeout,
		downloadTimeout: downloadTimeout,
		now:             time.Now,
	}
}

func (s *OfficialSiteStrategy) Name() string {
	return "official_site"
}

// Attempt fetches the investor-relations page and downloads the first matching document.
func (s *OfficialSiteStrategy) Attempt(ctx context.Context, symbol string) (*entity.SourceDocument, error) {
	pageURL, ok := s.pages[symbol]
	if !ok {
		return nil, fmt.Errorf("no investor relations page for %s: %w", symbol, entity.ErrStrategyDeclined)
	}

	resp, err := s.web.Get(ctx, pageURL, s.pageTimeout)
	if err != nil {
		return nil, err
	}

	base := resp.FinalURL
	if base == "" {
		base = pageURL
	}
	pdfLink, pageLink, err := findResultLinks(resp.Body, base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	if pdfLink != "" {
		doc, err := s.download(ctx, symbol, pdfLink, entity.DocumentKindPDF)
		if err == nil {
			return doc, nil
		}
		s.logger.Warn("Failed to download result PDF", logger.ErrorField(err), logger.StringField("symbol", symbol), logger.StringField("url", pdfLink))
	}

	if pageLink != "" {
		return s.download(ctx, symbol, pageLink, entity.DocumentKindHTML)
	}

	return nil, fmt.Errorf("no result document on %s: %w", pageURL, entity.ErrSourceUnavailable)
}

func (s *OfficialSiteStrategy) download(ctx context.Context, symbol, link string, kind entity.DocumentKind) (*entity.SourceDocument, error) {
	resp, err := s.web.Get(ctx, link, s.downloadTimeout)
	if err != nil {
		return nil, err
	}
	if kind == entity.DocumentKindPDF && !bytes.HasPrefix(resp.Body, []byte("%PDF")) {
		return nil, fmt.Errorf("%s is not a PDF: %w", link, entity.ErrSourceUnavailable)
	}

	if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	// The random suffix keeps same-second downloads of one symbol apart.
	f, err := os.CreateTemp(s.downloadDir, fmt.Sprintf("%s_%d_*.%s", symbol, s.now().Unix(), kind))
	if err != nil {
		return nil, fmt.Errorf("failed to create download file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}

	s.logger.Info("Downloaded result document", logger.StringField("symbol", symbol), logger.StringField("path", path))
	return &entity.SourceDocument{Kind: kind, Symbol: symbol, Location: path, SourceURL: link}, nil
}

// findResultLinks returns the first PDF link whose text names a result, and the
// first non-PDF link whose text names a results page. Links are resolved against base.
func findResultLinks(body []byte, base string) (pdfLink, pageLink string, err error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}
		text := strings.ToLower(strings.Join(strings.Fields(sel.Text()), " "))

		resolved, perr := baseURL.Parse(href)
		if perr != nil {
			return true
		}

		isPDF := strings.Contains(strings.ToLower(href), ".pdf")
		switch {
		case isPDF && pdfLink == "" && containsAny(text, resultLinkKeywords):
			pdfLink = resolved.String()
		case !isPDF && pageLink == "" && containsAny(text, resultPageKeywords):
			pageLink = resolved.String()
		}
		return pdfLink == ""
	})

	return pdfLink, pageLink, nil
}
