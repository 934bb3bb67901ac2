package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTextRepository_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.html")
	html := `<html><head><title>Results</title><script>var x = 1;</script></head>
<body><div><p>Revenue for the quarter stood at Rs. 62,600 crore, up 6.8% year-on-year.</p></div></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	repo := NewDocumentTextRepository(logger.NewNop())
	text, err := repo.ExtractText(context.Background(), &entity.SourceDocument{Kind: entity.DocumentKindHTML, Location: path}, 5)
	require.NoError(t, err)
	assert.Contains(t, text, "Rs. 62,600 crore")
	assert.NotContains(t, text, "var x")
}

func TestDocumentTextRepository_SyntheticIsEmpty(t *testing.T) {
	repo := NewDocumentTextRepository(logger.NewNop())
	text, err := repo.ExtractText(context.Background(), entity.SyntheticDocument("TCS"), 5)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDocumentTextRepository_BrokenPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 not really a pdf"), 0o644))

	repo := NewDocumentTextRepository(logger.NewNop())
	_, err := repo.ExtractText(context.Background(), &entity.SourceDocument{Kind: entity.DocumentKindPDF, Location: path}, 5)
	assert.Error(t, err)
}
