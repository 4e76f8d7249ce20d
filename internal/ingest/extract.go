package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"knowbase/internal/util"

	"github.com/ledongthuc/pdf"
)

// ExtractText converts a file into plain text by extension. Failures yield
// empty text plus an error; batch callers log and continue rather than abort.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read txt: %w", err)
		}
		text := util.SanitizeText(string(b))
		if text == "" {
			return "", util.ErrNoExtractableText
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", util.ErrUnsupportedFileType, filepath.Ext(path))
	}
}

// extractPDF concatenates per-page text in page order, joined by newlines.
// Pages that fail to decode are skipped rather than failing the file.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	text := util.SanitizeText(b.String())
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}
