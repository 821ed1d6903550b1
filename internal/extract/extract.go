// Package extract converts single files into plain text, dispatching on
// file extension. Adding a format means adding one entry to the registry.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports that no extractor is registered for the
// file's extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// extractorFunc converts one file into plain text.
type extractorFunc func(path string) (string, error)

// registry maps a lowercase extension (with dot) to its extractor.
var registry = map[string]extractorFunc{
	".txt":  plainText,
	".md":   plainText,
	".pdf":  pdfText,
	".docx": docxText,
	".csv":  csvText,
	".html": htmlText,
}

// Text returns the plain-text content of the file at path. It fails with
// ErrUnsupportedFormat when the extension has no registered extractor, and
// wraps the underlying parse error otherwise. It never panics past the
// caller, even for corrupt inputs.
func Text(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := registry[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	text, err := fn(path)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// Supported reports whether files with the given extension can be extracted.
func Supported(ext string) bool {
	_, ok := registry[strings.ToLower(ext)]
	return ok
}

// plainText reads the raw bytes as UTF-8 text verbatim.
func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// csvText joins each row's column values with a single space and rows with
// newlines, preserving row order.
func csvText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are fine, we only want the text

	var sb strings.Builder
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row, " "))
	}
	return sb.String(), nil
}
