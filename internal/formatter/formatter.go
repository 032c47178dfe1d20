// package formatter provides functions to export saved favorites to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or its common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Extension is the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// ExportToCSV converts favorites to CSV format with columns: Prompt, Saved, Filename, Audio URL, Download URL
func ExportToCSV(favorites []models.FavoriteEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Prompt", "Saved", "Filename", "Audio URL", "Download URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, f := range favorites {
		record := []string{f.Prompt, f.Timestamp, f.Filename, f.AudioURL, f.DownloadURL}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts favorites to a Markdown list. Relative links are resolved against baseURL when set.
func ExportToMarkdown(favorites []models.FavoriteEntry, baseURL string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Favorites\n\n")
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(favorites)))

	for i, f := range favorites {
		link := f.DownloadURL
		if link == "" {
			link = f.AudioURL
		}
		if baseURL != "" {
			link = services.ResolveURL(baseURL, link)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) _%s_\n", i+1, escapeMarkdown(f.Prompt), link, f.Timestamp))
	}

	return buf.Bytes(), nil
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`).Replace(shared.EscapeText(s))
}

// ExportToText converts favorites to plain text format
func ExportToText(favorites []models.FavoriteEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Favorites: %d\n\n", len(favorites)))
	for i, f := range favorites {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, shared.EscapeText(f.Prompt), f.Timestamp))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders favorites as the same indented array that is stored.
func ExportToJSON(favorites []models.FavoriteEntry) ([]byte, error) {
	if favorites == nil {
		favorites = []models.FavoriteEntry{}
	}
	return shared.MarshalJSON(favorites, true)
}

// Export renders favorites in format f.
func Export(favorites []models.FavoriteEntry, f Format, baseURL string) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(favorites)
	case FormatMarkdown:
		return ExportToMarkdown(favorites, baseURL)
	case FormatText:
		return ExportToText(favorites)
	case FormatJSON:
		return ExportToJSON(favorites)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
}

// WriteExport writes favorites to path in format f and returns the path written.
//
// Defaults to favorites{ext} in the working directory. Parent directories are created.
func WriteExport(favorites []models.FavoriteEntry, f Format, path, baseURL string) (string, error) {
	if path == "" {
		path = "favorites" + f.Extension()
	}

	data, err := Export(favorites, f, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}
