package source

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Options control how raw rows become records.
type Options struct {
	// Markdown flattens each text from markdown to plain text before it is
	// handed to the normalizer.
	Markdown bool
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatJSONL:
		return f, nil
	case "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unsupported input format %q", s)
}

// DetectFormat infers the format from the file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer input format of %q without an extension", path)
	}
	return ParseFormat(ext)
}

// Open reads every record from the file at path. An empty format is inferred
// from the extension.
func Open(path string, format Format, opts Options) ([]models.TextRecord, error) {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[Source] failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := Read(file, format, opts)
	if err != nil {
		return nil, fmt.Errorf("[Source] %s: %w", path, err)
	}

	slog.Info("[Source] Loaded records",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("records", len(records)))
	return records, nil
}

func Read(r io.Reader, format Format, opts Options) ([]models.TextRecord, error) {
	var (
		records []models.TextRecord
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = ReadCSV(r)
	case FormatJSON:
		records, err = ReadJSON(r)
	case FormatJSONL:
		records, err = ReadJSONL(r)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if err := models.AssignRecordIDs(records); err != nil {
		return nil, err
	}
	if opts.Markdown {
		for i := range records {
			records[i].Text = FlattenMarkdown(records[i].Text)
		}
	}
	return records, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseGroundTruth maps a label cell to a sentiment label. Blank cells mean
// the record is unlabeled.
func parseGroundTruth(s string) (models.SentimentLabel, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return models.ParseLabel(s)
}
