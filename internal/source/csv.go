package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

// Header aliases, matched case-insensitively. The first alias present wins.
var (
	idColumns        = []string{"id", "tweet_id"}
	textColumns      = []string{"text", "body", "content"}
	labelColumns     = []string{"sentiment", "label", "ground_truth"}
	timestampColumns = []string{"created_at", "timestamp"}
	authorColumns    = []string{"author_id", "username", "author"}
)

// ReadCSV reads records from a CSV file with a header row. Only the text
// column is required.
func ReadCSV(r io.Reader) ([]models.TextRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv input has no header row")
		}
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	lookup := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := columns[alias]; ok {
				return i
			}
		}
		return -1
	}

	textCol := lookup(textColumns)
	if textCol < 0 {
		return nil, fmt.Errorf("csv header %v has no text column", header)
	}
	idCol := lookup(idColumns)
	labelCol := lookup(labelColumns)
	timestampCol := lookup(timestampColumns)
	authorCol := lookup(authorColumns)

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []models.TextRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv row %d: %w", line, err)
		}

		record := models.TextRecord{
			ID:       strings.TrimSpace(cell(row, idCol)),
			Text:     cell(row, textCol),
			AuthorID: strings.TrimSpace(cell(row, authorCol)),
		}
		if record.GroundTruth, err = parseGroundTruth(cell(row, labelCol)); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		if record.Timestamp, err = parseTimestamp(cell(row, timestampCol)); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}
