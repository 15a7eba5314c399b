package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

// jsonRecord accepts the field spellings produced by the collectors that feed
// this tool.
type jsonRecord struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Body        string `json:"body"`
	Label       string `json:"label"`
	Sentiment   string `json:"sentiment"`
	GroundTruth string `json:"ground_truth"`
	Timestamp   string `json:"timestamp"`
	CreatedAt   string `json:"created_at"`
	AuthorID    string `json:"author_id"`
	Username    string `json:"username"`
}

func (j jsonRecord) toRecord() (models.TextRecord, error) {
	record := models.TextRecord{
		ID:       j.ID,
		Text:     firstNonEmpty(j.Text, j.Body),
		AuthorID: firstNonEmpty(j.AuthorID, j.Username),
	}

	var err error
	if record.GroundTruth, err = parseGroundTruth(firstNonEmpty(j.GroundTruth, j.Sentiment, j.Label)); err != nil {
		return models.TextRecord{}, err
	}
	if record.Timestamp, err = parseTimestamp(firstNonEmpty(j.Timestamp, j.CreatedAt)); err != nil {
		return models.TextRecord{}, err
	}
	return record, nil
}

// ReadJSON reads a JSON array of records.
func ReadJSON(r io.Reader) ([]models.TextRecord, error) {
	var raw []jsonRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("error decoding json records: %w", err)
	}

	records := make([]models.TextRecord, 0, len(raw))
	for i, item := range raw {
		record, err := item.toRecord()
		if err != nil {
			return nil, fmt.Errorf("json record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadJSONL reads one JSON object per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]models.TextRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var records []models.TextRecord
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var item jsonRecord
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("jsonl line %d: %w", line, err)
		}
		record, err := item.toRecord()
		if err != nil {
			return nil, fmt.Errorf("jsonl line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading jsonl records: %w", err)
	}
	return records, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
