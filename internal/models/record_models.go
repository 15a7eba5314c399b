package models

import (
	"fmt"
	"strconv"
	"time"
)

type TextRecord struct {
	ID          string         `json:"id,omitempty"`
	Text        string         `json:"text"`
	Timestamp   *time.Time     `json:"timestamp,omitempty"`
	AuthorID    string         `json:"author_id,omitempty"`
	GroundTruth SentimentLabel `json:"ground_truth,omitempty"`
}

func (r TextRecord) HasGroundTruth() bool {
	return r.GroundTruth.Valid()
}

type ModelPrediction struct {
	Model      string         `json:"model"`
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
}

// AnnotatedRecord is a record after ensemble inference. Predictions hold exactly
// one entry per registered model, in registration order.
type AnnotatedRecord struct {
	TextRecord
	NormalizedText string            `json:"normalized_text"`
	Predictions    []ModelPrediction `json:"predictions"`
	Primary        SentimentLabel    `json:"primary_label"`
}

func (r AnnotatedRecord) Prediction(model string) (ModelPrediction, bool) {
	for _, p := range r.Predictions {
		if p.Model == model {
			return p, true
		}
	}
	return ModelPrediction{}, false
}

type AnalysisRequest struct {
	RequestID string       `json:"request_id,omitempty"`
	Query     string       `json:"query"`
	Records   []TextRecord `json:"records"`
}

// AssignRecordIDs gives every record without an id its 1-based position and
// rejects batches where two records share an id.
func AssignRecordIDs(records []TextRecord) error {
	seen := make(map[string]int, len(records))
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = strconv.Itoa(i + 1)
		}
		if prev, ok := seen[records[i].ID]; ok {
			return fmt.Errorf("%w: records %d and %d share id %q", ErrInvalidRecords, prev+1, i+1, records[i].ID)
		}
		seen[records[i].ID] = i
	}
	return nil
}
