package models

import "math"

type LabelShare struct {
	Label      SentimentLabel `json:"label"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
	// DisplayPercentage is Percentage rounded to one decimal place.
	DisplayPercentage float64 `json:"display_percentage"`
}

func NewLabelShare(label SentimentLabel, count, total int) LabelShare {
	share := LabelShare{Label: label, Count: count}
	if total > 0 {
		share.Percentage = float64(count) / float64(total) * 100
		share.DisplayPercentage = math.Round(share.Percentage*10) / 10
	}
	return share
}

type SentimentDistribution struct {
	Model   string       `json:"model"`
	Total   int          `json:"total"`
	Buckets []LabelShare `json:"buckets"`
}

func (d SentimentDistribution) Share(label SentimentLabel) (LabelShare, bool) {
	for _, b := range d.Buckets {
		if b.Label == label {
			return b, true
		}
	}
	return LabelShare{}, false
}

// ConfusionMatrix rows are actual labels, columns are predicted labels, both in
// Labels order.
type ConfusionMatrix struct {
	Labels [3]SentimentLabel `json:"labels"`
	Counts [3][3]int         `json:"counts"`
}

func NewConfusionMatrix() *ConfusionMatrix {
	return &ConfusionMatrix{Labels: Labels}
}

func (m *ConfusionMatrix) Add(actual, predicted SentimentLabel) bool {
	i, j := actual.Index(), predicted.Index()
	if i < 0 || j < 0 {
		return false
	}
	m.Counts[i][j]++
	return true
}

func (m *ConfusionMatrix) Total() int {
	total := 0
	for i := range m.Counts {
		total += m.RowSum(i)
	}
	return total
}

func (m *ConfusionMatrix) Trace() int {
	trace := 0
	for i := range m.Counts {
		trace += m.Counts[i][i]
	}
	return trace
}

func (m *ConfusionMatrix) RowSum(i int) int {
	sum := 0
	for j := range m.Counts[i] {
		sum += m.Counts[i][j]
	}
	return sum
}

func (m *ConfusionMatrix) ColSum(j int) int {
	sum := 0
	for i := range m.Counts {
		sum += m.Counts[i][j]
	}
	return sum
}

type ClassMetrics struct {
	Label     SentimentLabel `json:"label"`
	Precision float64        `json:"precision"`
	Recall    float64        `json:"recall"`
	F1Score   float64        `json:"f1_score"`
	Support   int            `json:"support"`
	Predicted int            `json:"predicted"`
}

type AveragedMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

// ModelMetrics top-level precision, recall and F1 are support-weighted averages.
type ModelMetrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1Score   float64         `json:"f1_score"`
	Support   int             `json:"support"`
	Macro     AveragedMetrics `json:"macro"`
	Weighted  AveragedMetrics `json:"weighted"`
	PerClass  []ClassMetrics  `json:"per_class"`
}

const ReasonMissingGroundTruth = "missing_ground_truth"

// ModelEvaluation is explicit about absence: when Available is false Matrix and
// Metrics are nil and Reason says why.
type ModelEvaluation struct {
	Model     string           `json:"model"`
	Available bool             `json:"available"`
	Reason    string           `json:"reason,omitempty"`
	Matrix    *ConfusionMatrix `json:"confusion_matrix,omitempty"`
	Metrics   *ModelMetrics    `json:"metrics,omitempty"`
}

type GroundTruthCoverage struct {
	Labeled int `json:"labeled"`
	Total   int `json:"total"`
}

func (c GroundTruthCoverage) Complete() bool {
	return c.Total > 0 && c.Labeled == c.Total
}

type AgreementStats struct {
	// Unanimous is the share of records (0..1) on which every model agrees.
	Unanimous float64 `json:"unanimous"`
	// WithPrimary maps each non-primary model to its agreement rate with the primary model.
	WithPrimary map[string]float64 `json:"with_primary,omitempty"`
	Analyzable  int                `json:"analyzable_records"`
	Empty       int                `json:"empty_records"`
}
