package aggregate

import (
	"fmt"
	"log/slog"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

// Aggregates holds every batch statistic derived from one annotated batch.
type Aggregates struct {
	BatchSize     int
	Distributions map[string]models.SentimentDistribution
	Evaluations   map[string]models.ModelEvaluation
	GroundTruth   models.GroundTruthCoverage
	Agreement     models.AgreementStats
	Timeline      models.SentimentTimeline
	TopTerms      []models.LabelTerms
}

// Aggregator folds a fully predicted batch into statistics. It keeps no state
// between calls, so aggregating the same batch twice yields equal results.
type Aggregator struct {
	modelIDs []string
	primary  string
	topTerms int
}

func NewAggregator(modelIDs []string, primary string) *Aggregator {
	return &Aggregator{
		modelIDs: append([]string(nil), modelIDs...),
		primary:  primary,
		topTerms: DEFAULT_TOP_TERMS,
	}
}

// WithTopTerms sets how many terms are kept per label. Zero disables the term
// lists.
func (a *Aggregator) WithTopTerms(n int) *Aggregator {
	a.topTerms = n
	return a
}

func (a *Aggregator) Aggregate(records []models.AnnotatedRecord) (*Aggregates, error) {
	labels, err := a.labelColumns(records)
	if err != nil {
		return nil, err
	}

	coverage := models.GroundTruthCoverage{Total: len(records)}
	for _, r := range records {
		if r.HasGroundTruth() {
			coverage.Labeled++
		}
	}

	primary, ok := labels[a.primary]
	if !ok {
		primary = make([]models.SentimentLabel, len(records))
		for i, r := range records {
			primary[i] = r.Primary
		}
	}

	result := &Aggregates{
		BatchSize:     len(records),
		Distributions: make(map[string]models.SentimentDistribution, len(a.modelIDs)),
		Evaluations:   make(map[string]models.ModelEvaluation, len(a.modelIDs)),
		GroundTruth:   coverage,
		Agreement:     agreement(records, a.modelIDs, a.primary, labels),
		Timeline:      Timeline(records, primary),
		TopTerms:      TopTerms(records, primary, a.topTerms),
	}

	for _, id := range a.modelIDs {
		result.Distributions[id] = Distribution(id, labels[id])

		if !coverage.Complete() {
			result.Evaluations[id] = models.ModelEvaluation{
				Model:  id,
				Reason: models.ReasonMissingGroundTruth,
			}
			continue
		}

		matrix := models.NewConfusionMatrix()
		for i, r := range records {
			matrix.Add(r.GroundTruth, labels[id][i])
		}
		metrics := ComputeMetrics(matrix)
		result.Evaluations[id] = models.ModelEvaluation{
			Model:     id,
			Available: true,
			Matrix:    matrix,
			Metrics:   &metrics,
		}
	}

	if !coverage.Complete() && coverage.Labeled > 0 {
		slog.Warn("[Aggregator] Ground truth is partial, skipping evaluation",
			slog.Int("labeled", coverage.Labeled),
			slog.Int("total", coverage.Total))
	}

	return result, nil
}

// labelColumns returns, per model, the predicted label of every record in batch order.
func (a *Aggregator) labelColumns(records []models.AnnotatedRecord) (map[string][]models.SentimentLabel, error) {
	columns := make(map[string][]models.SentimentLabel, len(a.modelIDs))
	for _, id := range a.modelIDs {
		column := make([]models.SentimentLabel, len(records))
		for i, r := range records {
			p, ok := r.Prediction(id)
			if !ok {
				return nil, fmt.Errorf("[Aggregator] %w: record %d has no prediction from %s",
					models.ErrIncompleteAggregates, i, id)
			}
			if !p.Label.Valid() {
				return nil, fmt.Errorf("[Aggregator] %w: record %d has label %q from %s",
					models.ErrIncompleteAggregates, i, p.Label, id)
			}
			column[i] = p.Label
		}
		columns[id] = column
	}
	return columns, nil
}
