package insights

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/aggregate"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

const (
	floatTolerance   = 1e-9
	sampleTextLength = 150
)

type Config struct {
	Primary string
	// Priority breaks best-model ties, highest priority first.
	Priority           []string
	ImbalanceThreshold float64
	SampleSize         int
}

type Input struct {
	Models        []string
	Records       []models.AnnotatedRecord
	Distributions map[string]models.SentimentDistribution
	Evaluations   map[string]models.ModelEvaluation
	GroundTruth   models.GroundTruthCoverage
}

// Generator derives qualitative insights from batch statistics. Output depends
// only on its inputs and the fixed configuration.
type Generator struct {
	primary   string
	rank      map[string]int
	threshold float64
	samples   int
}

// NewGenerator validates cfg against the registered model ids.
func NewGenerator(cfg Config, modelIDs []string) (*Generator, error) {
	if cfg.ImbalanceThreshold <= 0 || cfg.ImbalanceThreshold >= 1 {
		return nil, fmt.Errorf("[InsightGenerator] %w: imbalance threshold %v outside (0, 1)",
			models.ErrConfiguration, cfg.ImbalanceThreshold)
	}
	if cfg.SampleSize < 0 {
		return nil, fmt.Errorf("[InsightGenerator] %w: negative sample size", models.ErrConfiguration)
	}

	rank := make(map[string]int, len(cfg.Priority))
	for i, id := range cfg.Priority {
		if _, dup := rank[id]; dup {
			return nil, fmt.Errorf("[InsightGenerator] %w: %q appears twice in priority", models.ErrConfiguration, id)
		}
		rank[id] = i
	}

	primaryRegistered := false
	for _, id := range modelIDs {
		if _, ok := rank[id]; !ok {
			return nil, fmt.Errorf("[InsightGenerator] %w: model %q has no priority", models.ErrConfiguration, id)
		}
		if id == cfg.Primary {
			primaryRegistered = true
		}
	}
	if !primaryRegistered {
		return nil, fmt.Errorf("[InsightGenerator] %w: primary model %q is not registered",
			models.ErrConfiguration, cfg.Primary)
	}

	return &Generator{
		primary:   cfg.Primary,
		rank:      rank,
		threshold: cfg.ImbalanceThreshold,
		samples:   cfg.SampleSize,
	}, nil
}

func (g *Generator) Derive(in Input) models.Insights {
	insights := models.Insights{
		DominantSentiment: make(map[string]models.SentimentLabel),
		Flags:             []models.Flag{},
		Samples:           []models.RecordSample{},
	}

	for _, id := range in.Models {
		if label, ok := aggregate.Dominant(in.Distributions[id]); ok {
			insights.DominantSentiment[id] = label
		}
	}

	if dist := in.Distributions[g.primary]; dist.Total > 0 {
		balance := &models.SentimentBalance{Model: g.primary}
		for _, b := range dist.Buckets {
			switch b.Label {
			case models.Positive:
				balance.Positive = b.Percentage
			case models.Negative:
				balance.Negative = b.Percentage
			case models.Neutral:
				balance.Neutral = b.Percentage
			}
		}
		insights.Balance = balance
	}

	insights.BestModel = g.bestModel(in.Models, in.Evaluations)
	insights.Flags = append(insights.Flags, g.flags(in)...)
	insights.Samples = g.sampleRecords(in.Models, in.Records)
	insights.Findings = findings(in, insights)

	return insights
}

// bestModel ranks evaluated models by accuracy, then weighted F1, then the
// configured priority. It returns nil when no model has an evaluation.
func (g *Generator) bestModel(ids []string, evaluations map[string]models.ModelEvaluation) *models.BestModel {
	var candidates []string
	for _, id := range ids {
		if eval, ok := evaluations[id]; ok && eval.Available && eval.Metrics != nil {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	metric := func(id string) *models.ModelMetrics { return evaluations[id].Metrics }

	best := candidates[0]
	for _, id := range candidates[1:] {
		if g.better(metric(id), metric(best), id, best) {
			best = id
		}
	}

	decidedBy := "accuracy"
	for _, id := range candidates {
		if id == best || !nearlyEqual(metric(id).Accuracy, metric(best).Accuracy) {
			continue
		}
		if nearlyEqual(metric(id).Weighted.F1Score, metric(best).Weighted.F1Score) {
			decidedBy = "priority"
			break
		}
		decidedBy = "weighted_f1"
	}

	return &models.BestModel{
		Model:      best,
		Accuracy:   metric(best).Accuracy,
		WeightedF1: metric(best).Weighted.F1Score,
		DecidedBy:  decidedBy,
	}
}

func (g *Generator) better(a, b *models.ModelMetrics, aID, bID string) bool {
	if !nearlyEqual(a.Accuracy, b.Accuracy) {
		return a.Accuracy > b.Accuracy
	}
	if !nearlyEqual(a.Weighted.F1Score, b.Weighted.F1Score) {
		return a.Weighted.F1Score > b.Weighted.F1Score
	}
	return g.rank[aID] < g.rank[bID]
}

func (g *Generator) flags(in Input) []models.Flag {
	var flags []models.Flag

	if in.GroundTruth.Total > 0 && !in.GroundTruth.Complete() {
		flags = append(flags, models.Flag{
			Kind: models.FlagEvaluationUnavailable,
			Detail: fmt.Sprintf("ground truth present for %d of %d records; confusion matrices and metrics omitted",
				in.GroundTruth.Labeled, in.GroundTruth.Total),
		})
	}

	for _, id := range in.Models {
		eval, ok := in.Evaluations[id]
		if !ok || !eval.Available || eval.Metrics == nil {
			continue
		}

		lo, hi, present := math.Inf(1), math.Inf(-1), 0
		for _, c := range eval.Metrics.PerClass {
			if c.Support == 0 && c.Predicted == 0 {
				continue
			}
			present++
			lo = math.Min(lo, c.F1Score)
			hi = math.Max(hi, c.F1Score)
		}
		if present < 2 {
			continue
		}

		if spread := hi - lo; spread > g.threshold+floatTolerance {
			flags = append(flags, models.Flag{
				Kind:   models.FlagClassImbalance,
				Model:  id,
				Value:  spread,
				Detail: fmt.Sprintf("per-class F1 spread %.3f exceeds %.2f", spread, g.threshold),
			})
		}
	}

	return flags
}

func (g *Generator) sampleRecords(ids []string, records []models.AnnotatedRecord) []models.RecordSample {
	n := min(g.samples, len(records))
	samples := make([]models.RecordSample, 0, n)
	for _, r := range records[:n] {
		sample := models.RecordSample{
			Text:   truncate(r.Text, sampleTextLength),
			Labels: make(map[string]models.SentimentLabel, len(ids)),
		}
		for _, id := range ids {
			if p, ok := r.Prediction(id); ok {
				sample.Labels[id] = p.Label
			}
		}
		samples = append(samples, sample)
	}
	return samples
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}
