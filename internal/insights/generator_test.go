package insights

import (
	"strings"
	"testing"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/aggregate"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	modelIDs = []string{"naive_bayes", "linear_svm", "transformer"}
	priority = []string{"transformer", "linear_svm", "naive_bayes"}
)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{
		Primary:            "transformer",
		Priority:           priority,
		ImbalanceThreshold: 0.2,
		SampleSize:         3,
	}, modelIDs)
	require.NoError(t, err)
	return g
}

func annotate(truth []models.SentimentLabel, predicted map[string][]models.SentimentLabel) []models.AnnotatedRecord {
	records := make([]models.AnnotatedRecord, len(truth))
	for i := range records {
		records[i] = models.AnnotatedRecord{
			TextRecord:     models.TextRecord{Text: "post", GroundTruth: truth[i]},
			NormalizedText: "post",
		}
		for _, id := range modelIDs {
			records[i].Predictions = append(records[i].Predictions,
				models.ModelPrediction{Model: id, Label: predicted[id][i], Confidence: 1})
		}
	}
	return records
}

func derive(t *testing.T, g *Generator, records []models.AnnotatedRecord) models.Insights {
	t.Helper()
	aggs, err := aggregate.NewAggregator(modelIDs, "transformer").Aggregate(records)
	require.NoError(t, err)
	return g.Derive(Input{
		Models:        modelIDs,
		Records:       records,
		Distributions: aggs.Distributions,
		Evaluations:   aggs.Evaluations,
		GroundTruth:   aggs.GroundTruth,
	})
}

var (
	pos = models.Positive
	neg = models.Negative
	neu = models.Neutral
)

func TestBestModelTieOnAccuracyBrokenByWeightedF1(t *testing.T) {
	truth := []models.SentimentLabel{pos, pos, neg, neu}
	insights := derive(t, newGenerator(t), annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": {pos, neg, neg, neu},
		"linear_svm":  {neg, neg, pos, pos},
		"transformer": {pos, pos, neg, pos},
	}))

	require.NotNil(t, insights.BestModel)
	assert.Equal(t, "naive_bayes", insights.BestModel.Model)
	assert.InDelta(t, 0.75, insights.BestModel.Accuracy, 1e-9)
	assert.InDelta(t, 0.75, insights.BestModel.WeightedF1, 1e-9)
	assert.Equal(t, "weighted_f1", insights.BestModel.DecidedBy)
}

func TestBestModelFullTieBrokenByPriority(t *testing.T) {
	truth := []models.SentimentLabel{pos, neg, neu, pos}
	same := []models.SentimentLabel{pos, neg, neu, neg}
	insights := derive(t, newGenerator(t), annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": same,
		"linear_svm":  same,
		"transformer": {neg, neg, neu, neg},
	}))

	require.NotNil(t, insights.BestModel)
	assert.Equal(t, "linear_svm", insights.BestModel.Model)
	assert.Equal(t, "priority", insights.BestModel.DecidedBy)
}

func TestBestModelByAccuracy(t *testing.T) {
	truth := []models.SentimentLabel{pos, neg, neu}
	insights := derive(t, newGenerator(t), annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": {pos, neg, neu},
		"linear_svm":  {pos, pos, pos},
		"transformer": {neg, neg, neu},
	}))

	require.NotNil(t, insights.BestModel)
	assert.Equal(t, "naive_bayes", insights.BestModel.Model)
	assert.Equal(t, "accuracy", insights.BestModel.DecidedBy)
}

func TestNoBestModelWithoutGroundTruth(t *testing.T) {
	truth := []models.SentimentLabel{pos, "", neg}
	insights := derive(t, newGenerator(t), annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": {pos, neg, neg},
		"linear_svm":  {pos, neg, neg},
		"transformer": {pos, pos, neg},
	}))

	assert.Nil(t, insights.BestModel)
	require.Len(t, insights.Flags, 1)
	assert.Equal(t, models.FlagEvaluationUnavailable, insights.Flags[0].Kind)
	assert.Contains(t, insights.Flags[0].Detail, "2 of 3")
}

func TestDominantAndBalance(t *testing.T) {
	truth := []models.SentimentLabel{"", "", "", ""}
	insights := derive(t, newGenerator(t), annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": {pos, neg, neg, neu},
		"linear_svm":  {pos, neg, pos, neg},
		"transformer": {pos, pos, neg, neu},
	}))

	assert.Equal(t, neg, insights.DominantSentiment["naive_bayes"])
	assert.Equal(t, pos, insights.DominantSentiment["linear_svm"])
	assert.Equal(t, pos, insights.DominantSentiment["transformer"])

	require.NotNil(t, insights.Balance)
	assert.Equal(t, "transformer", insights.Balance.Model)
	assert.InDelta(t, 50.0, insights.Balance.Positive, 1e-9)
	assert.InDelta(t, 25.0, insights.Balance.Negative, 1e-9)
	assert.InDelta(t, 25.0, insights.Balance.Neutral, 1e-9)
}

func TestClassImbalanceFlag(t *testing.T) {
	truth := []models.SentimentLabel{pos, pos, neg, neu}
	insights := derive(t, newGenerator(t), annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": {pos, neg, neg, neu},
		"linear_svm":  {pos, pos, neg, neu},
		"transformer": {pos, pos, neg, neu},
	}))

	require.Len(t, insights.Flags, 1)
	flag := insights.Flags[0]
	assert.Equal(t, models.FlagClassImbalance, flag.Kind)
	assert.Equal(t, "naive_bayes", flag.Model)
	assert.InDelta(t, 1.0/3, flag.Value, 1e-9)
}

func TestEmptyBatch(t *testing.T) {
	insights := derive(t, newGenerator(t), nil)

	assert.Empty(t, insights.DominantSentiment)
	assert.Nil(t, insights.Balance)
	assert.Nil(t, insights.BestModel)
	assert.Empty(t, insights.Flags)
	assert.Empty(t, insights.Samples)
	assert.Equal(t, []string{"Analyzed 0 records with 3 models."}, insights.Findings)
}

func TestSamplesAndFindings(t *testing.T) {
	truth := []models.SentimentLabel{pos, neg, neu, pos}
	records := annotate(truth, map[string][]models.SentimentLabel{
		"naive_bayes": {pos, neg, neu, pos},
		"linear_svm":  {pos, neg, neu, pos},
		"transformer": {pos, neg, neu, pos},
	})
	records[0].Text = strings.Repeat("x", 200)

	g := newGenerator(t)
	first := derive(t, g, records)
	second := derive(t, g, records)
	assert.Equal(t, first, second)

	require.Len(t, first.Samples, 3)
	assert.Equal(t, strings.Repeat("x", 150)+"...", first.Samples[0].Text)
	assert.Equal(t, neg, first.Samples[1].Labels["linear_svm"])

	assert.Contains(t, first.Findings, "Dominant sentiment (transformer): positive (50.0%).")
	assert.Contains(t, first.Findings, "Best performing model: transformer (accuracy 1.000, weighted F1 1.000, decided by priority).")
}

func TestNewGeneratorValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "threshold zero", cfg: Config{Primary: "transformer", Priority: priority, ImbalanceThreshold: 0}},
		{name: "threshold one", cfg: Config{Primary: "transformer", Priority: priority, ImbalanceThreshold: 1}},
		{name: "missing priority", cfg: Config{Primary: "transformer", Priority: priority[:2], ImbalanceThreshold: 0.2}},
		{name: "duplicate priority", cfg: Config{Primary: "transformer",
			Priority: []string{"transformer", "transformer", "linear_svm", "naive_bayes"}, ImbalanceThreshold: 0.2}},
		{name: "unregistered primary", cfg: Config{Primary: "vader", Priority: priority, ImbalanceThreshold: 0.2}},
		{name: "negative samples", cfg: Config{Primary: "transformer", Priority: priority, ImbalanceThreshold: 0.2, SampleSize: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.cfg, modelIDs)
			assert.ErrorIs(t, err, models.ErrConfiguration)
		})
	}
}
