package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/metrics"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/sentiment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordClassifier labels text by the first sentiment keyword it contains.
type keywordClassifier struct {
	id    string
	delay time.Duration
	err   error
}

func (k keywordClassifier) Info() models.ModelInfo {
	return models.ModelInfo{ID: k.id, Kind: "keyword", ConfidenceScale: models.ConfidenceFixed}
}

func (k keywordClassifier) Classify(text string) (models.SentimentLabel, float64, error) {
	time.Sleep(k.delay)
	if k.err != nil {
		return "", 0, k.err
	}
	switch {
	case strings.Contains(text, "great"):
		return models.Positive, 0.9, nil
	case strings.Contains(text, "terrible"):
		return models.Negative, 0.9, nil
	}
	return models.Neutral, 0.5, nil
}

func testSettings() *config.Settings {
	return &config.Settings{
		Preprocess: config.PreprocessSettings{Language: "en"},
		Models: config.ModelSettings{
			Primary:     sentiment.TransformerID,
			Priority:    []string{sentiment.TransformerID, sentiment.LinearSVMID, sentiment.NaiveBayesID, sentiment.VaderID},
			NaiveBayes:  config.ClassifierSettings{Enabled: true},
			LinearSVM:   config.ClassifierSettings{Enabled: true},
			Transformer: config.TransformerSettings{Enabled: true},
		},
		Analysis: config.AnalysisSettings{
			Workers:            4,
			Timeout:            5 * time.Second,
			ImbalanceThreshold: 0.2,
			SampleSize:         3,
			TopTerms:           5,
		},
	}
}

func classifiers(delay time.Duration) []sentiment.Classifier {
	return []sentiment.Classifier{
		keywordClassifier{id: sentiment.NaiveBayesID, delay: delay},
		keywordClassifier{id: sentiment.LinearSVMID, delay: delay},
		keywordClassifier{id: sentiment.TransformerID, delay: delay},
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc, err := Build(testSettings(), classifiers(0), m)
	require.NoError(t, err)

	req := models.AnalysisRequest{
		Query: "phones",
		Records: []models.TextRecord{
			{ID: "1", Text: "Great phone! https://t.co/x", GroundTruth: models.Positive},
			{ID: "2", Text: "@carrier terrible signal", GroundTruth: models.Negative},
			{ID: "3", Text: "https://x.co @user #", GroundTruth: models.Neutral},
		},
	}

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "phones", result.Query)
	assert.Equal(t, sentiment.TransformerID, result.PrimaryModel)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "great phone", result.Records[0].NormalizedText)
	assert.Equal(t, "", result.Records[2].NormalizedText)
	assert.Equal(t, models.Neutral, result.Records[2].Primary)

	for _, id := range []string{sentiment.NaiveBayesID, sentiment.LinearSVMID, sentiment.TransformerID} {
		eval := result.Evaluations[id]
		require.True(t, eval.Available)
		assert.Equal(t, 1.0, eval.Metrics.Accuracy)
		assert.Equal(t, 3, result.Distributions[id].Total)
	}

	require.NotNil(t, result.Insights.BestModel)
	assert.Equal(t, sentiment.TransformerID, result.Insights.BestModel.Model)
	assert.Equal(t, "priority", result.Insights.BestModel.DecidedBy)
	assert.Empty(t, result.Omissions)

	require.Len(t, result.TopTerms, 3)
	assert.Equal(t, models.Positive, result.TopTerms[0].Label)
	assert.Equal(t, []models.TermCount{{Term: "great", Count: 1}, {Term: "phone", Count: 1}}, result.TopTerms[0].Terms)
	assert.Empty(t, result.TopTerms[2].Terms)
	assert.Empty(t, result.Timeline.Days)
	assert.Equal(t, 3, result.Timeline.Undated)

	assert.Equal(t, 3.0, counterValue(t, reg, "sentiment_records_analyzed_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "sentiment_empty_records_total"))
	assert.Equal(t, 9.0, counterValue(t, reg, "sentiment_predictions_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func TestAnalyzeIsDeterministicApartFromIdentity(t *testing.T) {
	svc, err := Build(testSettings(), classifiers(0), nil)
	require.NoError(t, err)

	req := models.AnalysisRequest{Query: "q", Records: []models.TextRecord{
		{Text: "great day"}, {Text: "terrible day"}, {Text: "a day"},
	}}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	second.ID, second.CreatedAt = first.ID, first.CreatedAt
	x, err := json.Marshal(first)
	require.NoError(t, err)
	y, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(x), string(y))

	assert.Len(t, first.Omissions, 3)
	assert.False(t, first.Evaluations[sentiment.TransformerID].Available)
}

func TestAnalyzeFailsAsAWhole(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	broken := classifiers(0)
	broken[1] = keywordClassifier{id: sentiment.LinearSVMID, err: errors.New("scoring failed")}

	svc, err := Build(testSettings(), broken, m)
	require.NoError(t, err)

	result, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Records: []models.TextRecord{{Text: "great"}, {Text: "terrible"}},
	})
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "scoring failed")
	assert.Equal(t, 1.0, counterValue(t, reg, "sentiment_analyses_total"))
	assert.Zero(t, counterValue(t, reg, "sentiment_records_analyzed_total"))
}

func TestAnalyzeRejectsDuplicateRecordIDs(t *testing.T) {
	svc, err := Build(testSettings(), classifiers(0), nil)
	require.NoError(t, err)

	req := models.AnalysisRequest{Records: []models.TextRecord{
		{Text: "great"}, {ID: "1", Text: "terrible"},
	}}
	result, err := svc.Analyze(context.Background(), req)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrInvalidRecords)
	assert.Empty(t, req.Records[0].ID)
}

func TestAnalyzeTimeout(t *testing.T) {
	settings := testSettings()
	settings.Analysis.Timeout = 20 * time.Millisecond
	settings.Analysis.Workers = 1

	svc, err := Build(settings, classifiers(15*time.Millisecond), nil)
	require.NoError(t, err)

	records := make([]models.TextRecord, 10)
	for i := range records {
		records[i] = models.TextRecord{Text: "great"}
	}

	result, err := svc.Analyze(context.Background(), models.AnalysisRequest{Records: records})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildRejectsUnregisteredPrimary(t *testing.T) {
	settings := testSettings()
	settings.Models.Primary = sentiment.VaderID

	_, err := Build(settings, classifiers(0), nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
