package ensemble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/preprocess"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	id     string
	label  models.SentimentLabel
	conf   float64
	err    error
	calls  atomic.Int64
	inputs chan string
}

func (s *stubClassifier) Info() models.ModelInfo {
	return models.ModelInfo{ID: s.id, Kind: "stub", ConfidenceScale: models.ConfidenceFixed}
}

func (s *stubClassifier) Classify(text string) (models.SentimentLabel, float64, error) {
	s.calls.Add(1)
	if s.inputs != nil {
		s.inputs <- text
	}
	if s.err != nil {
		return "", 0, s.err
	}
	return s.label, s.conf, nil
}

type countingNormalizer struct {
	calls atomic.Int64
}

func (c *countingNormalizer) Normalize(text string) string {
	c.calls.Add(1)
	return strings.ToLower(strings.TrimSpace(text))
}

func newStubs() (*stubClassifier, *stubClassifier, *stubClassifier) {
	return &stubClassifier{id: "naive_bayes", label: models.Positive, conf: 0.8},
		&stubClassifier{id: "linear_svm", label: models.Negative, conf: 1.0},
		&stubClassifier{id: "transformer", label: models.Neutral, conf: 0.6}
}

func TestPredictNormalizesOnceAndSharesText(t *testing.T) {
	nb, svm, tr := newStubs()
	nb.inputs = make(chan string, 1)
	tr.inputs = make(chan string, 1)
	normalizer := &countingNormalizer{}

	p, err := NewPredictor(normalizer, []sentiment.Classifier{nb, svm, tr}, "transformer", 1)
	require.NoError(t, err)

	annotated, err := p.Predict(models.TextRecord{ID: "1", Text: "  Great Phone "})
	require.NoError(t, err)

	assert.Equal(t, int64(1), normalizer.calls.Load())
	assert.Equal(t, "great phone", <-nb.inputs)
	assert.Equal(t, "great phone", <-tr.inputs)
	assert.Equal(t, "great phone", annotated.NormalizedText)
	assert.Equal(t, "  Great Phone ", annotated.Text)
	assert.Equal(t, models.Neutral, annotated.Primary)

	require.Len(t, annotated.Predictions, 3)
	prediction, ok := annotated.Prediction("linear_svm")
	require.True(t, ok)
	assert.Equal(t, models.Negative, prediction.Label)
	assert.Equal(t, 1.0, prediction.Confidence)
}

func TestPredictEmptyTextSkipsClassifiers(t *testing.T) {
	nb, svm, tr := newStubs()
	p, err := NewPredictor(preprocess.Default(), []sentiment.Classifier{nb, svm, tr}, "transformer", 1)
	require.NoError(t, err)

	annotated, err := p.Predict(models.TextRecord{Text: "https://x.co @user #"})
	require.NoError(t, err)

	assert.Equal(t, "", annotated.NormalizedText)
	assert.Equal(t, models.Neutral, annotated.Primary)
	for _, prediction := range annotated.Predictions {
		assert.Equal(t, models.Neutral, prediction.Label)
		assert.Zero(t, prediction.Confidence)
	}
	assert.Zero(t, nb.calls.Load()+svm.calls.Load()+tr.calls.Load())
}

func TestPredictFailsWholeRecord(t *testing.T) {
	nb, svm, tr := newStubs()
	svm.err = fmt.Errorf("scoring: %w", models.ErrModelUnavailable)

	p, err := NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, svm, tr}, "transformer", 1)
	require.NoError(t, err)

	_, err = p.Predict(models.TextRecord{ID: "r1", Text: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "linear_svm")
}

func TestPredictRejectsNonCanonicalLabel(t *testing.T) {
	nb, svm, tr := newStubs()
	nb.label = "mixed"

	p, err := NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, svm, tr}, "transformer", 1)
	require.NoError(t, err)

	_, err = p.Predict(models.TextRecord{Text: "hello"})
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestNewPredictorValidation(t *testing.T) {
	nb, svm, _ := newStubs()

	_, err := NewPredictor(&countingNormalizer{}, nil, "transformer", 1)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, svm}, "transformer", 1)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, nb}, "naive_bayes", 1)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestPredictBatchPreservesOrder(t *testing.T) {
	nb, svm, tr := newStubs()
	normalizer := &countingNormalizer{}
	p, err := NewPredictor(normalizer, []sentiment.Classifier{nb, svm, tr}, "naive_bayes", 4)
	require.NoError(t, err)

	records := make([]models.TextRecord, 200)
	for i := range records {
		records[i] = models.TextRecord{ID: fmt.Sprintf("r%d", i), Text: fmt.Sprintf("post %d", i)}
	}
	records[10].Text = "   "

	annotated, err := p.PredictBatch(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, annotated, len(records))

	for i, a := range annotated {
		assert.Equal(t, records[i].ID, a.ID)
		assert.Len(t, a.Predictions, 3)
	}
	assert.Equal(t, models.Positive, annotated[0].Primary)
	assert.Equal(t, models.Neutral, annotated[10].Primary)
	assert.Equal(t, int64(len(records)), normalizer.calls.Load())
	assert.Equal(t, int64(len(records)-1), nb.calls.Load())
}

func TestPredictBatchAllOrNothing(t *testing.T) {
	nb, svm, tr := newStubs()
	tr.err = errors.New("boom")
	p, err := NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, svm, tr}, "transformer", 2)
	require.NoError(t, err)

	annotated, err := p.PredictBatch(context.Background(), []models.TextRecord{{Text: "a"}, {Text: "b"}})
	assert.Error(t, err)
	assert.Nil(t, annotated)
}

func TestPredictBatchCancelled(t *testing.T) {
	nb, svm, tr := newStubs()
	p, err := NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, svm, tr}, "transformer", 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	annotated, err := p.PredictBatch(ctx, []models.TextRecord{{Text: "a"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, annotated)
}

func TestPredictBatchEmpty(t *testing.T) {
	nb, svm, tr := newStubs()
	p, err := NewPredictor(&countingNormalizer{}, []sentiment.Classifier{nb, svm, tr}, "transformer", 2)
	require.NoError(t, err)

	annotated, err := p.PredictBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, annotated)
}
