package ensemble

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

type Normalizer interface {
	Normalize(text string) string
}

// Predictor runs every registered classifier over each record. It holds only
// read-only state and may be shared across concurrent analyses.
type Predictor struct {
	normalizer  Normalizer
	classifiers []sentiment.Classifier
	modelIDs    []string
	primary     string
	workers     int
}

func NewPredictor(normalizer Normalizer, classifiers []sentiment.Classifier, primary string, workers int) (*Predictor, error) {
	if len(classifiers) == 0 {
		return nil, fmt.Errorf("[EnsemblePredictor] %w: no classifiers registered", models.ErrConfiguration)
	}
	if workers < 1 {
		workers = 1
	}

	ids := make([]string, len(classifiers))
	seen := make(map[string]bool, len(classifiers))
	for i, c := range classifiers {
		id := c.Info().ID
		if seen[id] {
			return nil, fmt.Errorf("[EnsemblePredictor] %w: model %q registered twice", models.ErrConfiguration, id)
		}
		seen[id] = true
		ids[i] = id
	}
	if !seen[primary] {
		return nil, fmt.Errorf("[EnsemblePredictor] %w: primary model %q is not registered", models.ErrConfiguration, primary)
	}

	return &Predictor{
		normalizer:  normalizer,
		classifiers: classifiers,
		modelIDs:    ids,
		primary:     primary,
		workers:     workers,
	}, nil
}

func (p *Predictor) ModelIDs() []string {
	return append([]string(nil), p.modelIDs...)
}

func (p *Predictor) Primary() string {
	return p.primary
}

func (p *Predictor) Infos() []models.ModelInfo {
	infos := make([]models.ModelInfo, len(p.classifiers))
	for i, c := range p.classifiers {
		infos[i] = c.Info()
	}
	return infos
}

// Predict normalizes the record once and classifies it with every model.
// Records whose normalized text is empty get neutral with zero confidence from
// every model and no classifier is invoked.
func (p *Predictor) Predict(record models.TextRecord) (models.AnnotatedRecord, error) {
	normalized := p.normalizer.Normalize(record.Text)

	annotated := models.AnnotatedRecord{
		TextRecord:     record,
		NormalizedText: normalized,
		Predictions:    make([]models.ModelPrediction, len(p.classifiers)),
	}

	for i, c := range p.classifiers {
		prediction := models.ModelPrediction{Model: p.modelIDs[i], Label: models.Neutral}

		if normalized != "" {
			label, confidence, err := c.Classify(normalized)
			if err != nil {
				return models.AnnotatedRecord{}, fmt.Errorf("[EnsemblePredictor] model %s failed on record %q: %w",
					p.modelIDs[i], record.ID, err)
			}
			if !label.Valid() {
				return models.AnnotatedRecord{}, fmt.Errorf("[EnsemblePredictor] %w: model %s returned label %q",
					models.ErrConfiguration, p.modelIDs[i], label)
			}
			prediction.Label = label
			prediction.Confidence = confidence
		}

		annotated.Predictions[i] = prediction
		if prediction.Model == p.primary {
			annotated.Primary = prediction.Label
		}
	}

	return annotated, nil
}

// PredictBatch predicts every record on a bounded worker pool and returns
// results in input order. Any failure or context cancellation discards the
// whole batch.
func (p *Predictor) PredictBatch(ctx context.Context, records []models.TextRecord) ([]models.AnnotatedRecord, error) {
	start := time.Now()
	annotated := make([]models.AnnotatedRecord, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.Predict(records[i])
			if err != nil {
				return err
			}
			annotated[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("[EnsemblePredictor] Batch prediction aborted",
			slog.Int("records", len(records)),
			slog.String("error", err.Error()))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("[EnsemblePredictor] Batch predicted",
		slog.Int("records", len(records)),
		slog.Int("models", len(p.classifiers)),
		slog.Duration("elapsed", time.Since(start)))

	return annotated, nil
}
