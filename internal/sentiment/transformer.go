package sentiment

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

type sequencePipeline interface {
	RunPipeline(inputs []string) (*pipelines.TextClassificationOutput, error)
}

// Transformer is a contextual sequence classifier run through an ONNX session.
// Confidence is the softmax score of the winning class.
type Transformer struct {
	pipeline sequencePipeline
	labels   LabelMap
	emits    []models.SentimentLabel
	session  *hugot.Session
}

// NewTransformer wraps an initialized pipeline. native lists every label the
// model can emit; each must be covered by labels.
func NewTransformer(pipeline sequencePipeline, labels LabelMap, native []string) (*Transformer, error) {
	if len(native) == 0 {
		return nil, fmt.Errorf("%w: transformer declares no output labels", models.ErrModelUnavailable)
	}
	if err := labels.Validate(native); err != nil {
		return nil, fmt.Errorf("[Transformer] %w", err)
	}

	t := &Transformer{pipeline: pipeline, labels: labels}
	for _, canonical := range models.Labels {
		reachable := false
		for _, n := range native {
			if label, _ := labels.Resolve(n); label == canonical {
				reachable = true
			}
		}
		if reachable {
			t.emits = append(t.emits, canonical)
			continue
		}
		slog.Warn("[Transformer] Model can never predict this label",
			slog.String("label", canonical.String()),
			slog.Any("native_labels", native))
	}
	return t, nil
}

// Emits lists, in canonical order, the labels the model can produce. A binary
// sentiment model never yields neutral.
func (t *Transformer) Emits() []models.SentimentLabel {
	return append([]models.SentimentLabel(nil), t.emits...)
}

// OpenTransformer creates an ORT session and a text classification pipeline
// over the exported model in modelDir.
func OpenTransformer(modelDir string, labels LabelMap) (*Transformer, error) {
	native, err := readModelLabels(modelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize hugot session: %v", models.ErrModelUnavailable, err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: modelDir,
		Name:      "sentimentClassificationPipeline",
	})
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("%w: failed to initialize classification pipeline: %v", models.ErrModelUnavailable, err)
	}

	t, err := NewTransformer(pipeline, labels, native)
	if err != nil {
		session.Destroy()
		return nil, err
	}
	t.session = session
	return t, nil
}

func (t *Transformer) Info() models.ModelInfo {
	return models.ModelInfo{
		ID:              TransformerID,
		Kind:            "contextual_sequence",
		ConfidenceScale: models.ConfidenceProbability,
	}
}

func (t *Transformer) Classify(normalizedText string) (models.SentimentLabel, float64, error) {
	if normalizedText == "" {
		return "", 0, models.ErrEmptyInput
	}

	output, err := t.pipeline.RunPipeline([]string{normalizedText})
	if err != nil {
		return "", 0, fmt.Errorf("[Transformer] inference failed: %w", err)
	}
	if output == nil || len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return "", 0, fmt.Errorf("[Transformer] inference returned no classes")
	}

	best := output.ClassificationOutputs[0][0]
	for _, candidate := range output.ClassificationOutputs[0][1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	label, err := t.labels.Resolve(best.Label)
	if err != nil {
		return "", 0, fmt.Errorf("[Transformer] %w", err)
	}
	return label, clampConfidence(float64(best.Score)), nil
}

func (t *Transformer) Close() error {
	if t.session == nil {
		return nil
	}
	return t.session.Destroy()
}

// readModelLabels returns the id2label values from the model's config.json.
func readModelLabels(modelDir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(modelDir, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}

	var cfg struct {
		ID2Label map[string]string `json:"id2label"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode model config: %v", models.ErrModelUnavailable, err)
	}

	native := make([]string, 0, len(cfg.ID2Label))
	for _, label := range cfg.ID2Label {
		native = append(native, label)
	}
	sort.Strings(native)
	return native, nil
}
