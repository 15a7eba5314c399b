package sentiment

import (
	"fmt"
	"math"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NaiveBayesSpec is the exported state of a fitted multinomial Naive Bayes model.
type NaiveBayesSpec struct {
	Classes        []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// NaiveBayes is a probabilistic bag-of-words classifier over TF-IDF features.
// Confidence is the posterior probability of the winning class.
type NaiveBayes struct {
	vectorizer     *TFIDFVectorizer
	classes        []models.SentimentLabel
	classLogPrior  *mat.VecDense
	featureLogProb *mat.Dense
}

func NewNaiveBayes(vectorizer *TFIDFVectorizer, spec NaiveBayesSpec, labels LabelMap) (*NaiveBayes, error) {
	k := len(spec.Classes)
	if k < 2 {
		return nil, fmt.Errorf("%w: naive bayes needs at least 2 classes, got %d", models.ErrModelUnavailable, k)
	}
	if len(spec.ClassLogPrior) != k || len(spec.FeatureLogProb) != k {
		return nil, fmt.Errorf("%w: naive bayes parameters do not match %d classes", models.ErrModelUnavailable, k)
	}
	if err := labels.Validate(spec.Classes); err != nil {
		return nil, fmt.Errorf("[NaiveBayes] %w", err)
	}

	features := vectorizer.Features()
	weights := mat.NewDense(k, features, nil)
	for i, row := range spec.FeatureLogProb {
		if len(row) != features {
			return nil, fmt.Errorf("%w: naive bayes class %q has %d features, vectorizer has %d",
				models.ErrModelUnavailable, spec.Classes[i], len(row), features)
		}
		weights.SetRow(i, row)
	}

	classes := make([]models.SentimentLabel, k)
	for i, native := range spec.Classes {
		classes[i], _ = labels.Resolve(native)
	}

	return &NaiveBayes{
		vectorizer:     vectorizer,
		classes:        classes,
		classLogPrior:  mat.NewVecDense(k, append([]float64(nil), spec.ClassLogPrior...)),
		featureLogProb: weights,
	}, nil
}

func LoadNaiveBayes(path string, vectorizer *TFIDFVectorizer, labels LabelMap) (*NaiveBayes, error) {
	var spec NaiveBayesSpec
	if err := readJSONModel(path, &spec); err != nil {
		return nil, err
	}
	return NewNaiveBayes(vectorizer, spec, labels)
}

func (nb *NaiveBayes) Info() models.ModelInfo {
	return models.ModelInfo{
		ID:              NaiveBayesID,
		Kind:            "probabilistic_bag_of_words",
		ConfidenceScale: models.ConfidenceProbability,
	}
}

func (nb *NaiveBayes) Classify(normalizedText string) (models.SentimentLabel, float64, error) {
	if normalizedText == "" {
		return "", 0, models.ErrEmptyInput
	}

	x := nb.vectorizer.Transform(normalizedText)

	var jll mat.VecDense
	jll.MulVec(nb.featureLogProb, x)
	jll.AddVec(&jll, nb.classLogPrior)

	scores := jll.RawVector().Data
	best := floats.MaxIdx(scores)
	posterior := math.Exp(scores[best] - floats.LogSumExp(scores))

	return nb.classes[best], clampConfidence(posterior), nil
}
