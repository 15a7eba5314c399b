package sentiment

import (
	"fmt"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LinearSVMSpec is the exported state of a fitted linear SVM. Binary models
// carry a single coefficient row; a positive margin selects Classes[1].
type LinearSVMSpec struct {
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// LinearSVM is a margin-based bag-of-words classifier. It produces a discrete
// decision, so confidence is always 1.0.
type LinearSVM struct {
	vectorizer *TFIDFVectorizer
	classes    []models.SentimentLabel
	coef       *mat.Dense
	intercept  *mat.VecDense
	binary     bool
}

func NewLinearSVM(vectorizer *TFIDFVectorizer, spec LinearSVMSpec, labels LabelMap) (*LinearSVM, error) {
	k := len(spec.Classes)
	if k < 2 {
		return nil, fmt.Errorf("%w: linear svm needs at least 2 classes, got %d", models.ErrModelUnavailable, k)
	}

	rows := k
	if k == 2 {
		rows = 1
	}
	if len(spec.Coef) != rows || len(spec.Intercept) != rows {
		return nil, fmt.Errorf("%w: linear svm expects %d coefficient rows for %d classes",
			models.ErrModelUnavailable, rows, k)
	}
	if err := labels.Validate(spec.Classes); err != nil {
		return nil, fmt.Errorf("[LinearSVM] %w", err)
	}

	features := vectorizer.Features()
	coef := mat.NewDense(rows, features, nil)
	for i, row := range spec.Coef {
		if len(row) != features {
			return nil, fmt.Errorf("%w: linear svm row %d has %d features, vectorizer has %d",
				models.ErrModelUnavailable, i, len(row), features)
		}
		coef.SetRow(i, row)
	}

	classes := make([]models.SentimentLabel, k)
	for i, native := range spec.Classes {
		classes[i], _ = labels.Resolve(native)
	}

	return &LinearSVM{
		vectorizer: vectorizer,
		classes:    classes,
		coef:       coef,
		intercept:  mat.NewVecDense(rows, append([]float64(nil), spec.Intercept...)),
		binary:     k == 2,
	}, nil
}

func LoadLinearSVM(path string, vectorizer *TFIDFVectorizer, labels LabelMap) (*LinearSVM, error) {
	var spec LinearSVMSpec
	if err := readJSONModel(path, &spec); err != nil {
		return nil, err
	}
	return NewLinearSVM(vectorizer, spec, labels)
}

func (s *LinearSVM) Info() models.ModelInfo {
	return models.ModelInfo{
		ID:              LinearSVMID,
		Kind:            "margin_bag_of_words",
		ConfidenceScale: models.ConfidenceFixed,
	}
}

func (s *LinearSVM) Classify(normalizedText string) (models.SentimentLabel, float64, error) {
	if normalizedText == "" {
		return "", 0, models.ErrEmptyInput
	}

	x := s.vectorizer.Transform(normalizedText)

	var margins mat.VecDense
	margins.MulVec(s.coef, x)
	margins.AddVec(&margins, s.intercept)

	if s.binary {
		if margins.AtVec(0) > 0 {
			return s.classes[1], 1.0, nil
		}
		return s.classes[0], 1.0, nil
	}

	return s.classes[floats.MaxIdx(margins.RawVector().Data)], 1.0, nil
}
