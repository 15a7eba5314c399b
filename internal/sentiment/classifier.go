package sentiment

import "github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"

const (
	NaiveBayesID  = "naive_bayes"
	LinearSVMID   = "linear_svm"
	TransformerID = "transformer"
	VaderID       = "vader"
)

// Classifier scores one normalized text. Implementations are loaded once and
// must be safe for concurrent use. Confidence is in [0, 1]; its scale depends
// on the variant and is reported by Info.
type Classifier interface {
	Info() models.ModelInfo
	Classify(normalizedText string) (models.SentimentLabel, float64, error)
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
