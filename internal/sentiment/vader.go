package sentiment

import (
	"fmt"
	"math"

	"github.com/jonreiter/govader"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

// Vader scores text with the VADER lexicon. Compound scores at or beyond the
// thresholds map to positive or negative; confidence is abs(compound).
type Vader struct {
	analyzer          *govader.SentimentIntensityAnalyzer
	positiveThreshold float64
	negativeThreshold float64
}

func NewVader(positiveThreshold, negativeThreshold float64) (*Vader, error) {
	if negativeThreshold < -1 || positiveThreshold > 1 || negativeThreshold >= positiveThreshold {
		return nil, fmt.Errorf("%w: vader thresholds %v/%v", models.ErrConfiguration,
			negativeThreshold, positiveThreshold)
	}
	return &Vader{
		analyzer:          govader.NewSentimentIntensityAnalyzer(),
		positiveThreshold: positiveThreshold,
		negativeThreshold: negativeThreshold,
	}, nil
}

func (v *Vader) Info() models.ModelInfo {
	return models.ModelInfo{
		ID:              VaderID,
		Kind:            "lexicon",
		ConfidenceScale: models.ConfidenceLexicon,
	}
}

func (v *Vader) Classify(normalizedText string) (models.SentimentLabel, float64, error) {
	if normalizedText == "" {
		return "", 0, models.ErrEmptyInput
	}

	score := v.analyzer.PolarityScores(normalizedText).Compound

	var label models.SentimentLabel
	switch {
	case score >= v.positiveThreshold:
		label = models.Positive
	case score <= v.negativeThreshold:
		label = models.Negative
	default:
		label = models.Neutral
	}

	return label, clampConfidence(math.Abs(score)), nil
}
