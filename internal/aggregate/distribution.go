package aggregate

import "github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"

// Distribution counts labels against the full batch size. An empty batch
// yields a distribution with no buckets.
func Distribution(model string, labels []models.SentimentLabel) models.SentimentDistribution {
	dist := models.SentimentDistribution{
		Model:   model,
		Total:   len(labels),
		Buckets: []models.LabelShare{},
	}
	if len(labels) == 0 {
		return dist
	}

	var counts [len(models.Labels)]int
	for _, l := range labels {
		if i := l.Index(); i >= 0 {
			counts[i]++
		}
	}

	for i, label := range models.Labels {
		dist.Buckets = append(dist.Buckets, models.NewLabelShare(label, counts[i], len(labels)))
	}
	return dist
}

// Dominant returns the most frequent label, breaking ties by canonical label
// order. ok is false for an empty distribution.
func Dominant(dist models.SentimentDistribution) (models.SentimentLabel, bool) {
	if dist.Total == 0 || len(dist.Buckets) == 0 {
		return "", false
	}

	best := dist.Buckets[0]
	for _, b := range dist.Buckets[1:] {
		if b.Count > best.Count || (b.Count == best.Count && b.Label.Index() < best.Label.Index()) {
			best = b
		}
	}
	return best.Label, true
}
