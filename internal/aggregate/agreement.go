package aggregate

import "github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"

// agreement measures how often the models agree, over records that produced
// non-empty normalized text. Empty records are counted but not compared.
func agreement(records []models.AnnotatedRecord, modelIDs []string, primary string,
	labels map[string][]models.SentimentLabel) models.AgreementStats {
	stats := models.AgreementStats{WithPrimary: make(map[string]float64)}

	var unanimous int
	withPrimary := make(map[string]int)
	primaryLabels, hasPrimary := labels[primary]
	for i, r := range records {
		if r.NormalizedText == "" {
			stats.Empty++
			continue
		}
		stats.Analyzable++

		same := true
		for _, id := range modelIDs {
			if labels[id][i] != labels[modelIDs[0]][i] {
				same = false
			}
			if hasPrimary && id != primary && labels[id][i] == primaryLabels[i] {
				withPrimary[id]++
			}
		}
		if same {
			unanimous++
		}
	}

	stats.Unanimous = ratio(unanimous, stats.Analyzable)
	for _, id := range modelIDs {
		if hasPrimary && id != primary {
			stats.WithPrimary[id] = ratio(withPrimary[id], stats.Analyzable)
		}
	}
	return stats
}
