package aggregate

import "github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"

// ComputeMetrics derives accuracy and per-class, macro and support-weighted
// precision/recall/F1 from a confusion matrix. Zero denominators yield zero.
func ComputeMetrics(m *models.ConfusionMatrix) models.ModelMetrics {
	total := m.Total()
	metrics := models.ModelMetrics{
		Support:  total,
		Accuracy: ratio(m.Trace(), total),
		PerClass: make([]models.ClassMetrics, 0, len(models.Labels)),
	}

	var macro, weighted models.AveragedMetrics
	for i, label := range models.Labels {
		tp := m.Counts[i][i]
		support := m.RowSum(i)
		predicted := m.ColSum(i)

		class := models.ClassMetrics{
			Label:     label,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
			Predicted: predicted,
		}
		class.F1Score = harmonicMean(class.Precision, class.Recall)
		metrics.PerClass = append(metrics.PerClass, class)

		macro.Precision += class.Precision
		macro.Recall += class.Recall
		macro.F1Score += class.F1Score

		w := float64(support)
		weighted.Precision += w * class.Precision
		weighted.Recall += w * class.Recall
		weighted.F1Score += w * class.F1Score
	}

	n := float64(len(models.Labels))
	metrics.Macro = models.AveragedMetrics{
		Precision: macro.Precision / n,
		Recall:    macro.Recall / n,
		F1Score:   macro.F1Score / n,
	}
	if total > 0 {
		metrics.Weighted = models.AveragedMetrics{
			Precision: weighted.Precision / float64(total),
			Recall:    weighted.Recall / float64(total),
			F1Score:   weighted.F1Score / float64(total),
		}
	}

	metrics.Precision = metrics.Weighted.Precision
	metrics.Recall = metrics.Weighted.Recall
	metrics.F1Score = metrics.Weighted.F1Score
	return metrics
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}
