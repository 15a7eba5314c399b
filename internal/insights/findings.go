package insights

import (
	"fmt"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

// findings renders the insights as fixed-format sentences for report consumers.
func findings(in Input, insights models.Insights) []string {
	lines := []string{
		fmt.Sprintf("Analyzed %d records with %d models.", len(in.Records), len(in.Models)),
	}

	if balance := insights.Balance; balance != nil {
		if label, ok := insights.DominantSentiment[balance.Model]; ok {
			share, _ := in.Distributions[balance.Model].Share(label)
			lines = append(lines, fmt.Sprintf("Dominant sentiment (%s): %s (%.1f%%).",
				balance.Model, label, share.DisplayPercentage))
		}
		lines = append(lines, fmt.Sprintf("Sentiment balance (%s): %.1f%% positive, %.1f%% negative, %.1f%% neutral.",
			balance.Model, balance.Positive, balance.Negative, balance.Neutral))
	}

	for _, id := range in.Models {
		label, ok := insights.DominantSentiment[id]
		if !ok || insights.Balance == nil || id == insights.Balance.Model {
			continue
		}
		if label != insights.DominantSentiment[insights.Balance.Model] {
			lines = append(lines, fmt.Sprintf("Model %s disagrees on the dominant sentiment: %s.", id, label))
		}
	}

	if best := insights.BestModel; best != nil {
		lines = append(lines, fmt.Sprintf("Best performing model: %s (accuracy %.3f, weighted F1 %.3f, decided by %s).",
			best.Model, best.Accuracy, best.WeightedF1, best.DecidedBy))
	}

	for _, flag := range insights.Flags {
		if flag.Model != "" {
			lines = append(lines, fmt.Sprintf("Warning (%s): %s.", flag.Model, flag.Detail))
		} else {
			lines = append(lines, fmt.Sprintf("Note: %s.", flag.Detail))
		}
	}

	return lines
}
