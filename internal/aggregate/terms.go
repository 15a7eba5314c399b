package aggregate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

const (
	DEFAULT_TOP_TERMS = 20
	MIN_TERM_LENGTH   = 3
)

// TopTerms returns, for every label in canonical order, the n most frequent
// normalized terms of records whose primary label it is. Ties are broken
// alphabetically. Terms shorter than MIN_TERM_LENGTH runes are ignored.
func TopTerms(records []models.AnnotatedRecord, primary []models.SentimentLabel, n int) []models.LabelTerms {
	out := make([]models.LabelTerms, 0, len(models.Labels))
	if n <= 0 {
		return out
	}

	var counts [len(models.Labels)]map[string]int
	for i := range counts {
		counts[i] = make(map[string]int)
	}
	for i, r := range records {
		idx := primary[i].Index()
		if idx < 0 {
			continue
		}
		for _, term := range strings.Fields(r.NormalizedText) {
			if utf8.RuneCountInString(term) < MIN_TERM_LENGTH {
				continue
			}
			counts[idx][term]++
		}
	}

	for i, label := range models.Labels {
		terms := make([]models.TermCount, 0, len(counts[i]))
		for term, c := range counts[i] {
			terms = append(terms, models.TermCount{Term: term, Count: c})
		}
		sort.Slice(terms, func(a, b int) bool {
			if terms[a].Count != terms[b].Count {
				return terms[a].Count > terms[b].Count
			}
			return terms[a].Term < terms[b].Term
		})
		if len(terms) > n {
			terms = terms[:n]
		}
		out = append(out, models.LabelTerms{Label: label, Terms: terms})
	}
	return out
}
