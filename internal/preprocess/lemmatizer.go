package preprocess

import "strings"

var irregularLemmas = map[string]string{
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"people":   "person",
	"mice":     "mouse",
	"feet":     "foot",
	"teeth":    "tooth",
	"geese":    "goose",
	"wolves":   "wolf",
	"knives":   "knife",
	"wives":    "wife",
	"lives":    "life",
	"leaves":   "leaf",
	"halves":   "half",
	"shelves":  "shelf",
	"thieves":  "thief",
	"buses":    "bus",
	"goes":     "go",
	"ran":      "run",
	"went":     "go",
	"movies":   "movie",
	"cookies":  "cookie",
	"ties":     "tie",
	"lies":     "lie",
	"pies":     "pie",
	"selfies":  "selfie",
	"zombies":  "zombie",
	"hoodies":  "hoodie",
	"rookies":  "rookie",
	"brownies": "brownie",
	"goodies":  "goodie",
	"calories": "calorie",
}

// Words ending in s that are not plurals.
var singularS = map[string]struct{}{
	"always": {}, "perhaps": {}, "news": {}, "series": {}, "species": {},
	"yes": {}, "thus": {}, "plus": {}, "lens": {}, "gas": {}, "bias": {},
	"alias": {}, "atlas": {}, "canvas": {}, "christmas": {}, "texas": {},
	"chaos": {}, "physics": {}, "economics": {}, "politics": {},
	"mathematics": {}, "ethics": {}, "sometimes": {}, "whereas": {},
	"besides": {}, "towards": {}, "afterwards": {}, "nevertheless": {},
}

// Lemmatize reduces an inflected noun to its base form. A returned lemma is
// always a fixed point: Lemmatize(Lemmatize(w)) == Lemmatize(w).
func Lemmatize(word string) string {
	if lemma, ok := irregularLemmas[word]; ok {
		return lemma
	}

	candidate := applySuffixRules(word)
	if candidate == word || len(candidate) < 3 {
		return word
	}
	if _, ok := irregularLemmas[candidate]; ok {
		return word
	}
	if applySuffixRules(candidate) != candidate {
		return word
	}
	return candidate
}

func applySuffixRules(word string) string {
	if len(word) <= 3 {
		return word
	}
	if _, ok := singularS[word]; ok {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"),
		strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}
