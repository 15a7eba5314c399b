package preprocess

import (
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
)

var (
	urlPattern      = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.\-]*://\S+|\bwww\.\S+`)
	mentionPattern  = regexp.MustCompile(`@\w+`)
	hashtagPattern  = regexp.MustCompile(`#(\w+)`)
	nonAlphaPattern = regexp.MustCompile(`[^a-zA-Z\s]+`)
)

type Config struct {
	// Language is the bbalet/stopwords language code.
	Language string
	// ExtraStopWords are dropped in addition to the language list.
	ExtraStopWords []string
	// MinTokenLength drops shorter tokens. Zero keeps every non-empty token.
	MinTokenLength int
}

// Normalizer turns raw post text into the space-joined lemma sequence every
// classifier scores. Normalize is pure and idempotent.
type Normalizer struct {
	language  string
	extra     map[string]struct{}
	minLength int
}

func New(cfg Config) *Normalizer {
	language := cfg.Language
	if language == "" {
		language = "en"
	}

	extra := make(map[string]struct{}, len(cfg.ExtraStopWords))
	for _, w := range cfg.ExtraStopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			extra[w] = struct{}{}
		}
	}

	return &Normalizer{
		language:  language,
		extra:     extra,
		minLength: cfg.MinTokenLength,
	}
}

func Default() *Normalizer {
	return New(Config{})
}

func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = StripLinks(text)
	text = mentionPattern.ReplaceAllString(text, " ")
	text = hashtagPattern.ReplaceAllString(text, "$1")
	text = nonAlphaPattern.ReplaceAllString(text, "")
	text = strings.ToLower(text)

	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if n.dropped(token) {
			continue
		}
		lemma := Lemmatize(token)
		if n.dropped(lemma) {
			continue
		}
		kept = append(kept, lemma)
	}

	return strings.Join(kept, " ")
}

// StripLinks removes URLs of any scheme and bare www hosts up to the next whitespace.
func StripLinks(text string) string {
	return urlPattern.ReplaceAllString(text, " ")
}

func (n *Normalizer) dropped(token string) bool {
	if token == "" || len(token) < n.minLength {
		return true
	}
	if _, ok := n.extra[token]; ok {
		return true
	}
	return n.IsStopWord(token)
}

func (n *Normalizer) IsStopWord(token string) bool {
	return strings.TrimSpace(stopwords.CleanString(token, n.language, false)) == ""
}
