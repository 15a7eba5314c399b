package sentiment

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"gonum.org/v1/gonum/mat"
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// VectorizerSpec is the exported state of a fitted TF-IDF vectorizer.
type VectorizerSpec struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramRange  [2]int         `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
}

// TFIDFVectorizer maps normalized text onto the feature space shared by the
// bag-of-words classifiers.
type TFIDFVectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	minN, maxN  int
	sublinearTF bool
	l2          bool
}

func NewVectorizer(spec VectorizerSpec) (*TFIDFVectorizer, error) {
	if len(spec.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: vectorizer has an empty vocabulary", models.ErrModelUnavailable)
	}
	if len(spec.IDF) != len(spec.Vocabulary) {
		return nil, fmt.Errorf("%w: vectorizer has %d idf weights for %d terms",
			models.ErrModelUnavailable, len(spec.IDF), len(spec.Vocabulary))
	}
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= len(spec.IDF) {
			return nil, fmt.Errorf("%w: vectorizer term %q has index %d out of range",
				models.ErrModelUnavailable, term, idx)
		}
	}

	minN, maxN := spec.NgramRange[0], spec.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("%w: invalid ngram range %v", models.ErrModelUnavailable, spec.NgramRange)
	}

	var l2 bool
	switch spec.Norm {
	case "l2", "":
		l2 = true
	case "none":
	default:
		return nil, fmt.Errorf("%w: unsupported norm %q", models.ErrModelUnavailable, spec.Norm)
	}

	return &TFIDFVectorizer{
		vocabulary:  spec.Vocabulary,
		idf:         spec.IDF,
		minN:        minN,
		maxN:        maxN,
		sublinearTF: spec.SublinearTF,
		l2:          l2,
	}, nil
}

func LoadVectorizer(path string) (*TFIDFVectorizer, error) {
	var spec VectorizerSpec
	if err := readJSONModel(path, &spec); err != nil {
		return nil, err
	}
	return NewVectorizer(spec)
}

func (v *TFIDFVectorizer) Features() int {
	return len(v.idf)
}

// Transform returns the TF-IDF vector of text. Terms outside the vocabulary
// are ignored, so the result may be all zeros.
func (v *TFIDFVectorizer) Transform(text string) *mat.VecDense {
	vec := mat.NewVecDense(v.Features(), nil)

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	counts := make(map[int]float64)
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if idx, ok := v.vocabulary[strings.Join(tokens[i:i+n], " ")]; ok {
				counts[idx]++
			}
		}
	}

	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec.SetVec(idx, tf*v.idf[idx])
	}

	if v.l2 {
		if norm := mat.Norm(vec, 2); norm > 0 {
			vec.ScaleVec(1/norm, vec)
		}
	}
	return vec
}

func readJSONModel(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", models.ErrModelUnavailable, path, err)
	}
	return nil
}
