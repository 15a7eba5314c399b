package sentiment

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var testVocabulary = map[string]int{"good": 0, "great": 1, "bad": 2, "awful": 3, "okay": 4}

func testVectorizerSpec() VectorizerSpec {
	return VectorizerSpec{
		Vocabulary: testVocabulary,
		IDF:        []float64{1, 1, 1, 1, 1},
		NgramRange: [2]int{1, 1},
		Norm:       "l2",
	}
}

func testVectorizer(t *testing.T) *TFIDFVectorizer {
	t.Helper()
	v, err := NewVectorizer(testVectorizerSpec())
	require.NoError(t, err)
	return v
}

func logs(ps ...float64) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = math.Log(p)
	}
	return out
}

func testNaiveBayesSpec() NaiveBayesSpec {
	third := math.Log(1.0 / 3)
	return NaiveBayesSpec{
		Classes:       []string{"negative", "neutral", "positive"},
		ClassLogPrior: []float64{third, third, third},
		FeatureLogProb: [][]float64{
			logs(0.05, 0.05, 0.4, 0.4, 0.1),
			logs(0.1, 0.1, 0.1, 0.1, 0.6),
			logs(0.4, 0.4, 0.05, 0.05, 0.1),
		},
	}
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
