package sentiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

// LabelMap translates a model's native output labels into canonical labels.
// Keys are matched case-insensitively.
type LabelMap map[string]models.SentimentLabel

func NewLabelMap(raw map[string]string) (LabelMap, error) {
	m := make(LabelMap, len(raw))
	for native, canonical := range raw {
		label, err := models.ParseLabel(canonical)
		if err != nil {
			return nil, fmt.Errorf("%w: label map entry %q: %v", models.ErrConfiguration, native, err)
		}
		m[labelKey(native)] = label
	}
	return m, nil
}

// IdentityLabelMap maps the canonical label names onto themselves.
func IdentityLabelMap() LabelMap {
	m := make(LabelMap, len(models.Labels))
	for _, l := range models.Labels {
		m[l.String()] = l
	}
	return m
}

// Validate fails when any native label the model can emit has no mapping.
func (m LabelMap) Validate(native []string) error {
	var missing []string
	for _, n := range native {
		if _, ok := m[labelKey(n)]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: unmapped native labels %v", models.ErrConfiguration, missing)
	}
	return nil
}

func (m LabelMap) Resolve(native string) (models.SentimentLabel, error) {
	label, ok := m[labelKey(native)]
	if !ok {
		return "", fmt.Errorf("%w: unmapped native label %q", models.ErrConfiguration, native)
	}
	return label, nil
}

func labelKey(native string) string {
	return strings.ToLower(strings.TrimSpace(native))
}

func labelMapOrIdentity(raw map[string]string) (LabelMap, error) {
	if len(raw) == 0 {
		return IdentityLabelMap(), nil
	}
	return NewLabelMap(raw)
}
