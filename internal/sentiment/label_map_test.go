package sentiment

import (
	"testing"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabelMap(t *testing.T) {
	m, err := NewLabelMap(map[string]string{"LABEL_0": "Negative", "4": "positive"})
	require.NoError(t, err)

	label, err := m.Resolve("label_0")
	require.NoError(t, err)
	assert.Equal(t, models.Negative, label)

	label, err = m.Resolve("4")
	require.NoError(t, err)
	assert.Equal(t, models.Positive, label)

	_, err = m.Resolve("2")
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestNewLabelMapRejectsUnknownCanonical(t *testing.T) {
	_, err := NewLabelMap(map[string]string{"0": "mixed"})
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestLabelMapValidate(t *testing.T) {
	binary, err := NewLabelMap(map[string]string{"0": "negative", "4": "positive"})
	require.NoError(t, err)

	assert.NoError(t, binary.Validate([]string{"0", "4"}))

	err = binary.Validate([]string{"0", "2", "4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.Contains(t, err.Error(), "2")
}

func TestIdentityLabelMap(t *testing.T) {
	m := IdentityLabelMap()
	assert.NoError(t, m.Validate([]string{"positive", "NEGATIVE", "Neutral"}))
}
