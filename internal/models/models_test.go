package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    SentimentLabel
		wantErr bool
	}{
		{in: "positive", want: Positive},
		{in: " Negative ", want: Negative},
		{in: "NEUTRAL", want: Neutral},
		{in: "mixed", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelIndexFollowsCanonicalOrder(t *testing.T) {
	assert.Equal(t, 0, Positive.Index())
	assert.Equal(t, 1, Negative.Index())
	assert.Equal(t, 2, Neutral.Index())
	assert.Equal(t, -1, SentimentLabel("mixed").Index())
}

func TestConfusionMatrixSums(t *testing.T) {
	m := NewConfusionMatrix()
	assert.True(t, m.Add(Positive, Positive))
	assert.True(t, m.Add(Positive, Negative))
	assert.True(t, m.Add(Neutral, Neutral))
	assert.False(t, m.Add("", Positive))

	assert.Equal(t, 3, m.Total())
	assert.Equal(t, 2, m.Trace())
	assert.Equal(t, 2, m.RowSum(0))
	assert.Equal(t, 1, m.ColSum(1))
	assert.Equal(t, [3]SentimentLabel{Positive, Negative, Neutral}, m.Labels)
}

func TestNewLabelShare(t *testing.T) {
	share := NewLabelShare(Positive, 2, 3)
	assert.InDelta(t, 66.6666666, share.Percentage, 1e-6)
	assert.Equal(t, 66.7, share.DisplayPercentage)

	empty := NewLabelShare(Neutral, 0, 0)
	assert.Zero(t, empty.Percentage)
	assert.Zero(t, empty.DisplayPercentage)
}

func TestUnavailableEvaluationOmitsMatrix(t *testing.T) {
	data, err := json.Marshal(ModelEvaluation{Model: "svm", Reason: ReasonMissingGroundTruth})
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"svm","available":false,"reason":"missing_ground_truth"}`, string(data))
}

func TestSentimentLabelUnmarshalJSON(t *testing.T) {
	var record TextRecord
	require.NoError(t, json.Unmarshal([]byte(`{"text":"ok","ground_truth":"Positive"}`), &record))
	assert.Equal(t, Positive, record.GroundTruth)
	assert.True(t, record.HasGroundTruth())

	record = TextRecord{}
	require.NoError(t, json.Unmarshal([]byte(`{"text":"ok","ground_truth":""}`), &record))
	assert.False(t, record.HasGroundTruth())

	err := json.Unmarshal([]byte(`{"text":"ok","ground_truth":"mixed"}`), &record)
	assert.ErrorContains(t, err, `unknown sentiment label "mixed"`)
}

func TestAssignRecordIDs(t *testing.T) {
	records := []TextRecord{{Text: "a"}, {ID: "x", Text: "b"}, {Text: "c"}}
	require.NoError(t, AssignRecordIDs(records))
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "x", records[1].ID)
	assert.Equal(t, "3", records[2].ID)

	clash := []TextRecord{{ID: "2", Text: "a"}, {Text: "b"}}
	err := AssignRecordIDs(clash)
	assert.ErrorIs(t, err, ErrInvalidRecords)
}
