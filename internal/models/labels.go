package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Negative SentimentLabel = "negative"
	Neutral  SentimentLabel = "neutral"
)

// Labels is the canonical label order. Matrix indices, tie-breaks and output
// ordering all follow it.
var Labels = [...]SentimentLabel{Positive, Negative, Neutral}

func (l SentimentLabel) String() string {
	return string(l)
}

// Index returns the position of l in Labels, or -1 for an unknown label.
func (l SentimentLabel) Index() int {
	for i, label := range Labels {
		if label == l {
			return i
		}
	}
	return -1
}

func (l SentimentLabel) Valid() bool {
	return l.Index() >= 0
}

func ParseLabel(s string) (SentimentLabel, error) {
	label := SentimentLabel(strings.ToLower(strings.TrimSpace(s)))
	if !label.Valid() {
		return "", fmt.Errorf("unknown sentiment label %q", s)
	}
	return label, nil
}

// UnmarshalJSON accepts any casing of a canonical label. An empty string
// decodes to the zero label; anything else outside the label set is an error.
func (l *SentimentLabel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*l = ""
		return nil
	}
	label, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = label
	return nil
}
