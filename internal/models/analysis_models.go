package models

import "time"

type ConfidenceScale string

const (
	ConfidenceProbability ConfidenceScale = "probability"
	ConfidenceFixed       ConfidenceScale = "fixed"
	ConfidenceLexicon     ConfidenceScale = "lexicon_compound"
)

type ModelInfo struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	ConfidenceScale ConfidenceScale `json:"confidence_scale"`
}

type FlagKind string

const (
	FlagClassImbalance        FlagKind = "class_imbalance"
	FlagEvaluationUnavailable FlagKind = "evaluation_unavailable"
)

type Flag struct {
	Kind   FlagKind `json:"kind"`
	Model  string   `json:"model,omitempty"`
	Value  float64  `json:"value,omitempty"`
	Detail string   `json:"detail"`
}

type SentimentBalance struct {
	Model    string  `json:"model"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

type BestModel struct {
	Model      string  `json:"model"`
	Accuracy   float64 `json:"accuracy"`
	WeightedF1 float64 `json:"weighted_f1"`
	// DecidedBy is "accuracy", "weighted_f1" or "priority".
	DecidedBy string `json:"decided_by"`
}

type RecordSample struct {
	Text   string                    `json:"text"`
	Labels map[string]SentimentLabel `json:"labels"`
}

type Insights struct {
	DominantSentiment map[string]SentimentLabel `json:"dominant_sentiment"`
	Balance           *SentimentBalance         `json:"sentiment_balance,omitempty"`
	BestModel         *BestModel                `json:"best_model,omitempty"`
	Flags             []Flag                    `json:"flags"`
	Samples           []RecordSample            `json:"samples"`
	Findings          []string                  `json:"findings"`
}

// Omission names a result section that was not computed. Required marks
// sections the caller asked for.
type Omission struct {
	Section  string `json:"section"`
	Reason   string `json:"reason"`
	Required bool   `json:"required"`
}

type AnalysisResult struct {
	ID            string                           `json:"analysis_id"`
	Query         string                           `json:"query"`
	CreatedAt     time.Time                        `json:"created_at"`
	Models        []ModelInfo                      `json:"models"`
	PrimaryModel  string                           `json:"primary_model"`
	TotalRecords  int                              `json:"total_records"`
	Records       []AnnotatedRecord                `json:"records"`
	Distributions map[string]SentimentDistribution `json:"distributions"`
	Evaluations   map[string]ModelEvaluation       `json:"evaluations"`
	GroundTruth   GroundTruthCoverage              `json:"ground_truth"`
	Agreement     AgreementStats                   `json:"agreement"`
	Timeline      SentimentTimeline                `json:"timeline"`
	TopTerms      []LabelTerms                     `json:"top_terms"`
	Insights      Insights                         `json:"insights"`
	Omissions     []Omission                       `json:"omissions,omitempty"`
}

// AnalysisFailure is published in place of a result when an analysis aborts.
type AnalysisFailure struct {
	RequestID string    `json:"request_id"`
	Query     string    `json:"query"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}

const (
	ResponseCompleted = "completed"
	ResponseFailed    = "failed"
)

// AnalysisResponse answers one AnalysisRequest. Exactly one of Result and
// Failure is set, matching Status.
type AnalysisResponse struct {
	RequestID string           `json:"request_id"`
	Status    string           `json:"status"`
	Result    *AnalysisResult  `json:"result,omitempty"`
	Failure   *AnalysisFailure `json:"failure,omitempty"`
}

// DailySentiment counts primary labels for one UTC calendar day.
type DailySentiment struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
	Total    int    `json:"total"`
}

// SentimentTimeline is the primary model's label series over record
// timestamps. Undated counts records that carry no timestamp.
type SentimentTimeline struct {
	Days    []DailySentiment `json:"days"`
	Undated int              `json:"undated"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// LabelTerms lists the most frequent normalized terms among records the
// primary model assigned Label.
type LabelTerms struct {
	Label SentimentLabel `json:"label"`
	Terms []TermCount    `json:"terms"`
}
