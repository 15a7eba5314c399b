package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/aggregate"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

const (
	SectionConfusionMatrices = "confusion_matrices"
	SectionModelMetrics      = "model_metrics"
	SectionBestModel         = "best_model"
)

type Requirements struct {
	// Evaluation marks confusion matrices and metrics as required sections.
	Evaluation bool
}

type Input struct {
	Query      string
	Models     []models.ModelInfo
	Primary    string
	Records    []models.AnnotatedRecord
	Aggregates *aggregate.Aggregates
	Insights   models.Insights
}

// Assembler merges the outputs of one analysis into an AnalysisResult. It
// performs no computation beyond wiring and omission bookkeeping.
type Assembler struct {
	requirements Requirements
	now          func() time.Time
	newID        func() string
}

func NewAssembler(requirements Requirements) *Assembler {
	return &Assembler{
		requirements: requirements,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// WithClock replaces the time and id sources, for reproducible output.
func (a *Assembler) WithClock(now func() time.Time, newID func() string) *Assembler {
	clone := *a
	clone.now = now
	clone.newID = newID
	return &clone
}

func (a *Assembler) Assemble(in Input) (*models.AnalysisResult, error) {
	if in.Aggregates == nil {
		return nil, fmt.Errorf("[ReportAssembler] %w: aggregates missing", models.ErrIncompleteAggregates)
	}
	if in.Aggregates.BatchSize != len(in.Records) {
		return nil, fmt.Errorf("[ReportAssembler] %w: aggregates cover %d records, batch has %d",
			models.ErrIncompleteAggregates, in.Aggregates.BatchSize, len(in.Records))
	}

	evaluated := true
	for _, info := range in.Models {
		if _, ok := in.Aggregates.Distributions[info.ID]; !ok {
			return nil, fmt.Errorf("[ReportAssembler] %w: no distribution for %s",
				models.ErrIncompleteAggregates, info.ID)
		}
		eval, ok := in.Aggregates.Evaluations[info.ID]
		if !ok {
			return nil, fmt.Errorf("[ReportAssembler] %w: no evaluation entry for %s",
				models.ErrIncompleteAggregates, info.ID)
		}
		if !eval.Available {
			evaluated = false
		}
	}

	result := &models.AnalysisResult{
		ID:            a.newID(),
		Query:         in.Query,
		CreatedAt:     a.now(),
		Models:        in.Models,
		PrimaryModel:  in.Primary,
		TotalRecords:  len(in.Records),
		Records:       in.Records,
		Distributions: in.Aggregates.Distributions,
		Evaluations:   in.Aggregates.Evaluations,
		GroundTruth:   in.Aggregates.GroundTruth,
		Agreement:     in.Aggregates.Agreement,
		Timeline:      in.Aggregates.Timeline,
		TopTerms:      in.Aggregates.TopTerms,
		Insights:      in.Insights,
	}
	if result.Records == nil {
		result.Records = []models.AnnotatedRecord{}
	}

	if !evaluated {
		for _, section := range []string{SectionConfusionMatrices, SectionModelMetrics, SectionBestModel} {
			result.Omissions = append(result.Omissions, models.Omission{
				Section:  section,
				Reason:   models.ReasonMissingGroundTruth,
				Required: a.requirements.Evaluation,
			})
		}
	}

	return result, nil
}
