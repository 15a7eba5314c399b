package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/aggregate"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/ensemble"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/insights"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/metrics"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/preprocess"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/report"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/sentiment"
)

// Service runs one analysis end to end: ensemble prediction, then aggregation,
// insight derivation and assembly once every record is predicted.
type Service struct {
	predictor  *ensemble.Predictor
	aggregator *aggregate.Aggregator
	generator  *insights.Generator
	assembler  *report.Assembler
	metrics    *metrics.Metrics
	timeout    time.Duration
}

// NewService wires the pipeline stages. m may be nil; timeout <= 0 disables
// the per-analysis deadline.
func NewService(predictor *ensemble.Predictor, generator *insights.Generator, assembler *report.Assembler,
	m *metrics.Metrics, timeout time.Duration) *Service {
	return &Service{
		predictor:  predictor,
		aggregator: aggregate.NewAggregator(predictor.ModelIDs(), predictor.Primary()),
		generator:  generator,
		assembler:  assembler,
		metrics:    m,
		timeout:    timeout,
	}
}

// Build constructs a Service over loaded classifiers from settings.
func Build(settings *config.Settings, classifiers []sentiment.Classifier, m *metrics.Metrics) (*Service, error) {
	normalizer := preprocess.New(preprocess.Config{
		Language:       settings.Preprocess.Language,
		ExtraStopWords: settings.Preprocess.ExtraStopWords,
		MinTokenLength: settings.Preprocess.MinTokenLength,
	})

	predictor, err := ensemble.NewPredictor(normalizer, classifiers, settings.Models.Primary, settings.Analysis.Workers)
	if err != nil {
		return nil, err
	}

	generator, err := insights.NewGenerator(insights.Config{
		Primary:            settings.Models.Primary,
		Priority:           settings.Models.EnabledPriority(),
		ImbalanceThreshold: settings.Analysis.ImbalanceThreshold,
		SampleSize:         settings.Analysis.SampleSize,
	}, predictor.ModelIDs())
	if err != nil {
		return nil, err
	}

	assembler := report.NewAssembler(report.Requirements{Evaluation: settings.Analysis.RequireEvaluation})
	svc := NewService(predictor, generator, assembler, m, settings.Analysis.Timeout)
	svc.aggregator.WithTopTerms(settings.Analysis.TopTerms)
	return svc, nil
}

// Analyze returns a complete result or an error, never a partial result.
func (s *Service) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, annotated, err := s.run(ctx, req)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveFailure(time.Since(start))
		}
		slog.Error("[AnalysisService] Analysis failed",
			slog.String("request_id", req.RequestID),
			slog.String("query", req.Query),
			slog.Int("records", len(req.Records)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveSuccess(time.Since(start), annotated)
	}
	slog.Info("[AnalysisService] Analysis complete",
		slog.String("analysis_id", result.ID),
		slog.String("query", req.Query),
		slog.Int("records", result.TotalRecords),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (s *Service) run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, []models.AnnotatedRecord, error) {
	records := append([]models.TextRecord(nil), req.Records...)
	if err := models.AssignRecordIDs(records); err != nil {
		return nil, nil, err
	}

	annotated, err := s.predictor.PredictBatch(ctx, records)
	if err != nil {
		return nil, nil, fmt.Errorf("[AnalysisService] prediction failed: %w", err)
	}

	aggs, err := s.aggregator.Aggregate(annotated)
	if err != nil {
		return nil, nil, err
	}

	derived := s.generator.Derive(insights.Input{
		Models:        s.predictor.ModelIDs(),
		Records:       annotated,
		Distributions: aggs.Distributions,
		Evaluations:   aggs.Evaluations,
		GroundTruth:   aggs.GroundTruth,
	})

	result, err := s.assembler.Assemble(report.Input{
		Query:      req.Query,
		Models:     s.predictor.Infos(),
		Primary:    s.predictor.Primary(),
		Records:    annotated,
		Aggregates: aggs,
		Insights:   derived,
	})
	if err != nil {
		return nil, nil, err
	}
	return result, annotated, nil
}
