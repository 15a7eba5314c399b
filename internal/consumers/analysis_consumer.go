package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/clients/kafka_client"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, value any) error
}

type ResultStore interface {
	Save(ctx context.Context, result *models.AnalysisResult) error
}

// RequestTracker de-duplicates redelivered requests and caches results.
type RequestTracker interface {
	IsProcessed(ctx context.Context, requestID string) bool
	MarkProcessed(ctx context.Context, requestID string) error
	CacheResult(ctx context.Context, analysisID string, payload []byte) error
}

// AnalysisConsumer answers each request message with exactly one response on
// the result topic. Store and Tracker are optional.
type AnalysisConsumer struct {
	Analyzer    Analyzer
	Publisher   Publisher
	Store       ResultStore
	Tracker     RequestTracker
	ResultTopic string
}

// Handle processes one message. A nil error means the offset may be
// committed; an error means the response could not be published.
func (c *AnalysisConsumer) Handle(ctx context.Context, msg *kafka.Message) error {
	var req models.AnalysisRequest
	decodeErr := json.Unmarshal(msg.Value, &req)
	if req.RequestID == "" {
		req.RequestID = string(msg.Key)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if decodeErr != nil {
		slog.Warn("[AnalysisConsumer] Failed to decode request",
			slog.String("request_id", req.RequestID),
			slog.String("error", decodeErr.Error()))
		return c.publishFailure(ctx, req, fmt.Errorf("invalid request: %w", decodeErr))
	}

	if c.Tracker != nil && c.Tracker.IsProcessed(ctx, req.RequestID) {
		slog.Info("[AnalysisConsumer] Skipping request already answered",
			slog.String("request_id", req.RequestID))
		return nil
	}

	if err := models.AssignRecordIDs(req.Records); err != nil {
		slog.Warn("[AnalysisConsumer] Rejecting request",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
		return c.publishFailure(ctx, req, err)
	}

	result, err := c.Analyzer.Analyze(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return c.publishFailure(ctx, req, err)
	}

	c.persist(ctx, result)

	if err := c.Publisher.PublishJSON(ctx, c.ResultTopic, req.RequestID, models.AnalysisResponse{
		RequestID: req.RequestID,
		Status:    models.ResponseCompleted,
		Result:    result,
	}); err != nil {
		return err
	}

	c.markProcessed(ctx, req.RequestID)
	return nil
}

func (c *AnalysisConsumer) persist(ctx context.Context, result *models.AnalysisResult) {
	if c.Store != nil {
		if err := c.Store.Save(ctx, result); err != nil {
			slog.Error("[AnalysisConsumer] Failed to store analysis",
				slog.String("analysis_id", result.ID),
				slog.String("error", err.Error()))
		}
	}

	if c.Tracker != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			err = c.Tracker.CacheResult(ctx, result.ID, payload)
		}
		if err != nil {
			slog.Warn("[AnalysisConsumer] Failed to cache analysis",
				slog.String("analysis_id", result.ID),
				slog.String("error", err.Error()))
		}
	}
}

func (c *AnalysisConsumer) publishFailure(ctx context.Context, req models.AnalysisRequest, cause error) error {
	failure := &models.AnalysisFailure{
		RequestID: req.RequestID,
		Query:     req.Query,
		Error:     cause.Error(),
		FailedAt:  time.Now().UTC(),
	}

	if err := c.Publisher.PublishJSON(ctx, c.ResultTopic, req.RequestID, models.AnalysisResponse{
		RequestID: req.RequestID,
		Status:    models.ResponseFailed,
		Failure:   failure,
	}); err != nil {
		return err
	}

	c.markProcessed(ctx, req.RequestID)
	return nil
}

func (c *AnalysisConsumer) markProcessed(ctx context.Context, requestID string) {
	if c.Tracker == nil {
		return
	}
	if err := c.Tracker.MarkProcessed(ctx, requestID); err != nil {
		slog.Warn("[AnalysisConsumer] Failed to mark request processed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
	}
}

// Run consumes requests until ctx is done. Offsets are committed only after a
// response was published.
func (c *AnalysisConsumer) Run(ctx context.Context, consumer *kafka.Consumer) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	slog.Info("[AnalysisConsumer] Listening for analysis requests...")

	for {
		msg, err := iterator.Next()
		if ctx.Err() != nil {
			slog.Warn("[AnalysisConsumer] Stopping consumer...")
			return
		}
		if err != nil {
			slog.Error("[AnalysisConsumer] Kafka Consumer Error", slog.String("error", err.Error()))
			time.Sleep(kafka_client.RETRY_DELAY)
			continue
		}

		if err := c.Handle(ctx, msg); err != nil {
			slog.Error("[AnalysisConsumer] Failed to answer request, leaving offset uncommitted",
				slog.String("partition", fmt.Sprintf("%d", msg.TopicPartition.Partition)),
				slog.String("offset", msg.TopicPartition.Offset.String()),
				slog.String("error", err.Error()))
			continue
		}

		if err := committer.Commit(msg); err != nil {
			slog.Warn("[AnalysisConsumer] Failed to commit offset", slog.String("error", err.Error()))
		}
	}
}
