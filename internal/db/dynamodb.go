package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

const (
	MAX_BATCH_SIZE      = 25
	MAX_BATCH_RETRIES   = 3
	INITIAL_BATCH_DELAY = 500 * time.Millisecond
)

var ErrAnalysisNotFound = errors.New("analysis not found")

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ResultStore persists analyses: one row per analysis in the results table
// holding the result document without its records, and one row per record in
// the records table. Keeping records out of response_data keeps the analysis
// row under the 400 KB item limit for large batches.
type ResultStore struct {
	client       DynamoDBAPI
	resultsTable string
	recordsTable string
	ttl          time.Duration
	now          func() time.Time
}

// NewResultStore returns a store. A zero ttl writes rows without expires_at.
func NewResultStore(client DynamoDBAPI, resultsTable, recordsTable string, ttl time.Duration) *ResultStore {
	return &ResultStore{
		client:       client,
		resultsTable: resultsTable,
		recordsTable: recordsTable,
		ttl:          ttl,
		now:          time.Now,
	}
}

type analysisItem struct {
	AnalysisID   string `dynamodbav:"analysis_id"`
	Query        string `dynamodbav:"query"`
	CreatedAt    string `dynamodbav:"created_at"`
	TotalRecords int    `dynamodbav:"total_records"`
	PrimaryModel string `dynamodbav:"primary_model"`
	ResponseData string `dynamodbav:"response_data"`
	ExpiresAt    *int64 `dynamodbav:"expires_at,omitempty"`
}

type recordItem struct {
	AnalysisID     string             `dynamodbav:"analysis_id"`
	RecordID       string             `dynamodbav:"record_id"`
	Position       int                `dynamodbav:"position"`
	Text           string             `dynamodbav:"text"`
	NormalizedText string             `dynamodbav:"normalized_text"`
	AuthorID       string             `dynamodbav:"author_id,omitempty"`
	Timestamp      string             `dynamodbav:"timestamp,omitempty"`
	GroundTruth    string             `dynamodbav:"ground_truth,omitempty"`
	PrimaryLabel   string             `dynamodbav:"primary_label"`
	Labels         map[string]string  `dynamodbav:"labels"`
	Confidences    map[string]float64 `dynamodbav:"confidences"`
	ExpiresAt      *int64             `dynamodbav:"expires_at,omitempty"`
}

func (s *ResultStore) expiresAt() *int64 {
	if s.ttl <= 0 {
		return nil
	}
	return aws.Int64(s.now().Add(s.ttl).Unix())
}

// AnalysisToItem builds the results-table row for result. Records are left
// out of response_data; they are written as their own rows.
func (s *ResultStore) AnalysisToItem(result *models.AnalysisResult) (map[string]types.AttributeValue, error) {
	document := *result
	document.Records = nil
	payload, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] failed to encode analysis %s: %w", result.ID, err)
	}

	return attributevalue.MarshalMap(analysisItem{
		AnalysisID:   result.ID,
		Query:        result.Query,
		CreatedAt:    result.CreatedAt.UTC().Format(time.RFC3339Nano),
		TotalRecords: result.TotalRecords,
		PrimaryModel: result.PrimaryModel,
		ResponseData: string(payload),
		ExpiresAt:    s.expiresAt(),
	})
}

// RecordToItem builds the records-table row for the record at position in
// its batch.
func (s *ResultStore) RecordToItem(analysisID string, position int, record models.AnnotatedRecord) (map[string]types.AttributeValue, error) {
	item := recordItem{
		AnalysisID:     analysisID,
		RecordID:       record.ID,
		Position:       position,
		Text:           record.Text,
		NormalizedText: record.NormalizedText,
		AuthorID:       record.AuthorID,
		GroundTruth:    record.GroundTruth.String(),
		PrimaryLabel:   record.Primary.String(),
		Labels:         make(map[string]string, len(record.Predictions)),
		Confidences:    make(map[string]float64, len(record.Predictions)),
		ExpiresAt:      s.expiresAt(),
	}
	if record.Timestamp != nil {
		item.Timestamp = record.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	for _, p := range record.Predictions {
		item.Labels[p.Model] = p.Label.String()
		item.Confidences[p.Model] = p.Confidence
	}
	return attributevalue.MarshalMap(item)
}

// Save writes the analysis row first, then the record rows in batches.
func (s *ResultStore) Save(ctx context.Context, result *models.AnalysisResult) error {
	item, err := s.AnalysisToItem(result)
	if err != nil {
		return err
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.resultsTable),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store analysis %s: %w", result.ID, err)
	}

	writeRequests := make([]types.WriteRequest, 0, len(result.Records))
	for i, record := range result.Records {
		recordItem, err := s.RecordToItem(result.ID, i, record)
		if err != nil {
			return fmt.Errorf("[DynamoDB] failed to encode record %s: %w", record.ID, err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: recordItem},
		})
	}

	if err := s.batchWrite(ctx, s.recordsTable, writeRequests); err != nil {
		return err
	}

	slog.Info("[DynamoDB] Successfully stored analysis",
		slog.String("analysis_id", result.ID),
		slog.Int("records", len(result.Records)))
	return nil
}

func (s *ResultStore) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	for i := 0; i < len(requests); i += MAX_BATCH_SIZE {
		if err := ctx.Err(); err != nil {
			slog.Warn("[DynamoDB] context canceled")
			return err
		}

		end := min(i+MAX_BATCH_SIZE, len(requests))
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				table: requests[i:end],
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write records: %w", err)
		}

		retryCount := 0
		backoff := INITIAL_BATCH_DELAY
		for len(out.UnprocessedItems) > 0 && retryCount < MAX_BATCH_RETRIES {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2

			slog.Warn("[DynamoDB] Retrying unprocessed items...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[table])))

			out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
			}
			retryCount++
		}

		if remaining := len(out.UnprocessedItems[table]); remaining > 0 {
			return fmt.Errorf("[DynamoDB] %d records were not written after %d retries", remaining, MAX_BATCH_RETRIES)
		}
	}
	return nil
}

// Get loads a stored analysis by id, with its records in batch order.
func (s *ResultStore) Get(ctx context.Context, analysisID string) (*models.AnalysisResult, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.resultsTable),
		Key: map[string]types.AttributeValue{
			"analysis_id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to get analysis %s: %w", analysisID, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
	}

	var item analysisItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal analysis %s: %w", analysisID, err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(item.ResponseData), &result); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to decode analysis %s: %w", analysisID, err)
	}

	records, err := s.records(ctx, analysisID, result.Models)
	if err != nil {
		return nil, err
	}
	if len(records) != result.TotalRecords {
		return nil, fmt.Errorf("[DynamoDB] analysis %s has %d of %d records stored",
			analysisID, len(records), result.TotalRecords)
	}
	result.Records = records
	return &result, nil
}

func (s *ResultStore) records(ctx context.Context, analysisID string, infos []models.ModelInfo) ([]models.AnnotatedRecord, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.recordsTable),
		KeyConditionExpression: aws.String("analysis_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})

	var items []recordItem
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Query for records of %s failed: %w", analysisID, err)
		}
		var page []recordItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal records of %s: %w", analysisID, err)
		}
		items = append(items, page...)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	records := make([]models.AnnotatedRecord, 0, len(items))
	for _, item := range items {
		record, err := item.toRecord(infos)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] record %s of %s: %w", item.RecordID, analysisID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// toRecord rebuilds an annotated record with predictions in model
// registration order.
func (item recordItem) toRecord(infos []models.ModelInfo) (models.AnnotatedRecord, error) {
	record := models.AnnotatedRecord{
		TextRecord: models.TextRecord{
			ID:          item.RecordID,
			Text:        item.Text,
			AuthorID:    item.AuthorID,
			GroundTruth: models.SentimentLabel(item.GroundTruth),
		},
		NormalizedText: item.NormalizedText,
		Predictions:    make([]models.ModelPrediction, 0, len(infos)),
		Primary:        models.SentimentLabel(item.PrimaryLabel),
	}
	if item.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
		if err != nil {
			return models.AnnotatedRecord{}, err
		}
		record.Timestamp = &ts
	}
	for _, info := range infos {
		label, ok := item.Labels[info.ID]
		if !ok {
			continue
		}
		record.Predictions = append(record.Predictions, models.ModelPrediction{
			Model:      info.ID,
			Label:      models.SentimentLabel(label),
			Confidence: item.Confidences[info.ID],
		})
	}
	return record, nil
}
