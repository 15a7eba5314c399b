package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
)

func LoadAWSConfig(ctx context.Context, store config.StoreSettings) (aws.Config, error) {
	slog.Info("[AWSClient] Initializing AWS Config...", slog.String("region", store.AWSRegion))
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(store.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
	}
	slog.Info("[AWSClient] AWS Config Initialized")
	return cfg, nil
}

// NewDynamoDBClient builds a DynamoDB client. A non-empty AWSEndpoint points
// it at a local DynamoDB instead of the regional endpoint.
func NewDynamoDBClient(ctx context.Context, store config.StoreSettings) (*dynamodb.Client, error) {
	cfg, err := LoadAWSConfig(ctx, store)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if store.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(store.AWSEndpoint)
		}
	}), nil
}
