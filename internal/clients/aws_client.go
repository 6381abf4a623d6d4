package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// AWSOptions selects the region and, for local DynamoDB, a custom endpoint.
type AWSOptions struct {
	Region   string
	Endpoint string
}

func LoadAWSConfig(ctx context.Context, opts AWSOptions, logger *slog.Logger) (aws.Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Region == "" {
		opts.Region = "us-west-2"
	}

	logger.Info("[AWSClient] Initializing AWS Config...",
		slog.String("region", opts.Region))
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		logger.Error("[AWSClient] Failed to load AWS config",
			slog.String("error", err.Error()))
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("[AWSClient] AWS Config Initialized")
	return cfg, nil
}

func NewDynamoDBClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
