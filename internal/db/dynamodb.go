package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
	"github.com/spacesedan/bankreviews/internal/utils"
)

const (
	DEFAULT_REVIEWS_TABLE = "Reviews"
	BANKS_TABLE_SUFFIX    = "Banks"
	maxBatchSize          = 25
	maxUnprocessedRetries = 3
)

// DynamoAPI is the part of the DynamoDB client the store uses.
type DynamoAPI interface {
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoStore writes reviews keyed by review_id and banks keyed by id. A put
// replaces the whole item, which gives the same last-write-wins behavior as
// the SQL upserts.
type DynamoStore struct {
	client       DynamoAPI
	ReviewsTable string
	BanksTable   string
	// backoff before the first retry of unprocessed items; doubled per retry.
	backoff time.Duration
	logger  *slog.Logger
}

func NewDynamoStore(client DynamoAPI, reviewsTable string, logger *slog.Logger) *DynamoStore {
	if reviewsTable == "" {
		reviewsTable = DEFAULT_REVIEWS_TABLE
	}
	return &DynamoStore{
		client:       client,
		ReviewsTable: reviewsTable,
		BanksTable:   reviewsTable + BANKS_TABLE_SUFFIX,
		backoff:      500 * time.Millisecond,
		logger:       logging.OrDiscard(logger),
	}
}

// CreateSchema creates both tables when they do not exist yet.
func (d *DynamoStore) CreateSchema(ctx context.Context) error {
	tables := []struct {
		name, key string
		typ       types.ScalarAttributeType
	}{
		{d.BanksTable, "id", types.ScalarAttributeTypeN},
		{d.ReviewsTable, "review_id", types.ScalarAttributeTypeS},
	}
	for _, t := range tables {
		_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(t.name)})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return fmt.Errorf("[DynamoDB] Describe table %s: %w", t.name, err)
		}
		_, err = d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(t.name),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(t.key), AttributeType: t.typ},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(t.key), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Create table %s: %w", t.name, err)
		}
		d.logger.Info("[DynamoDB] Created table", slog.String("table", t.name))
	}
	return nil
}

func (d *DynamoStore) UpsertBanks(ctx context.Context, banks []models.Bank) error {
	requests := make([]types.WriteRequest, 0, len(banks))
	for i, b := range banks {
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{
			Item: map[string]types.AttributeValue{
				"id":   &types.AttributeValueMemberN{Value: strconv.Itoa(bankID(i))},
				"name": &types.AttributeValueMemberS{Value: b.Name},
			},
		}})
	}
	return d.batchWrite(ctx, d.BanksTable, requests)
}

// UpsertReviews validates and marshals every review before the first write,
// so a bad row aborts the batch before anything is stored. DynamoDB has no
// multi-batch transaction, so a failing write midway leaves earlier batches
// in place.
func (d *DynamoStore) UpsertReviews(ctx context.Context, reviews []models.AnalyzedReview) error {
	requests := make([]types.WriteRequest, 0, len(reviews))
	for _, r := range reviews {
		item, err := ReviewToDynamoDBItem(r)
		if err != nil {
			d.logger.Error("[DynamoDB] Failed to marshal review",
				slog.String("review_id", r.ReviewID),
				slog.String("bank", r.BankName),
				slog.String("error", err.Error()))
			return err
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	if err := d.batchWrite(ctx, d.ReviewsTable, requests); err != nil {
		return err
	}
	d.logger.Info("[DynamoDB] Successfully stored reviews", slog.Int("count", len(reviews)))
	return nil
}

func (d *DynamoStore) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	for _, batch := range utils.Chunks(requests, maxBatchSize) {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("[DynamoDB] context canceled")
			return err
		}
		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: batch},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write %s: %w", table, err)
		}

		retryCount := 0
		backoff := d.backoff
		for len(out.UnprocessedItems) > 0 && retryCount < maxUnprocessedRetries {
			time.Sleep(backoff)
			backoff *= 2
			d.logger.Warn("[DynamoDB] Retrying unprocessed items...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[table])))

			out, err = d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
			}
			retryCount++
		}
		if remaining := len(out.UnprocessedItems[table]); remaining > 0 {
			return fmt.Errorf("[DynamoDB] %d items not written to %s after retries", remaining, table)
		}
	}
	return nil
}

// ReviewToDynamoDBItem marshals a review with its date as YYYY-MM-DD.
func ReviewToDynamoDBItem(r models.AnalyzedReview) (map[string]types.AttributeValue, error) {
	if r.ReviewID == "" {
		return nil, errors.New("[DynamoDB] review has no review_id")
	}
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] marshal review %q: %w", r.ReviewID, err)
	}
	if d := r.DateString(); d != "" {
		item["review_date"] = &types.AttributeValueMemberS{Value: d}
	}
	return item, nil
}

func (d *DynamoStore) Close() error { return nil }
