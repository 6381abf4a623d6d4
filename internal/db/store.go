// Package db persists analyzed reviews. Every driver writes with
// upsert-by-primary-key, so re-running the load stage overwrites earlier
// rows (last write wins).
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/bankreviews/config"
	"github.com/spacesedan/bankreviews/internal/clients"
	"github.com/spacesedan/bankreviews/internal/models"
)

// Store is the downstream store of the load stage.
type Store interface {
	CreateSchema(ctx context.Context) error
	UpsertBanks(ctx context.Context, banks []models.Bank) error
	// UpsertReviews writes all reviews or none: the first failing row is
	// logged with its id and aborts the batch.
	UpsertReviews(ctx context.Context, reviews []models.AnalyzedReview) error
	Close() error
}

// Schema shared by the SQL drivers.
const (
	createBanksTable = `CREATE TABLE IF NOT EXISTS banks (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
)`
	createReviewsTable = `CREATE TABLE IF NOT EXISTS reviews (
    review_id TEXT PRIMARY KEY CHECK (review_id <> ''),
    review_text TEXT,
    rating INTEGER,
    review_date DATE,
    bank_name TEXT NOT NULL,
    source TEXT,
    processed_text TEXT,
    identified_theme TEXT,
    sentiment_label TEXT,
    sentiment_score DOUBLE PRECISION
)`
)

// Open connects the driver selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Store, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	case config.StorePostgres:
		pg, err := clients.NewPostgresClient(ctx, cfg.PostgresDSN(), logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pg, logger), nil
	case config.StoreDynamoDB:
		awsCfg, err := clients.LoadAWSConfig(ctx, clients.AWSOptions{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint}, logger)
		if err != nil {
			return nil, err
		}
		client := clients.NewDynamoDBClient(awsCfg, cfg.AWSEndpoint)
		return NewDynamoStore(client, cfg.DynamoDBTable, logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// bankID numbers banks by their position in the registry, starting at 1.
func bankID(i int) int { return i + 1 }
