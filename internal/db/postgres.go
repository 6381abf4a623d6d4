package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/spacesedan/bankreviews/internal/clients"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

const (
	pgUpsertBank = `INSERT INTO banks (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
	pgUpsertReview = `INSERT INTO reviews (review_id, review_text, rating, review_date, bank_name, source,
    processed_text, identified_theme, sentiment_label, sentiment_score)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (review_id) DO UPDATE SET
    review_text = EXCLUDED.review_text,
    rating = EXCLUDED.rating,
    review_date = EXCLUDED.review_date,
    bank_name = EXCLUDED.bank_name,
    source = EXCLUDED.source,
    processed_text = EXCLUDED.processed_text,
    identified_theme = EXCLUDED.identified_theme,
    sentiment_label = EXCLUDED.sentiment_label,
    sentiment_score = EXCLUDED.sentiment_score`
)

type PostgresStore struct {
	pg     clients.Postgres
	logger *slog.Logger
}

func NewPostgresStore(pg clients.Postgres, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pg: pg, logger: logging.OrDiscard(logger)}
}

func (p *PostgresStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range []string{createBanksTable, createReviewsTable} {
		if _, err := p.pg.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	p.logger.Info("[DB] Schema ready")
	return nil
}

func (p *PostgresStore) UpsertBanks(ctx context.Context, banks []models.Bank) error {
	return pgx.BeginFunc(ctx, p.pg.DB, func(tx pgx.Tx) error {
		for i, b := range banks {
			if _, err := tx.Exec(ctx, pgUpsertBank, bankID(i), b.Name); err != nil {
				return fmt.Errorf("upsert bank %q: %w", b.Name, err)
			}
		}
		return nil
	})
}

// UpsertReviews runs in one transaction; BeginFunc rolls back when a row
// fails.
func (p *PostgresStore) UpsertReviews(ctx context.Context, reviews []models.AnalyzedReview) error {
	err := pgx.BeginFunc(ctx, p.pg.DB, func(tx pgx.Tx) error {
		for _, r := range reviews {
			var date any
			if !r.Date.IsZero() {
				date = r.Date
			}
			_, err := tx.Exec(ctx, pgUpsertReview, r.ReviewID, r.ReviewText, r.Rating, date, r.BankName, r.Source,
				r.ProcessedText, r.IdentifiedTheme, r.SentimentLabel, r.SentimentScore)
			if err != nil {
				p.logger.Error("[DB] Failed to insert review",
					slog.String("review_id", r.ReviewID),
					slog.String("bank", r.BankName),
					slog.String("error", err.Error()))
				return fmt.Errorf("upsert review %q: %w", r.ReviewID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.logger.Info("[DB] Upserted reviews", slog.Int("count", len(reviews)))
	return nil
}

func (p *PostgresStore) Close() error {
	p.pg.Close()
	return nil
}
