package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
	_ "modernc.org/sqlite"
)

const (
	sqliteUpsertBank = `INSERT INTO banks (id, name) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name`
	sqliteUpsertReview = `INSERT INTO reviews (review_id, review_text, rating, review_date, bank_name, source,
    processed_text, identified_theme, sentiment_label, sentiment_score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (review_id) DO UPDATE SET
    review_text = excluded.review_text,
    rating = excluded.rating,
    review_date = excluded.review_date,
    bank_name = excluded.bank_name,
    source = excluded.source,
    processed_text = excluded.processed_text,
    identified_theme = excluded.identified_theme,
    sentiment_label = excluded.sentiment_label,
    sentiment_score = excluded.sentiment_score`
)

// SQLiteStore keeps the store in a local file.
type SQLiteStore struct {
	DB     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	logger = logging.OrDiscard(logger)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	logger.Info("[SQLite] Opened store", slog.String("path", path))
	return &SQLiteStore{DB: db, logger: logger}, nil
}

func (s *SQLiteStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range []string{createBanksTable, createReviewsTable} {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	s.logger.Info("[SQLite] Schema ready")
	return nil
}

func (s *SQLiteStore) UpsertBanks(ctx context.Context, banks []models.Bank) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for i, b := range banks {
		if _, err := tx.ExecContext(ctx, sqliteUpsertBank, bankID(i), b.Name); err != nil {
			return fmt.Errorf("upsert bank %q: %w", b.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpsertReviews(ctx context.Context, reviews []models.AnalyzedReview) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertReview)
	if err != nil {
		return fmt.Errorf("prepare review upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reviews {
		var date any
		if d := r.DateString(); d != "" {
			date = d
		}
		_, err := stmt.ExecContext(ctx, r.ReviewID, r.ReviewText, r.Rating, date, r.BankName, r.Source,
			r.ProcessedText, r.IdentifiedTheme, r.SentimentLabel, r.SentimentScore)
		if err != nil {
			s.logger.Error("[SQLite] Failed to insert review",
				slog.String("review_id", r.ReviewID),
				slog.String("bank", r.BankName),
				slog.String("error", err.Error()))
			return fmt.Errorf("upsert review %q: %w", r.ReviewID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reviews: %w", err)
	}
	s.logger.Info("[SQLite] Upserted reviews", slog.Int("count", len(reviews)))
	return nil
}

// CountReviews returns the number of stored reviews of bankName, or of all
// banks when bankName is empty.
func (s *SQLiteStore) CountReviews(ctx context.Context, bankName string) (int, error) {
	var n int
	var err error
	if bankName == "" {
		err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&n)
	} else {
		err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE bank_name = ?`, bankName).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
