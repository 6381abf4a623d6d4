// Package scraping collects raw Google Play reviews for the registered banks.
package scraping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/bankreviews/internal/clients"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

const (
	MaxAttempts   = 3
	MinRawReviews = 600
)

// Fetcher returns up to count reviews of an app.
type Fetcher interface {
	FetchReviews(ctx context.Context, appID string, count int) ([]clients.StoreReview, error)
}

type Options struct {
	MaxReviews int
	RetryDelay time.Duration
}

type Scraper struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

func New(fetcher Fetcher, opts Options, logger *slog.Logger) *Scraper {
	if opts.MaxReviews <= 0 {
		opts.MaxReviews = 1000
	}
	return &Scraper{fetcher: fetcher, opts: opts, logger: logging.OrDiscard(logger)}
}

// Scrape fetches the reviews of bank, retrying up to MaxAttempts times with
// a fixed delay. Review ids are synthesized from the bank name and the
// position in the fetched list, so they change between runs.
func (s *Scraper) Scrape(ctx context.Context, bank models.Bank) ([]models.Review, error) {
	var (
		raw []clients.StoreReview
		err error
	)
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		raw, err = s.fetcher.FetchReviews(ctx, bank.AppID, s.opts.MaxReviews)
		if err == nil {
			break
		}
		s.logger.Warn("[Scraper] Fetch failed",
			slog.String("bank", bank.Name),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if attempt == MaxAttempts {
			return nil, fmt.Errorf("scrape %s after %d attempts: %w", bank.Name, MaxAttempts, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.opts.RetryDelay):
		}
	}

	reviews := make([]models.Review, 0, len(raw))
	for i, r := range raw {
		reviews = append(reviews, models.Review{
			ReviewID:   models.ReviewID(bank.Name, i),
			ReviewText: r.Text,
			Rating:     r.Score,
			Date:       r.Timestamp,
			BankName:   bank.Name,
			Source:     models.DefaultSource,
		})
	}

	if len(reviews) < MinRawReviews {
		s.logger.Warn("[Scraper] Fewer raw reviews than needed for a clean sample",
			slog.String("bank", bank.Name),
			slog.Int("count", len(reviews)),
			slog.Int("minimum", MinRawReviews))
	}
	s.logger.Info("[Scraper] Scraped reviews",
		slog.String("bank", bank.Name),
		slog.Int("count", len(reviews)))
	return reviews, nil
}
