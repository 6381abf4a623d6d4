package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/n0madic/google-play-scraper/pkg/reviews"
	"github.com/n0madic/google-play-scraper/pkg/store"
)

// StoreReview is one review as returned by the store, before any cleaning.
type StoreReview struct {
	ID        string
	Text      string
	Score     int
	Timestamp time.Time
}

// PlayStoreClient fetches reviews from Google Play.
type PlayStoreClient struct {
	Language string
	Country  string
	logger   *slog.Logger
}

func NewPlayStoreClient(language, country string, logger *slog.Logger) *PlayStoreClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayStoreClient{Language: language, Country: country, logger: logger}
}

// options asks the scraper for the count newest reviews.
func (p *PlayStoreClient) options(count int) reviews.Options {
	return reviews.Options{
		Country:  p.Country,
		Language: p.Language,
		Number:   count,
		Sorting:  store.SortNewest,
	}
}

// FetchReviews returns up to count newest reviews of appID. The scraper does
// not take a context, so cancellation only stops waiting for it.
func (p *PlayStoreClient) FetchReviews(ctx context.Context, appID string, count int) ([]StoreReview, error) {
	start := time.Now()
	r := reviews.New(appID, p.options(count))

	done := make(chan error, 1)
	go func() { done <- r.Run() }()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("fetch reviews for %s: %w", appID, err)
		}
	}

	out := make([]StoreReview, 0, len(r.Results))
	for _, rv := range r.Results {
		if rv == nil {
			continue
		}
		out = append(out, StoreReview{
			ID:        rv.ID,
			Text:      rv.Text,
			Score:     rv.Score,
			Timestamp: rv.Timestamp,
		})
	}

	p.logger.Info("[PlayStoreClient] Fetched reviews",
		slog.String("app_id", appID),
		slog.Int("count", len(out)),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}
