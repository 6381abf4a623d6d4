// Package sentiment labels reviews POSITIVE or NEGATIVE in fixed-size
// batches and aggregates the scores per bank and rating.
package sentiment

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spacesedan/bankreviews/internal/clients"
	"github.com/spacesedan/bankreviews/internal/dataset"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
	"github.com/spacesedan/bankreviews/internal/utils"
	"gonum.org/v1/gonum/stat"
)

const DefaultBatchSize = 32

// Score is one model output. Score is the confidence of Label.
type Score struct {
	Label string
	Score float64
}

// Scorer scores a batch of texts, returning one Score per text in order.
type Scorer interface {
	ScoreBatch(ctx context.Context, texts []string) ([]Score, error)
}

// HuggingFaceScorer scores through the hosted inference API and keeps the
// highest scoring label of each text.
type HuggingFaceScorer struct {
	client *clients.HuggingFaceClient
}

func NewHuggingFaceScorer(client *clients.HuggingFaceClient) *HuggingFaceScorer {
	return &HuggingFaceScorer{client: client}
}

func (h *HuggingFaceScorer) ScoreBatch(ctx context.Context, texts []string) ([]Score, error) {
	resp, err := h.client.ClassifySentiment(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]Score, len(resp))
	for i, labels := range resp {
		if len(labels) == 0 {
			return nil, fmt.Errorf("no labels for input %d", i)
		}
		best := slices.MaxFunc(labels, func(a, b models.SentimentLabelScore) int {
			return cmp.Compare(a.Score, b.Score)
		})
		out[i] = Score{Label: models.NormalizeSentimentLabel(best.Label), Score: best.Score}
	}
	return out, nil
}

// Analyze scores the raw text of every review in batches of batchSize. An
// error from the scorer aborts the run.
func Analyze(ctx context.Context, scorer Scorer, reviews []models.ProcessedReview, batchSize int, logger *slog.Logger) ([]models.SentimentResult, error) {
	logger = logging.OrDiscard(logger)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	results := make([]models.SentimentResult, 0, len(reviews))
	batches := utils.Chunks(reviews, batchSize)
	for n, batch := range batches {
		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.ReviewText
		}
		scores, err := scorer.ScoreBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("score batch %d: %w", n+1, err)
		}
		if len(scores) != len(batch) {
			return nil, fmt.Errorf("score batch %d: got %d scores for %d texts", n+1, len(scores), len(batch))
		}
		for i, s := range scores {
			results = append(results, models.SentimentResult{
				ReviewID: batch[i].ReviewID,
				Label:    models.NormalizeSentimentLabel(s.Label),
				Score:    s.Score,
			})
		}
		logger.Info("[Sentiment] Processed batch",
			slog.Int("batch", n+1),
			slog.Int("of", len(batches)),
			slog.Int("size", len(batch)))
	}
	return results, nil
}

// Aggregate groups rows by (bank, rating) and reports the mean score and
// count of each group, sorted by bank then rating.
func Aggregate(rows []dataset.SentimentRow) []dataset.AggregateRow {
	type key struct {
		bank   string
		rating int
	}
	groups := map[key][]float64{}
	for _, r := range rows {
		k := key{r.Bank, r.Rating}
		groups[k] = append(groups[k], r.SentimentScore)
	}

	out := make([]dataset.AggregateRow, 0, len(groups))
	for k, scores := range groups {
		out = append(out, dataset.AggregateRow{
			Bank:   k.bank,
			Rating: k.rating,
			Mean:   stat.Mean(scores, nil),
			Count:  len(scores),
		})
	}
	slices.SortFunc(out, func(a, b dataset.AggregateRow) int {
		if c := cmp.Compare(a.Bank, b.Bank); c != 0 {
			return c
		}
		return cmp.Compare(a.Rating, b.Rating)
	})
	return out
}
