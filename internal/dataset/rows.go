package dataset

import (
	"strconv"
	"time"

	"github.com/spacesedan/bankreviews/internal/models"
)

// RawReviewRow is a scraped review as stored on disk. Fields stay strings so
// that missing and malformed values survive until cleaning decides on them.
type RawReviewRow struct {
	ReviewID   string `csv:"review_id"`
	ReviewText string `csv:"review_text"`
	Rating     string `csv:"rating"`
	Date       string `csv:"date"`
	BankName   string `csv:"bank_name"`
	Source     string `csv:"source"`
}

type ProcessedRow struct {
	ReviewID      string `csv:"review_id"`
	ReviewText    string `csv:"review_text"`
	Rating        int    `csv:"rating"`
	Date          string `csv:"date"`
	Bank          string `csv:"bank"`
	Source        string `csv:"source"`
	ProcessedText string `csv:"processed_text"`
}

type ThematicRow struct {
	ReviewID        string `csv:"review_id"`
	ReviewText      string `csv:"review_text"`
	Rating          int    `csv:"rating"`
	Date            string `csv:"date"`
	Bank            string `csv:"bank"`
	Source          string `csv:"source"`
	ProcessedText   string `csv:"processed_text"`
	IdentifiedTheme string `csv:"identified_theme"`
}

type SentimentRow struct {
	ReviewID       string  `csv:"review_id"`
	ReviewText     string  `csv:"review_text"`
	SentimentLabel string  `csv:"sentiment_label"`
	SentimentScore float64 `csv:"sentiment_score"`
	Bank           string  `csv:"bank"`
	Rating         int     `csv:"rating"`
	Date           string  `csv:"date"`
}

// AggregateRow is the mean sentiment score of one (bank, rating) group.
type AggregateRow struct {
	Bank   string  `csv:"bank"`
	Rating int     `csv:"rating"`
	Mean   float64 `csv:"mean"`
	Count  int     `csv:"count"`
}

func NewRawReviewRow(r models.Review) RawReviewRow {
	rating := ""
	if r.Rating > 0 {
		rating = strconv.Itoa(r.Rating)
	}
	return RawReviewRow{
		ReviewID:   r.ReviewID,
		ReviewText: r.ReviewText,
		Rating:     rating,
		Date:       r.DateString(),
		BankName:   r.BankName,
		Source:     r.Source,
	}
}

func NewProcessedRow(r models.ProcessedReview) ProcessedRow {
	return ProcessedRow{
		ReviewID:      r.ReviewID,
		ReviewText:    r.ReviewText,
		Rating:        r.Rating,
		Date:          r.DateString(),
		Bank:          r.BankName,
		Source:        r.Source,
		ProcessedText: r.ProcessedText,
	}
}

func (p ProcessedRow) Review() models.ProcessedReview {
	return models.ProcessedReview{
		Review: models.Review{
			ReviewID:   p.ReviewID,
			ReviewText: p.ReviewText,
			Rating:     p.Rating,
			Date:       parseDate(p.Date),
			BankName:   p.Bank,
			Source:     p.Source,
		},
		ProcessedText: p.ProcessedText,
	}
}

func NewThematicRow(r models.ProcessedReview) ThematicRow {
	return ThematicRow{
		ReviewID:        r.ReviewID,
		ReviewText:      r.ReviewText,
		Rating:          r.Rating,
		Date:            r.DateString(),
		Bank:            r.BankName,
		Source:          r.Source,
		ProcessedText:   r.ProcessedText,
		IdentifiedTheme: r.IdentifiedTheme,
	}
}

func (t ThematicRow) Review() models.ProcessedReview {
	source := t.Source
	if source == "" {
		source = models.DefaultSource
	}
	return models.ProcessedReview{
		Review: models.Review{
			ReviewID:   t.ReviewID,
			ReviewText: t.ReviewText,
			Rating:     t.Rating,
			Date:       parseDate(t.Date),
			BankName:   t.Bank,
			Source:     source,
		},
		ProcessedText:   t.ProcessedText,
		IdentifiedTheme: t.IdentifiedTheme,
	}
}

func NewSentimentRow(r models.ProcessedReview, s models.SentimentResult) SentimentRow {
	return SentimentRow{
		ReviewID:       r.ReviewID,
		ReviewText:     r.ReviewText,
		SentimentLabel: s.Label,
		SentimentScore: s.Score,
		Bank:           r.BankName,
		Rating:         r.Rating,
		Date:           r.DateString(),
	}
}

func parseDate(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
