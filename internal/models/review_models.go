package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultSource = "Google Play"
	DateLayout    = "2006-01-02"
)

// Review is a single app-store review as scraped. Rating is 0 when the
// source value was missing or invalid; Date is zero when missing.
type Review struct {
	ReviewID   string    `json:"review_id" dynamodbav:"review_id"`
	ReviewText string    `json:"review_text" dynamodbav:"review_text"`
	Rating     int       `json:"rating" dynamodbav:"rating"`
	Date       time.Time `json:"date" dynamodbav:"-"`
	BankName   string    `json:"bank_name" dynamodbav:"bank_name"`
	Source     string    `json:"source" dynamodbav:"source"`
}

// DateString formats Date as YYYY-MM-DD, or "" when it is missing.
func (r Review) DateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format(DateLayout)
}

// ReviewID synthesizes the id used when a source row has none:
// "<bank name with spaces as _>_<index>".
func ReviewID(bankName string, index int) string {
	return fmt.Sprintf("%s_%d", strings.ReplaceAll(bankName, " ", "_"), index)
}

// ProcessedReview is a review after cleaning, translation, normalization and
// theme assignment. ProcessedText is never nil-like: it is "" for empty text.
type ProcessedReview struct {
	Review
	ProcessedText   string `json:"processed_text" dynamodbav:"processed_text"`
	IdentifiedTheme string `json:"identified_theme" dynamodbav:"identified_theme"`
}

// AnalyzedReview joins a processed review with its sentiment result. It is
// the unit persisted to the store and consumed by insights.
type AnalyzedReview struct {
	ProcessedReview
	SentimentLabel string  `json:"sentiment_label" dynamodbav:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score" dynamodbav:"sentiment_score"`
}

// ColumnMissing is the share, in percent, of empty values in one raw column.
type ColumnMissing struct {
	Column  string  `json:"column"`
	Percent float64 `json:"percent"`
}

// DataQuality summarizes one bank's raw file before cleaning. Ratings[i]
// counts rows rated i+1; unparsable ratings are not counted.
type DataQuality struct {
	Bank    Bank            `json:"bank"`
	Rows    int             `json:"rows"`
	Missing []ColumnMissing `json:"missing"`
	Ratings [5]int          `json:"ratings"`
}
