// Package preprocessing cleans raw scraped reviews and normalizes their text
// for theme extraction.
package preprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/bankreviews/internal/dataset"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

// dateLayouts are tried in order when normalizing the date column.
var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// CleanReport counts what each cleaning step removed.
type CleanReport struct {
	Input        int
	MissingText  int
	MissingRate  int
	BadRating    int
	Duplicates   int
	InvalidDates int
	Output       int
}

// DropMissing removes rows without review text or rating.
func DropMissing(rows []dataset.RawReviewRow) (kept []dataset.RawReviewRow, noText, noRating int) {
	kept = make([]dataset.RawReviewRow, 0, len(rows))
	for _, r := range rows {
		switch {
		case strings.TrimSpace(r.ReviewText) == "":
			noText++
		case strings.TrimSpace(r.Rating) == "":
			noRating++
		default:
			kept = append(kept, r)
		}
	}
	return kept, noText, noRating
}

// ParseRating accepts "4" and "4.0" style values in 1..5.
func ParseRating(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < 1 || f > 5 {
		return 0, false
	}
	return int(f), true
}

// ValidateRatings keeps rows whose rating parses into 1..5.
func ValidateRatings(rows []dataset.RawReviewRow) ([]dataset.RawReviewRow, int) {
	kept := make([]dataset.RawReviewRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := ParseRating(r.Rating); ok {
			kept = append(kept, r)
		}
	}
	return kept, len(rows) - len(kept)
}

// RemoveDuplicates keeps the first row of every (review_text, date) pair.
func RemoveDuplicates(rows []dataset.RawReviewRow) ([]dataset.RawReviewRow, int) {
	type key struct{ text, date string }
	seen := make(map[key]struct{}, len(rows))
	kept := make([]dataset.RawReviewRow, 0, len(rows))
	for _, r := range rows {
		k := key{r.ReviewText, r.Date}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return kept, len(rows) - len(kept)
}

// ParseDate tries the known layouts. Missing or unparseable dates report
// ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Clean runs the cleaning steps in order and converts the survivors into
// reviews of bank. Missing ids are synthesized from the bank name and the
// row position; missing sources default to Google Play.
func Clean(rows []dataset.RawReviewRow, bank models.Bank, logger *slog.Logger) ([]models.Review, CleanReport) {
	logger = logging.OrDiscard(logger)
	rep := CleanReport{Input: len(rows)}

	rows, rep.MissingText, rep.MissingRate = DropMissing(rows)
	rows, rep.BadRating = ValidateRatings(rows)
	rows, rep.Duplicates = RemoveDuplicates(rows)

	reviews := make([]models.Review, 0, len(rows))
	for i, r := range rows {
		rating, _ := ParseRating(r.Rating)
		date, ok := ParseDate(r.Date)
		if !ok {
			rep.InvalidDates++
		}
		id := strings.TrimSpace(r.ReviewID)
		if id == "" {
			id = models.ReviewID(bank.Name, i)
		}
		source := strings.TrimSpace(r.Source)
		if source == "" {
			source = models.DefaultSource
		}
		reviews = append(reviews, models.Review{
			ReviewID:   id,
			ReviewText: r.ReviewText,
			Rating:     rating,
			Date:       date,
			BankName:   bank.Name,
			Source:     source,
		})
	}
	rep.Output = len(reviews)

	if rep.InvalidDates > 0 {
		logger.Warn("[Cleaner] Dates could not be parsed and were left empty",
			slog.String("bank", bank.Name),
			slog.Int("count", rep.InvalidDates))
	}
	logger.Info("[Cleaner] Cleaned reviews",
		slog.String("bank", bank.Name),
		slog.Int("input", rep.Input),
		slog.Int("missing_text", rep.MissingText),
		slog.Int("missing_rating", rep.MissingRate),
		slog.Int("bad_rating", rep.BadRating),
		slog.Int("duplicates", rep.Duplicates),
		slog.Int("output", rep.Output))
	return reviews, rep
}

// AssessDataQuality measures the share of empty values per column and the
// rating distribution of a raw file.
func AssessDataQuality(rows []dataset.RawReviewRow, bank models.Bank) models.DataQuality {
	q := models.DataQuality{Bank: bank, Rows: len(rows)}
	if len(rows) == 0 {
		return q
	}
	columns := []struct {
		name string
		get  func(dataset.RawReviewRow) string
	}{
		{"review_id", func(r dataset.RawReviewRow) string { return r.ReviewID }},
		{"review_text", func(r dataset.RawReviewRow) string { return r.ReviewText }},
		{"rating", func(r dataset.RawReviewRow) string { return r.Rating }},
		{"date", func(r dataset.RawReviewRow) string { return r.Date }},
		{"source", func(r dataset.RawReviewRow) string { return r.Source }},
	}
	for _, c := range columns {
		missing := 0
		for _, r := range rows {
			if strings.TrimSpace(c.get(r)) == "" {
				missing++
			}
		}
		q.Missing = append(q.Missing, models.ColumnMissing{
			Column:  c.name,
			Percent: 100 * float64(missing) / float64(len(rows)),
		})
	}
	for _, r := range rows {
		if rating, ok := ParseRating(r.Rating); ok {
			q.Ratings[rating-1]++
		}
	}
	return q
}

// LogDataQuality logs the assessment of rows and returns it.
func LogDataQuality(rows []dataset.RawReviewRow, bank models.Bank, logger *slog.Logger) models.DataQuality {
	logger = logging.OrDiscard(logger)
	q := AssessDataQuality(rows, bank)
	if q.Rows == 0 {
		logger.Warn("[Cleaner] No rows to assess", slog.String("bank", bank.Name))
		return q
	}

	attrs := []any{slog.String("bank", bank.Name), slog.Int("rows", q.Rows)}
	for _, m := range q.Missing {
		attrs = append(attrs, slog.String("missing_"+m.Column, fmt.Sprintf("%.1f%%", m.Percent)))
	}
	logger.Info("[Cleaner] Data quality", attrs...)

	ratingAttrs := []any{slog.String("bank", bank.Name)}
	for i, n := range q.Ratings {
		if n > 0 {
			ratingAttrs = append(ratingAttrs, slog.Int(fmt.Sprintf("rating_%d", i+1), n))
		}
	}
	logger.Info("[Cleaner] Rating distribution", ratingAttrs...)
	return q
}
