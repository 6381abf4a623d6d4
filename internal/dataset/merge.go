package dataset

import (
	"github.com/spacesedan/bankreviews/internal/models"
)

// Merge joins thematic rows with sentiment rows of the same bank. A
// sentiment row is found by review_id first, then by exact review_text.
// Thematic rows without a sentiment match are dropped; unmatched is the
// number of such rows.
func Merge(thematic []ThematicRow, sentiment []SentimentRow) (merged []models.AnalyzedReview, unmatched int) {
	byID := make(map[string]SentimentRow, len(sentiment))
	byText := make(map[string]SentimentRow, len(sentiment))
	for _, s := range sentiment {
		if s.ReviewID != "" {
			if _, ok := byID[s.ReviewID]; !ok {
				byID[s.ReviewID] = s
			}
		}
		if _, ok := byText[s.ReviewText]; !ok {
			byText[s.ReviewText] = s
		}
	}

	merged = make([]models.AnalyzedReview, 0, len(thematic))
	for _, t := range thematic {
		a := models.AnalyzedReview{ProcessedReview: t.Review()}
		s, ok := byID[t.ReviewID]
		if !ok || t.ReviewID == "" {
			s, ok = byText[t.ReviewText]
		}
		if !ok {
			unmatched++
			continue
		}
		a.SentimentLabel = models.NormalizeSentimentLabel(s.SentimentLabel)
		a.SentimentScore = s.SentimentScore
		merged = append(merged, a)
	}
	return merged, unmatched
}
