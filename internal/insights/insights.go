// Package insights compares banks on sentiment and rating and finds the
// themes behind their best and worst reviews.
package insights

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/spacesedan/bankreviews/internal/models"
	"gonum.org/v1/gonum/stat"
)

const (
	NoneIdentified = "None identified"
	topThemes      = 2
)

type BankComparison struct {
	Bank           string  `json:"bank" csv:"bank"`
	SentimentScore float64 `json:"sentiment_score" csv:"sentiment_score"` // mean, 3 decimals
	Rating         float64 `json:"rating" csv:"rating"`                   // mean, 2 decimals
	ReviewCount    int     `json:"review_count" csv:"review_count"`
}

type DriversPainPoints struct {
	Bank       string   `json:"bank"`
	Drivers    []string `json:"drivers"`
	PainPoints []string `json:"pain_points"`
}

// ThemeCount is the number of reviews of one theme.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// CompareBanks returns one row per bank in order of first appearance.
func CompareBanks(reviews []models.AnalyzedReview) []BankComparison {
	byBank := groupByBank(reviews)
	out := make([]BankComparison, 0, len(byBank.order))
	for _, bank := range byBank.order {
		rs := byBank.groups[bank]
		scores := make([]float64, len(rs))
		ratings := make([]float64, len(rs))
		for i, r := range rs {
			scores[i] = r.SentimentScore
			ratings[i] = float64(r.Rating)
		}
		out = append(out, BankComparison{
			Bank:           bank,
			SentimentScore: round(stat.Mean(scores, nil), 3),
			Rating:         round(stat.Mean(ratings, nil), 2),
			ReviewCount:    len(rs),
		})
	}
	return out
}

// FindDriversPainPoints picks, per bank, the two most frequent themes of
// POSITIVE reviews rated 4 or 5 (drivers) and of NEGATIVE reviews rated 1
// or 2 (pain points). An empty list becomes [NoneIdentified].
func FindDriversPainPoints(reviews []models.AnalyzedReview) []DriversPainPoints {
	byBank := groupByBank(reviews)
	out := make([]DriversPainPoints, 0, len(byBank.order))
	for _, bank := range byBank.order {
		var pos, neg []models.AnalyzedReview
		for _, r := range byBank.groups[bank] {
			label := strings.ToUpper(r.SentimentLabel)
			switch {
			case label == models.SentimentPositive && r.Rating >= 4:
				pos = append(pos, r)
			case label == models.SentimentNegative && r.Rating > 0 && r.Rating <= 2:
				neg = append(neg, r)
			}
		}
		out = append(out, DriversPainPoints{
			Bank:       bank,
			Drivers:    topOrNone(ThemeCounts(pos), topThemes),
			PainPoints: topOrNone(ThemeCounts(neg), topThemes),
		})
	}
	return out
}

// ThemeCounts counts reviews per theme, most frequent first. Ties keep the
// order in which the themes first appear.
func ThemeCounts(reviews []models.AnalyzedReview) []ThemeCount {
	index := map[string]int{}
	var counts []ThemeCount
	for _, r := range reviews {
		theme := r.IdentifiedTheme
		if theme == "" {
			continue
		}
		i, ok := index[theme]
		if !ok {
			i = len(counts)
			index[theme] = i
			counts = append(counts, ThemeCount{Theme: theme})
		}
		counts[i].Count++
	}
	slices.SortStableFunc(counts, func(a, b ThemeCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return counts
}

func topOrNone(counts []ThemeCount, n int) []string {
	if len(counts) == 0 {
		return []string{NoneIdentified}
	}
	out := make([]string, 0, n)
	for _, c := range counts[:min(n, len(counts))] {
		out = append(out, c.Theme)
	}
	return out
}

type bankGroups struct {
	order  []string
	groups map[string][]models.AnalyzedReview
}

func groupByBank(reviews []models.AnalyzedReview) bankGroups {
	g := bankGroups{groups: map[string][]models.AnalyzedReview{}}
	for _, r := range reviews {
		if _, ok := g.groups[r.BankName]; !ok {
			g.order = append(g.order, r.BankName)
		}
		g.groups[r.BankName] = append(g.groups[r.BankName], r)
	}
	return g
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
