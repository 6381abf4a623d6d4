package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/bankreviews/internal/models"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders review text as markdown and keeps the plain
// words, so emphasis markers and links do not skew the lexicon.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

// VADERScorer scores locally with the VADER lexicon. The compound score c
// in [-1, 1] becomes POSITIVE when c >= 0, NEGATIVE otherwise, with
// confidence (1+|c|)/2.
type VADERScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVADERScorer() *VADERScorer {
	return &VADERScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VADERScorer) ScoreBatch(ctx context.Context, texts []string) ([]Score, error) {
	out := make([]Score, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plain := ConvertMarkdownToText(text)
		if plain == "" {
			out[i] = Score{Label: models.SentimentPositive, Score: 0.5}
			continue
		}
		compound := v.analyzer.PolarityScores(plain).Compound
		label := models.SentimentPositive
		if compound < 0 {
			label = models.SentimentNegative
		}
		out[i] = Score{Label: label, Score: (1 + math.Abs(compound)) / 2}
	}
	return out, nil
}
