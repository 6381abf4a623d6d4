package preprocessing

import (
	"context"
	"log/slog"

	"github.com/spacesedan/bankreviews/internal/language"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
	"github.com/spacesedan/bankreviews/internal/translation"
)

// TextProcessor brings review text into English and normalizes it.
type TextProcessor struct {
	classifier *language.Classifier
	translator *translation.Translator
	normalizer *Normalizer
	logger     *slog.Logger
}

func NewTextProcessor(c *language.Classifier, t *translation.Translator, n *Normalizer, logger *slog.Logger) *TextProcessor {
	return &TextProcessor{classifier: c, translator: t, normalizer: n, logger: logging.OrDiscard(logger)}
}

// Process returns the normalized form of text. Empty text skips
// translation and yields "".
func (p *TextProcessor) Process(ctx context.Context, text string) string {
	return p.process(ctx, text, p.classifier.Classify(text))
}

func (p *TextProcessor) process(ctx context.Context, text string, lang language.Language) string {
	if lang == language.Skip {
		return ""
	}
	return p.normalizer.Normalize(p.translator.Translate(ctx, text, lang))
}

// ProcessReviews sets ProcessedText on every review, sequentially.
func (p *TextProcessor) ProcessReviews(ctx context.Context, reviews []models.Review) []models.ProcessedReview {
	out := make([]models.ProcessedReview, len(reviews))
	counts := map[language.Language]int{}
	for i, r := range reviews {
		lang := p.classifier.Classify(r.ReviewText)
		counts[lang]++
		out[i] = models.ProcessedReview{Review: r, ProcessedText: p.process(ctx, r.ReviewText, lang)}
	}
	p.logger.Info("[TextProcessor] Processed review text",
		slog.Int("reviews", len(reviews)),
		slog.Int("amharic", counts[language.Amharic]),
		slog.Int("english", counts[language.English]),
		slog.Int("other", counts[language.Other]),
		slog.Int("empty", counts[language.Skip]))
	return out
}
