package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/bankreviews/config"
	"github.com/spacesedan/bankreviews/internal/clients"
	"github.com/spacesedan/bankreviews/internal/db"
	"github.com/spacesedan/bankreviews/internal/language"
	"github.com/spacesedan/bankreviews/internal/monitoring"
	"github.com/spacesedan/bankreviews/internal/preprocessing"
	"github.com/spacesedan/bankreviews/internal/scraping"
	"github.com/spacesedan/bankreviews/internal/sentiment"
	"github.com/spacesedan/bankreviews/internal/translation"
)

func (r *Runner) fetcher() scraping.Fetcher {
	if r.Fetcher == nil {
		r.Fetcher = clients.NewPlayStoreClient(r.Config.Scraping.Lang, r.Config.Scraping.Country, r.Logger)
	}
	return r.Fetcher
}

func (r *Runner) textProcessor(ctx context.Context) *preprocessing.TextProcessor {
	if r.Text != nil {
		return r.Text
	}

	lemmatizer, err := preprocessing.NewGolemLemmatizer()
	if err != nil {
		r.Logger.Warn("[Pipeline] Lemmatizer unavailable, keeping surface forms",
			slog.String("error", err.Error()))
	}

	r.Text = preprocessing.NewTextProcessor(
		language.NewClassifier(nil, r.Logger),
		translation.New(r.translationBackend(), r.translationCache(ctx), r.Logger),
		preprocessing.NewNormalizer(lemmatizer, r.Logger),
		r.Logger,
	)
	return r.Text
}

// translationBackend returns nil, meaning pass-through, when the configured
// backend cannot be built.
func (r *Runner) translationBackend() translation.Backend {
	t := r.Config.Translation
	switch t.Backend {
	case config.TranslatorMyMemory:
		return clients.NewMyMemoryClient(t.MyMemoryEmail, r.Logger)
	case config.TranslatorOpenAI:
		c, err := clients.NewOpenAIClient(t.OpenAIKey, t.OpenAIModel, r.Logger)
		if err != nil {
			r.Logger.Warn("[Pipeline] OpenAI translator unavailable, text stays untranslated",
				slog.String("error", err.Error()))
			return nil
		}
		return c
	case config.TranslatorNone:
		return nil
	default:
		r.Logger.Warn("[Pipeline] Unknown translator, text stays untranslated",
			slog.String("translator", t.Backend))
		return nil
	}
}

// translationCache returns nil when no Valkey address is configured or the
// server cannot be reached.
func (r *Runner) translationCache(ctx context.Context) translation.Cache {
	t := r.Config.Translation
	if t.ValkeyAddress == "" {
		return nil
	}
	vc, err := clients.NewValkeyClient(ctx, clients.ValkeyOptions{
		Address:  t.ValkeyAddress,
		Password: t.ValkeyPassword,
		TLS:      t.ValkeyTLS,
	}, r.Logger)
	if err != nil {
		r.Logger.Warn("[Pipeline] Translation cache unavailable",
			slog.String("error", err.Error()))
		return nil
	}
	r.closers = append(r.closers, vc.Close)
	return vc
}

func (r *Runner) scorer(ctx context.Context) (sentiment.Scorer, error) {
	if r.Scorer != nil {
		return r.Scorer, nil
	}
	s := r.Config.Sentiment
	switch s.Backend {
	case config.SentimentVADER:
		r.Scorer = sentiment.NewVADERScorer()
	case config.SentimentHuggingFace:
		hf := clients.NewHuggingFaceClient(ctx, s.Endpoint, s.HFToken, r.Config.Env, r.Logger)
		if err := monitoring.WaitHealthy(ctx, "huggingface", hf, monitoring.HEALTHCHECK_INTERVAL, monitoring.HEALTHCHECK_ATTEMPTS, r.Logger); err != nil {
			return nil, err
		}
		r.Scorer = sentiment.NewHuggingFaceScorer(hf)
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", s.Backend)
	}
	return r.Scorer, nil
}

func (r *Runner) store(ctx context.Context) (db.Store, error) {
	if r.Store != nil {
		return r.Store, nil
	}
	s, err := db.Open(ctx, r.Config.Store, r.Logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	r.Store = s
	r.closers = append(r.closers, func() {
		if err := s.Close(); err != nil {
			r.Logger.Warn("[Pipeline] Closing store failed", slog.String("error", err.Error()))
		}
	})
	return s, nil
}
