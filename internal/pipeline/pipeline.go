// Package pipeline runs the batch stages. Stages only share the CSV files
// under the data directory; each one reads its inputs from disk, transforms
// the full corpus and writes its outputs before returning.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/bankreviews/config"
	"github.com/spacesedan/bankreviews/internal/db"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
	"github.com/spacesedan/bankreviews/internal/preprocessing"
	"github.com/spacesedan/bankreviews/internal/scraping"
	"github.com/spacesedan/bankreviews/internal/sentiment"
)

type Stage string

const (
	StageScrape     Stage = "scrape"
	StagePreprocess Stage = "preprocess"
	StageThematic   Stage = "thematic"
	StageSentiment  Stage = "sentiment"
	StageLoad       Stage = "load"
	StageInsights   Stage = "insights"
)

// Stages lists every stage in run order.
var Stages = []Stage{StageScrape, StagePreprocess, StageThematic, StageSentiment, StageLoad, StageInsights}

// ParseStage accepts a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Runner holds what the stages need. Collaborators left nil are built from
// Config on first use and released by Close.
type Runner struct {
	Config *config.Config
	Banks  []models.Bank
	Logger *slog.Logger

	Fetcher scraping.Fetcher
	Text    *preprocessing.TextProcessor
	Scorer  sentiment.Scorer
	Store   db.Store

	// BankPause is the wait between banks while scraping.
	BankPause time.Duration

	closers []func()
}

func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		Config:    cfg,
		Banks:     models.Banks,
		Logger:    logging.OrDiscard(logger),
		BankPause: 2 * time.Second,
	}
}

// Run executes stages in the given order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, stages ...Stage) error {
	for _, st := range stages {
		start := time.Now()
		r.Logger.Info("[Pipeline] Starting stage", slog.String("stage", string(st)))
		if err := r.runStage(ctx, st); err != nil {
			r.Logger.Error("[Pipeline] Stage failed",
				slog.String("stage", string(st)),
				slog.String("error", err.Error()))
			return fmt.Errorf("stage %s: %w", st, err)
		}
		r.Logger.Info("[Pipeline] Finished stage",
			slog.String("stage", string(st)),
			slog.Duration("elapsed", time.Since(start)))
	}
	return nil
}

func (r *Runner) runStage(ctx context.Context, st Stage) error {
	switch st {
	case StageScrape:
		return r.Scrape(ctx)
	case StagePreprocess:
		return r.Preprocess(ctx)
	case StageThematic:
		return r.Thematic(ctx)
	case StageSentiment:
		return r.Sentiment(ctx)
	case StageLoad:
		return r.Load(ctx)
	case StageInsights:
		return r.Insights(ctx)
	default:
		return fmt.Errorf("unknown stage %q", st)
	}
}

// Close releases the collaborators built by the runner, newest first.
func (r *Runner) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}
