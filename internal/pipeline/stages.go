package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spacesedan/bankreviews/internal/dataset"
	"github.com/spacesedan/bankreviews/internal/insights"
	"github.com/spacesedan/bankreviews/internal/models"
	"github.com/spacesedan/bankreviews/internal/preprocessing"
	"github.com/spacesedan/bankreviews/internal/scraping"
	"github.com/spacesedan/bankreviews/internal/sentiment"
	"github.com/spacesedan/bankreviews/internal/themes"
)

// ErrNoInput is returned by stages that found no input file for any bank.
var ErrNoInput = errors.New("no input files found")

// Scrape writes one raw CSV per bank. A bank whose scrape fails is logged
// and skipped.
func (r *Runner) Scrape(ctx context.Context) error {
	s := scraping.New(r.fetcher(), scraping.Options{
		MaxReviews: r.Config.Scraping.MaxReviews,
		RetryDelay: r.Config.Scraping.RetryDelay,
	}, r.Logger)

	total, scraped := 0, 0
	for i, bank := range r.Banks {
		if i > 0 && r.BankPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.BankPause):
			}
		}
		reviews, err := s.Scrape(ctx, bank)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Logger.Error("[Pipeline] Scraping failed, skipping bank",
				slog.String("bank", bank.Name),
				slog.String("error", err.Error()))
			continue
		}
		if len(reviews) == 0 {
			continue
		}
		rows := make([]dataset.RawReviewRow, len(reviews))
		for j, rv := range reviews {
			rows[j] = dataset.NewRawReviewRow(rv)
		}
		if err := dataset.Write(dataset.RawPath(r.Config.RawDir(), bank), rows); err != nil {
			return err
		}
		total += len(rows)
		scraped++
	}
	r.Logger.Info("[Pipeline] Total reviews collected across all banks",
		slog.Int("banks", scraped),
		slog.Int("reviews", total))
	return nil
}

// Preprocess cleans the raw reviews and writes their normalized text.
func (r *Runner) Preprocess(ctx context.Context) error {
	files, err := dataset.ReadBanks[dataset.RawReviewRow](r.Banks, r.rawPath, r.Logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInput
	}

	tp := r.textProcessor(ctx)
	for _, f := range files {
		quality := preprocessing.LogDataQuality(f.Rows, f.Bank, r.Logger)
		if _, err := insights.WriteDataQualityCharts(quality, r.Config.DataQualityDir()); err != nil {
			r.Logger.Warn("[Pipeline] Failed to write data quality charts",
				slog.String("bank", f.Bank.Name),
				slog.String("error", err.Error()))
		}
		reviews, _ := preprocessing.Clean(f.Rows, f.Bank, r.Logger)
		processed := tp.ProcessReviews(ctx, reviews)
		if err := ctx.Err(); err != nil {
			return err
		}

		rows := make([]dataset.ProcessedRow, len(processed))
		for i, p := range processed {
			rows[i] = dataset.NewProcessedRow(p)
		}
		if err := dataset.Write(dataset.ProcessedPath(r.Config.ProcessedDir(), f.Bank), rows); err != nil {
			return err
		}
	}
	return nil
}

// Thematic builds each bank's theme map from its own processed corpus and
// labels its reviews.
func (r *Runner) Thematic(ctx context.Context) error {
	policy, err := themes.ParseMatchPolicy(r.Config.Themes.MatchPolicy)
	if err != nil {
		r.Logger.Warn("[Pipeline] Invalid theme match policy, using substring",
			slog.String("error", err.Error()))
		policy = themes.MatchSubstring
	}
	rules, err := themes.LoadRules(r.Config.Themes.RulesFile)
	if err != nil {
		return err
	}
	assigner := themes.NewAssigner(rules, policy, r.Logger)

	files, err := dataset.ReadBanks[dataset.ProcessedRow](r.Banks, r.processedPath, r.Logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInput
	}

	for _, f := range files {
		corpus := make([]string, len(f.Rows))
		for i, row := range f.Rows {
			corpus[i] = row.ProcessedText
		}
		themeMap := assigner.BuildThemeMap(corpus, f.Bank.Name)

		rows := make([]dataset.ThematicRow, len(f.Rows))
		counts := map[string]int{}
		for i, row := range f.Rows {
			p := row.Review()
			p.IdentifiedTheme = assigner.AssignTheme(p.ProcessedText, themeMap)
			counts[p.IdentifiedTheme]++
			rows[i] = dataset.NewThematicRow(p)
		}
		if err := dataset.Write(dataset.ThematicPath(r.Config.ThematicDir(), f.Bank), rows); err != nil {
			return err
		}
		r.Logger.Info("[Pipeline] Saved thematic analysis",
			slog.String("bank", f.Bank.Name),
			slog.Any("theme_counts", counts))
	}
	return nil
}

// Sentiment scores the processed reviews of every bank and writes the per
// bank results plus the (bank, rating) aggregate.
func (r *Runner) Sentiment(ctx context.Context) error {
	files, err := dataset.ReadBanks[dataset.ProcessedRow](r.Banks, r.processedPath, r.Logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInput
	}
	scorer, err := r.scorer(ctx)
	if err != nil {
		return err
	}

	var all []dataset.SentimentRow
	for _, f := range files {
		reviews := make([]models.ProcessedReview, len(f.Rows))
		for i, row := range f.Rows {
			reviews[i] = row.Review()
		}
		results, err := sentiment.Analyze(ctx, scorer, reviews, r.Config.Sentiment.BatchSize, r.Logger)
		if err != nil {
			return fmt.Errorf("sentiment for %s: %w", f.Bank.Name, err)
		}
		rows := make([]dataset.SentimentRow, len(results))
		for i, res := range results {
			rows[i] = dataset.NewSentimentRow(reviews[i], res)
		}
		if err := dataset.Write(dataset.SentimentPath(r.Config.SentimentDir(), f.Bank), rows); err != nil {
			return err
		}
		all = append(all, rows...)
	}
	return dataset.Write(dataset.AggregatePath(r.Config.SentimentDir()), sentiment.Aggregate(all))
}

// Load merges thematic and sentiment output and upserts it into the store.
// Every bank is written in its own batch; a failing row aborts the stage.
func (r *Runner) Load(ctx context.Context) error {
	merged, err := r.analyzed()
	if err != nil {
		return err
	}
	store, err := r.store(ctx)
	if err != nil {
		return err
	}
	if err := store.CreateSchema(ctx); err != nil {
		return err
	}
	if err := store.UpsertBanks(ctx, r.Banks); err != nil {
		return err
	}
	for _, b := range merged {
		if err := store.UpsertReviews(ctx, b.Rows); err != nil {
			return fmt.Errorf("load %s: %w", b.Bank.Name, err)
		}
		r.Logger.Info("[Pipeline] Loaded reviews",
			slog.String("bank", b.Bank.Name),
			slog.Int("count", len(b.Rows)))
	}
	return nil
}

// Insights writes the bank comparison, drivers and pain points, charts and
// the report into the insights directory.
func (r *Runner) Insights(ctx context.Context) error {
	merged, err := r.analyzed()
	if err != nil {
		return err
	}
	var all []models.AnalyzedReview
	for _, b := range merged {
		all = append(all, b.Rows...)
	}

	dir := r.Config.InsightsDir()
	report := insights.Report{
		Comparison: insights.CompareBanks(all),
		Themes:     insights.FindDriversPainPoints(all),
	}
	if err := dataset.Write(filepath.Join(dir, "bank_comparison.csv"), report.Comparison); err != nil {
		return err
	}
	for _, t := range report.Themes {
		r.Logger.Info("[Pipeline] Drivers and pain points",
			slog.String("bank", t.Bank),
			slog.Any("drivers", t.Drivers),
			slog.Any("pain_points", t.PainPoints))
	}

	charts, err := insights.WriteCharts(all, dir)
	if err != nil {
		// Charts are optional; the report is written without them.
		r.Logger.Warn("[Pipeline] Chart rendering failed",
			slog.String("error", err.Error()))
	}
	report.Charts = charts
	return report.Write(dir)
}

// analyzed reads and merges the thematic and sentiment files of every bank.
// Banks missing either file are skipped.
func (r *Runner) analyzed() ([]dataset.BankRows[models.AnalyzedReview], error) {
	thematic, err := dataset.ReadBanks[dataset.ThematicRow](r.Banks, r.thematicPath, r.Logger)
	if err != nil {
		return nil, err
	}
	var out []dataset.BankRows[models.AnalyzedReview]
	for _, t := range thematic {
		s, err := dataset.Read[dataset.SentimentRow](dataset.SentimentPath(r.Config.SentimentDir(), t.Bank))
		if errors.Is(err, dataset.ErrMissingInput) {
			r.Logger.Error("[Pipeline] Sentiment file missing, skipping bank",
				slog.String("bank", t.Bank.Name))
			continue
		}
		if err != nil {
			return nil, err
		}
		rows, unmatched := dataset.Merge(t.Rows, s)
		if unmatched > 0 {
			r.Logger.Warn("[Pipeline] Dropped reviews without sentiment",
				slog.String("bank", t.Bank.Name),
				slog.Int("count", unmatched))
		}
		out = append(out, dataset.BankRows[models.AnalyzedReview]{Bank: t.Bank, Rows: rows})
	}
	if len(out) == 0 {
		return nil, ErrNoInput
	}
	return out, nil
}

func (r *Runner) rawPath(b models.Bank) string { return dataset.RawPath(r.Config.RawDir(), b) }
func (r *Runner) processedPath(b models.Bank) string {
	return dataset.ProcessedPath(r.Config.ProcessedDir(), b)
}
func (r *Runner) thematicPath(b models.Bank) string {
	return dataset.ThematicPath(r.Config.ThematicDir(), b)
}
