package insights

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spacesedan/bankreviews/internal/models"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth   = 10 * vg.Inch
	chartHeight  = 6 * vg.Inch
	barWidth     = vg.Length(18)
	themesInPlot = 5
)

// WriteCharts renders the PNG charts into dir and returns their file names.
func WriteCharts(reviews []models.AnalyzedReview, dir string) ([]string, error) {
	charts := []struct {
		name string
		draw func([]models.AnalyzedReview) (*plot.Plot, error)
	}{
		{"rating_distribution.png", RatingDistribution},
		{"sentiment_by_rating.png", SentimentByRating},
		{"theme_distribution.png", ThemeDistribution},
		{"sentiment_trends.png", SentimentTrends},
	}
	names := make([]string, 0, len(charts))
	for _, c := range charts {
		p, err := c.draw(reviews)
		if err != nil {
			return names, fmt.Errorf("draw %s: %w", c.name, err)
		}
		if err := save(p, dir, c.name); err != nil {
			return names, err
		}
		names = append(names, c.name)
	}
	return names, nil
}

// WriteDataQualityCharts renders the missing-value and rating charts of one
// raw file into dir and returns their file names.
func WriteDataQualityCharts(q models.DataQuality, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	slug := q.Bank.Slug()
	charts := []struct {
		name string
		draw func(models.DataQuality) (*plot.Plot, error)
	}{
		{slug + "_missing_data.png", MissingData},
		{slug + "_rating_distribution.png", RawRatingDistribution},
	}
	names := make([]string, 0, len(charts))
	for _, c := range charts {
		p, err := c.draw(q)
		if err != nil {
			return names, fmt.Errorf("draw %s: %w", c.name, err)
		}
		if err := save(p, dir, c.name); err != nil {
			return names, err
		}
		names = append(names, c.name)
	}
	return names, nil
}

func save(p *plot.Plot, dir, name string) error {
	if err := p.Save(chartWidth, chartHeight, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// RatingDistribution shows review counts per rating, one bar group per bank.
func RatingDistribution(reviews []models.AnalyzedReview) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Rating Distribution by Bank"
	p.X.Label.Text = "Rating (1-5)"
	p.Y.Label.Text = "Number of Reviews"

	groups := groupByBank(reviews)
	err := groupedBars(p, groups.order, func(bank string) plotter.Values {
		v := make(plotter.Values, 5)
		for _, r := range groups.groups[bank] {
			if r.Rating >= 1 && r.Rating <= 5 {
				v[r.Rating-1]++
			}
		}
		return v
	})
	if err != nil {
		return nil, err
	}
	p.NominalX("1", "2", "3", "4", "5")
	return p, nil
}

// SentimentByRating shows the mean sentiment score per rating for each bank.
func SentimentByRating(reviews []models.AnalyzedReview) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Mean Sentiment Score by Rating"
	p.X.Label.Text = "Rating (1-5)"
	p.Y.Label.Text = "Mean Sentiment Score"

	groups := groupByBank(reviews)
	err := groupedBars(p, groups.order, func(bank string) plotter.Values {
		var byRating [5][]float64
		for _, r := range groups.groups[bank] {
			if r.Rating >= 1 && r.Rating <= 5 {
				byRating[r.Rating-1] = append(byRating[r.Rating-1], r.SentimentScore)
			}
		}
		v := make(plotter.Values, 5)
		for i, scores := range byRating {
			if len(scores) > 0 {
				v[i] = stat.Mean(scores, nil)
			}
		}
		return v
	})
	if err != nil {
		return nil, err
	}
	p.NominalX("1", "2", "3", "4", "5")
	return p, nil
}

// ThemeDistribution shows the top themes over all banks, one bar group per
// bank.
func ThemeDistribution(reviews []models.AnalyzedReview) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Top Themes by Bank"
	p.Y.Label.Text = "Number of Reviews"

	var themes []string
	for _, c := range ThemeCounts(reviews) {
		if len(themes) == themesInPlot {
			break
		}
		themes = append(themes, c.Theme)
	}
	if len(themes) == 0 {
		themes = []string{models.ThemeOther}
	}

	groups := groupByBank(reviews)
	err := groupedBars(p, groups.order, func(bank string) plotter.Values {
		v := make(plotter.Values, len(themes))
		for _, r := range groups.groups[bank] {
			if i := slices.Index(themes, r.IdentifiedTheme); i >= 0 {
				v[i]++
			}
		}
		return v
	})
	if err != nil {
		return nil, err
	}
	p.NominalX(themes...)
	return p, nil
}

// SentimentTrends plots the mean sentiment score per review date, one line
// per bank. Reviews without a date are left out.
func SentimentTrends(reviews []models.AnalyzedReview) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sentiment Trends Over Time"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Mean Sentiment Score"
	p.X.Tick.Marker = plot.TimeTicks{Format: models.DateLayout}

	groups := groupByBank(reviews)
	for i, bank := range groups.order {
		xys := dailyMeans(groups.groups[bank])
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Length(2)
		p.Add(line)
		p.Legend.Add(bank, line)
	}
	p.Legend.Top = true
	return p, nil
}

// dailyMeans returns (unix seconds, mean score) points sorted by date.
func dailyMeans(reviews []models.AnalyzedReview) plotter.XYs {
	byDay := map[time.Time][]float64{}
	for _, r := range reviews {
		if r.Date.IsZero() {
			continue
		}
		day := r.Date.UTC().Truncate(24 * time.Hour)
		byDay[day] = append(byDay[day], r.SentimentScore)
	}
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	xys := make(plotter.XYs, len(days))
	for i, d := range days {
		xys[i].X = float64(d.Unix())
		xys[i].Y = stat.Mean(byDay[d], nil)
	}
	return xys
}

// MissingData shows the percentage of empty values per raw column.
func MissingData(q models.DataQuality) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Missing Data: " + q.Bank.Name
	p.Y.Label.Text = "Missing (%)"

	v := make(plotter.Values, len(q.Missing))
	columns := make([]string, len(q.Missing))
	for i, m := range q.Missing {
		v[i] = m.Percent
		columns[i] = m.Column
	}
	if err := singleBars(p, v); err != nil {
		return nil, err
	}
	p.NominalX(columns...)
	return p, nil
}

// RawRatingDistribution shows the rating counts of a raw file before
// cleaning.
func RawRatingDistribution(q models.DataQuality) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Rating Distribution: " + q.Bank.Name
	p.X.Label.Text = "Rating (1-5)"
	p.Y.Label.Text = "Number of Reviews"

	v := make(plotter.Values, len(q.Ratings))
	for i, n := range q.Ratings {
		v[i] = float64(n)
	}
	if err := singleBars(p, v); err != nil {
		return nil, err
	}
	p.NominalX("1", "2", "3", "4", "5")
	return p, nil
}

func singleBars(p *plot.Plot, v plotter.Values) error {
	if len(v) == 0 {
		v = plotter.Values{0}
	}
	bars, err := plotter.NewBarChart(v, 2*barWidth)
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	return nil
}

// groupedBars adds one bar series per bank, offset so the groups sit side
// by side.
func groupedBars(p *plot.Plot, banks []string, values func(string) plotter.Values) error {
	for i, bank := range banks {
		bars, err := plotter.NewBarChart(values(bank), barWidth)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-float64(len(banks)-1)/2) * barWidth
		p.Add(bars)
		p.Legend.Add(bank, bars)
	}
	p.Legend.Top = true
	return nil
}
