package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

var cbe = models.Banks[0]

func TestPaths(t *testing.T) {
	t.Parallel()
	tests := []struct {
		got, want string
	}{
		{RawPath("raw", cbe), filepath.Join("raw", "commercial_bank_of_ethiopia_reviews.csv")},
		{ProcessedPath("p", cbe), filepath.Join("p", "commercial_bank_of_ethiopia_clean.csv")},
		{ThematicPath("t", cbe), filepath.Join("t", "commercial_bank_of_ethiopia_thematic_analysis.csv")},
		{SentimentPath("a", cbe), filepath.Join("a", "sentiment_commercial_bank_of_ethiopia.csv")},
		{AggregatePath("a"), filepath.Join("a", "sentiment_aggregated.csv")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("path = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestWriteReadProcessed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "clean.csv")
	in := []ProcessedRow{
		{ReviewID: "CBE_0", ReviewText: "ጥሩ, \"quoted\" text", Rating: 5, Date: "2024-05-01", Bank: cbe.Name, Source: models.DefaultSource, ProcessedText: ""},
		{ReviewID: "CBE_1", ReviewText: "line\nbreak", Rating: 1, Date: "", Bank: cbe.Name, Source: models.DefaultSource, ProcessedText: "line break"},
	}
	if err := Write(path, in); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out, err := Read[ProcessedRow](path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("Read() rows = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("row %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestReadMissing(t *testing.T) {
	t.Parallel()

	_, err := Read[RawReviewRow](filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("Read() error = %v, want ErrMissingInput", err)
	}
}

func TestReadRawPartialColumns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "review_text,rating,date\nGreat app,5,2024-01-02\nslow,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := Read[RawReviewRow](path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(rows) != 2 || rows[0].Rating != "5" || rows[1].Rating != "" || rows[0].ReviewID != "" {
		t.Errorf("Read() = %+v", rows)
	}
}

func TestReadBanksSkipsMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dashen := models.Banks[2]
	if err := Write(ProcessedPath(dir, dashen), []ProcessedRow{{ReviewID: "Dashen_Bank_0", Rating: 4}}); err != nil {
		t.Fatal(err)
	}

	got, err := ReadBanks[ProcessedRow](models.Banks, func(b models.Bank) string { return ProcessedPath(dir, b) }, logging.Discard())
	if err != nil {
		t.Fatalf("ReadBanks() error: %v", err)
	}
	if len(got) != 1 || got[0].Bank.Code != "Dashen" || len(got[0].Rows) != 1 {
		t.Errorf("ReadBanks() = %+v", got)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	thematic := []ThematicRow{
		{ReviewID: "CBE_0", ReviewText: "great", Rating: 5, Date: "2024-05-01", Bank: cbe.Name, Source: "App Store", IdentifiedTheme: models.ThemeUserInterface},
		{ReviewID: "CBE_1", ReviewText: "login error", Rating: 1, Bank: cbe.Name, IdentifiedTheme: models.ThemeAccountAccess},
		{ReviewID: "CBE_2", ReviewText: "no match", Rating: 3, Bank: cbe.Name, IdentifiedTheme: models.ThemeOther},
	}
	sentiment := []SentimentRow{
		{ReviewID: "CBE_0", ReviewText: "great", SentimentLabel: "positive", SentimentScore: 0.99},
		{ReviewID: "other_id", ReviewText: "login error", SentimentLabel: "NEGATIVE", SentimentScore: 0.91},
	}

	merged, unmatched := Merge(thematic, sentiment)
	if len(merged) != 2 || unmatched != 1 {
		t.Fatalf("Merge() = %d rows, %d unmatched", len(merged), unmatched)
	}
	if merged[0].SentimentLabel != models.SentimentPositive || merged[0].SentimentScore != 0.99 {
		t.Errorf("by id = %+v", merged[0])
	}
	if merged[1].SentimentLabel != models.SentimentNegative {
		t.Errorf("by text = %+v", merged[1])
	}
	for _, m := range merged {
		if m.ReviewID == "CBE_2" {
			t.Errorf("unmatched row kept: %+v", m)
		}
	}
	if merged[0].Source != "App Store" || merged[1].Source != models.DefaultSource {
		t.Errorf("sources = %q, %q", merged[0].Source, merged[1].Source)
	}
	if want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC); !merged[0].Date.Equal(want) {
		t.Errorf("date = %v", merged[0].Date)
	}
}

func TestThematicRowKeepsSource(t *testing.T) {
	t.Parallel()

	review := models.ProcessedReview{
		Review: models.Review{ReviewID: "CBE_0", ReviewText: "ok", Rating: 4, BankName: cbe.Name, Source: "App Store"},
	}
	path := filepath.Join(t.TempDir(), "thematic.csv")
	if err := Write(path, []ThematicRow{NewThematicRow(review), {ReviewID: "CBE_1", Bank: cbe.Name}}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	rows, err := Read[ThematicRow](path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := rows[0].Review().Source; got != "App Store" {
		t.Errorf("source = %q, want App Store", got)
	}
	if got := rows[1].Review().Source; got != models.DefaultSource {
		t.Errorf("empty source = %q, want %q", got, models.DefaultSource)
	}
}
