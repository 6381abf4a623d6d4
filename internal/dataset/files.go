// Package dataset reads and writes the per-bank CSV files the stages hand
// to each other.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/spacesedan/bankreviews/internal/models"
)

// ErrMissingInput marks a bank whose input file does not exist.
var ErrMissingInput = errors.New("input file not found")

func RawPath(dir string, bank models.Bank) string {
	return filepath.Join(dir, bank.Slug()+"_reviews.csv")
}

func ProcessedPath(dir string, bank models.Bank) string {
	return filepath.Join(dir, bank.Slug()+"_clean.csv")
}

func ThematicPath(dir string, bank models.Bank) string {
	return filepath.Join(dir, bank.Slug()+"_thematic_analysis.csv")
}

func SentimentPath(dir string, bank models.Bank) string {
	return filepath.Join(dir, "sentiment_"+bank.Slug()+".csv")
}

func AggregatePath(dir string) string {
	return filepath.Join(dir, "sentiment_aggregated.csv")
}

// Read decodes the CSV at path into a slice of T. A missing file is reported
// as ErrMissingInput.
func Read[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}

// Write replaces the file at path, creating parent directories.
func Write[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// BankRows is the content of one bank's file.
type BankRows[T any] struct {
	Bank models.Bank
	Rows []T
}

// ReadBanks reads one file per bank. Banks whose file is missing are logged
// and left out; any other read error aborts.
func ReadBanks[T any](banks []models.Bank, path func(models.Bank) string, logger *slog.Logger) ([]BankRows[T], error) {
	out := make([]BankRows[T], 0, len(banks))
	for _, b := range banks {
		p := path(b)
		rows, err := Read[T](p)
		if errors.Is(err, ErrMissingInput) {
			logger.Error("[Dataset] Input file missing, skipping bank",
				slog.String("bank", b.Name),
				slog.String("path", p))
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Info("[Dataset] Loaded bank file",
			slog.String("bank", b.Name),
			slog.String("path", p),
			slog.Int("rows", len(rows)))
		out = append(out, BankRows[T]{Bank: b, Rows: rows})
	}
	return out, nil
}
