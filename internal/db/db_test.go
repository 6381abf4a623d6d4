package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

func analyzed(id, bank, theme string) models.AnalyzedReview {
	var r models.AnalyzedReview
	r.ReviewID = id
	r.ReviewText = "text of " + id
	r.Rating = 4
	r.Date = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	r.BankName = bank
	r.Source = models.DefaultSource
	r.ProcessedText = "text"
	r.IdentifiedTheme = theme
	r.SentimentLabel = models.SentimentPositive
	r.SentimentScore = 0.9
	return r
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "reviews.sqlite"), logging.Discard())
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema() error: %v", err)
	}
	return s
}

func TestSQLiteUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema() twice error: %v", err)
	}
	if err := s.UpsertBanks(ctx, models.Banks); err != nil {
		t.Fatalf("UpsertBanks() error: %v", err)
	}
	if err := s.UpsertBanks(ctx, models.Banks); err != nil {
		t.Fatalf("UpsertBanks() again error: %v", err)
	}

	first := []models.AnalyzedReview{
		analyzed("CBE_0", "Commercial Bank of Ethiopia", models.ThemeAccountAccess),
		analyzed("CBE_1", "Commercial Bank of Ethiopia", models.ThemeOther),
	}
	if err := s.UpsertReviews(ctx, first); err != nil {
		t.Fatalf("UpsertReviews() error: %v", err)
	}
	updated := analyzed("CBE_0", "Commercial Bank of Ethiopia", models.ThemeTransactions)
	if err := s.UpsertReviews(ctx, []models.AnalyzedReview{updated}); err != nil {
		t.Fatalf("UpsertReviews() update error: %v", err)
	}

	n, err := s.CountReviews(ctx, "")
	if err != nil || n != 2 {
		t.Fatalf("CountReviews() = %d, %v", n, err)
	}
	var theme, date string
	err = s.DB.QueryRowContext(ctx, `SELECT identified_theme, review_date FROM reviews WHERE review_id = ?`, "CBE_0").Scan(&theme, &date)
	if err != nil {
		t.Fatal(err)
	}
	if theme != models.ThemeTransactions {
		t.Errorf("theme = %q, want last write", theme)
	}
	if date == "" {
		t.Error("review_date empty")
	}

	var banks int
	s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM banks`).Scan(&banks)
	if banks != len(models.Banks) {
		t.Errorf("banks = %d", banks)
	}
}

func TestSQLiteRowFailureAbortsBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	batch := []models.AnalyzedReview{
		analyzed("BOA_0", "Bank of Abyssinia", models.ThemeOther),
		analyzed("", "Bank of Abyssinia", models.ThemeOther),
		analyzed("BOA_2", "Bank of Abyssinia", models.ThemeOther),
	}
	if err := s.UpsertReviews(ctx, batch); err == nil {
		t.Fatal("UpsertReviews() error = nil, want constraint failure")
	}
	n, err := s.CountReviews(ctx, "Bank of Abyssinia")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("stored %d rows after failed batch, want 0", n)
	}
}

type fakeDynamo struct {
	tables      map[string]bool
	created     []string
	writes      map[string]int
	unprocessed int
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	out := &dynamodb.BatchWriteItemOutput{}
	for table, reqs := range in.RequestItems {
		if f.unprocessed > 0 && len(reqs) > 1 {
			f.unprocessed--
			f.writes[table] += len(reqs) - 1
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs[len(reqs)-1:]}
			continue
		}
		f.writes[table] += len(reqs)
	}
	return out, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.tables[*in.TableName] {
		return &dynamodb.DescribeTableOutput{}, nil
	}
	return nil, &types.ResourceNotFoundException{}
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.created = append(f.created, *in.TableName)
	f.tables[*in.TableName] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestDynamoStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := &fakeDynamo{tables: map[string]bool{"Reviews": true}, writes: map[string]int{}, unprocessed: 1}
	s := NewDynamoStore(f, "", logging.Discard())
	s.backoff = time.Millisecond

	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema() error: %v", err)
	}
	if len(f.created) != 1 || f.created[0] != "ReviewsBanks" {
		t.Errorf("created = %v", f.created)
	}

	reviews := make([]models.AnalyzedReview, 30)
	for i := range reviews {
		reviews[i] = analyzed("Dashen_Bank_"+string(rune('a'+i)), "Dashen Bank", models.ThemeOther)
	}
	if err := s.UpsertReviews(ctx, reviews); err != nil {
		t.Fatalf("UpsertReviews() error: %v", err)
	}
	if f.writes["Reviews"] != 30 {
		t.Errorf("writes = %d, want 30", f.writes["Reviews"])
	}

	if err := s.UpsertReviews(ctx, []models.AnalyzedReview{analyzed("", "Dashen Bank", "")}); err == nil {
		t.Error("UpsertReviews(no id) error = nil")
	}
}

func TestReviewToDynamoDBItem(t *testing.T) {
	t.Parallel()

	item, err := ReviewToDynamoDBItem(analyzed("CBE_3", "Commercial Bank of Ethiopia", models.ThemeOther))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"review_id", "review_text", "rating", "bank_name", "processed_text", "identified_theme", "sentiment_label", "sentiment_score", "review_date"} {
		if _, ok := item[key]; !ok {
			t.Errorf("missing attribute %q", key)
		}
	}
	if d, ok := item["review_date"].(*types.AttributeValueMemberS); !ok || d.Value != "2024-03-09" {
		t.Errorf("review_date = %#v", item["review_date"])
	}
}
