package preprocessing

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/spacesedan/bankreviews/internal/dataset"
	"github.com/spacesedan/bankreviews/internal/models"
)

type mapLemmatizer map[string]string

func (m mapLemmatizer) Lemma(w string) string {
	if l, ok := m[w]; ok {
		return l
	}
	return w
}

type panicLemmatizer struct{}

func (panicLemmatizer) Lemma(string) string { panic("dictionary corrupted") }

var testLemmas = mapLemmatizer{
	"crashing":  "crash",
	"keeps":     "keep",
	"transfers": "transfer",
	"was":       "be",
	"better":    "good",
	"good":      "well",
	"worse":     "bad",
	"worst":     "bad",
	"services":  "service",
	"having":    "have",
	"apps":      "app's",
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace", in: " \n\t", want: ""},
		{name: "sentence", in: "The app keeps crashing!! I don't like it.", want: "app keep crash like"},
		{name: "clitic possessive", in: "CBE's transfers", want: "cbe transfer"},
		{name: "unstable lemma keeps word", in: "better service", want: "better service"},
		{name: "comparative kept", in: "worse than worst", want: "worse worst"},
		{name: "non-alphanumeric lemma dropped", in: "apps work", want: "work"},
		{name: "stopword only", in: "it was what it was", want: ""},
		{name: "nfc and lowercase", in: "ÉCRAN", want: "écran"},
		{name: "interior punctuation dropped", in: "e-mail app.it ok", want: "ok"},
		{name: "amharic kept", in: "ሰላም።", want: "ሰላም"},
	}
	n := NewNormalizer(testLemmas, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"The app keeps crashing!! I don't like it.",
		"Transfers were SLOW, better services needed; can't login",
		"Having issues with OTP... \"please\" fix it",
		"ሰላም ነው, good app 👍",
	}
	gl, err := NewGolemLemmatizer()
	if err != nil {
		t.Fatalf("NewGolemLemmatizer() error: %v", err)
	}
	for _, lem := range []Lemmatizer{testLemmas, gl} {
		n := NewNormalizer(lem, nil)
		for _, in := range inputs {
			once := n.Normalize(in)
			if twice := n.Normalize(once); twice != once {
				t.Errorf("Normalize not idempotent: %q -> %q -> %q", in, once, twice)
			}
		}
	}
}

func TestNormalizeGolemKeepsComparatives(t *testing.T) {
	t.Parallel()

	gl, err := NewGolemLemmatizer()
	if err != nil {
		t.Fatalf("NewGolemLemmatizer() error: %v", err)
	}
	n := NewNormalizer(gl, nil)
	want := "worse app better transfer"
	if got := n.Normalize("Worse app, better transfers"); got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeRecoversPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewNormalizer(panicLemmatizer{}, slog.New(slog.NewTextHandler(&buf, nil)))
	if got := n.Normalize("slow transfer"); got != "" {
		t.Errorf("Normalize() = %q, want empty", got)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected error log, got %q", buf.String())
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := Tokenize(`"Great" app's (ui) won't`)
	want := []string{`"`, "Great", `"`, "app", "'s", "(", "ui", ")", "wo", "n't"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %q, want %q", got, want)
	}
}

func TestParseRating(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"4", 4, true},
		{"5.0", 5, true},
		{" 1 ", 1, true},
		{"0", 0, false},
		{"6", 0, false},
		{"3.5", 0, false},
		{"five", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRating(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRating(%q) = %d, %v", tt.in, got, ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2024-05-01", "2024-05-01 10:11:12", "2024-05-01T10:11:12Z", "05/01/2024", "May 1, 2024"} {
		d, ok := ParseDate(in)
		if !ok || d.Format(models.DateLayout) != "2024-05-01" {
			t.Errorf("ParseDate(%q) = %v, %v", in, d, ok)
		}
	}
	for _, in := range []string{"", "yesterday", "2024-13-45"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) ok, want failure", in)
		}
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	bank := models.Banks[1]
	rows := []dataset.RawReviewRow{
		{ReviewText: "Great app", Rating: "5", Date: "2024-05-01"},
		{ReviewText: "Great app", Rating: "4", Date: "2024-05-01"},
		{ReviewText: "Great app", Rating: "5", Date: "2024-05-02"},
		{ReviewText: "", Rating: "3", Date: "2024-05-01"},
		{ReviewText: "no rating", Rating: "", Date: "2024-05-01"},
		{ReviewText: "bad rating", Rating: "9", Date: "2024-05-01"},
		{ReviewID: "custom", ReviewText: "slow", Rating: "2.0", Date: "not a date", Source: "App Store"},
	}

	got, rep := Clean(rows, bank, nil)
	want := CleanReport{Input: 7, MissingText: 1, MissingRate: 1, BadRating: 1, Duplicates: 1, InvalidDates: 1, Output: 3}
	if rep != want {
		t.Errorf("report = %+v, want %+v", rep, want)
	}
	if len(got) != 3 {
		t.Fatalf("Clean() = %d reviews", len(got))
	}
	if got[0].Rating != 5 || got[0].ReviewID != "Bank_of_Abyssinia_0" || got[0].Source != models.DefaultSource {
		t.Errorf("first review = %+v", got[0])
	}
	if got[1].DateString() != "2024-05-02" {
		t.Errorf("second review date = %q", got[1].DateString())
	}
	if got[2].ReviewID != "custom" || got[2].Rating != 2 || got[2].DateString() != "" || got[2].Source != "App Store" {
		t.Errorf("third review = %+v", got[2])
	}
	for _, r := range got {
		if r.BankName != bank.Name {
			t.Errorf("bank = %q", r.BankName)
		}
	}
}

func TestLogDataQuality(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rows := []dataset.RawReviewRow{
		{ReviewText: "a", Rating: "5"},
		{ReviewText: "", Rating: "1"},
	}
	q := LogDataQuality(rows, models.Banks[0], slog.New(slog.NewTextHandler(&buf, nil)))
	if q.Rows != 2 || q.Ratings != [5]int{1, 0, 0, 0, 1} {
		t.Errorf("quality = %+v", q)
	}
	if q.Missing[1].Column != "review_text" || q.Missing[1].Percent != 50 {
		t.Errorf("missing = %+v", q.Missing)
	}
	out := buf.String()
	for _, want := range []string{"missing_review_text=50.0%", "rating_5=1", "rating_1=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}
