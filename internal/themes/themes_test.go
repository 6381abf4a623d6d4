package themes

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spacesedan/bankreviews/internal/models"
)

const cbeName = "Commercial Bank of Ethiopia"

func TestTopKeywords(t *testing.T) {
	t.Parallel()

	corpus := []string{"login error", "", "login error", "transfer slow"}
	got := TopKeywords(corpus, 10)

	var terms []string
	for _, k := range got {
		terms = append(terms, k.Term)
	}
	want := []string{"error", "login", "login error", "slow", "transfer", "transfer slow"}
	if !reflect.DeepEqual(terms, want) {
		t.Fatalf("TopKeywords() terms = %v, want %v", terms, want)
	}
	if got[0].Count != 2 || got[3].Count != 1 {
		t.Errorf("counts = %d, %d", got[0].Count, got[3].Count)
	}
	if got[0].Score <= got[3].Score {
		t.Errorf("scores not descending: %v", got)
	}
}

func TestTopKeywordsLimitAndStopwords(t *testing.T) {
	t.Parallel()

	got := TopKeywords([]string{"the app is a very good app and x"}, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, k := range got {
		if k.Term == "the" || k.Term == "x" || k.Term == "very" {
			t.Errorf("unexpected term %q", k.Term)
		}
	}
	if got[0].Term != "app" {
		t.Errorf("top term = %q, want app", got[0].Term)
	}
	if TopKeywords([]string{"", "  "}, 10) != nil {
		t.Error("empty corpus should yield nil")
	}
}

func TestBucketScenario(t *testing.T) {
	t.Parallel()

	set, err := DefaultRules.For(cbeName)
	if err != nil {
		t.Fatal(err)
	}
	m := Bucket([]string{"login error", "transfer slow", "login error"}, set)
	want := []models.ThemeKeywords{
		{Theme: models.ThemeAccountAccess, Keywords: []string{"login error"}},
		{Theme: models.ThemeTransactions, Keywords: []string{"transfer slow"}},
	}
	if !reflect.DeepEqual(m.Themes, want) {
		t.Errorf("Bucket() = %+v, want %+v", m.Themes, want)
	}

	a := NewAssigner(nil, MatchSubstring, nil)
	if got := a.AssignTheme("app login error again", m); got != models.ThemeAccountAccess {
		t.Errorf("AssignTheme() = %q", got)
	}
	if got := a.AssignTheme("great bank", m); got != models.ThemeOther {
		t.Errorf("AssignTheme(no match) = %q", got)
	}
}

func TestBuildThemeMap(t *testing.T) {
	t.Parallel()

	a := NewAssigner(nil, MatchSubstring, nil)
	m := a.BuildThemeMap([]string{"login error", "login error", "transfer slow"}, cbeName)
	if m.Bank != cbeName {
		t.Errorf("Bank = %q", m.Bank)
	}
	if got := m.Names(); !reflect.DeepEqual(got, []string{models.ThemeAccountAccess, models.ThemeTransactions}) {
		t.Errorf("Names() = %v", got)
	}
	text := "app login error again"
	first := a.AssignTheme(text, m)
	for i := 0; i < 5; i++ {
		if got := a.AssignTheme(text, m); got != first {
			t.Fatalf("AssignTheme() not deterministic: %q then %q", first, got)
		}
	}

	if got := a.BuildThemeMap([]string{"login"}, "Awash Bank"); len(got.Themes) != 0 {
		t.Errorf("unknown bank themes = %v", got.Themes)
	}
}

func TestDashenHasNoCustomerSupport(t *testing.T) {
	t.Parallel()

	set, err := DefaultRules.For("dashen bank reviews")
	if err != nil {
		t.Fatal(err)
	}
	m := Bucket([]string{"support team", "smooth app"}, set)
	if m.Keywords(models.ThemeCustomerSupport) != nil {
		t.Error("Dashen should have no Customer Support theme")
	}
	if got := m.Keywords(models.ThemeUserInterface); !reflect.DeepEqual(got, []string{"smooth app"}) {
		t.Errorf("UI keywords = %v", got)
	}
}

func TestFirstThemeWins(t *testing.T) {
	t.Parallel()

	m := models.ThemeMap{Themes: []models.ThemeKeywords{
		{Theme: models.ThemeTransactions, Keywords: []string{"transfer"}},
		{Theme: models.ThemeAccountAccess, Keywords: []string{"login"}},
	}}
	a := NewAssigner(nil, MatchSubstring, nil)
	if got := a.AssignTheme("login then transfer", m); got != models.ThemeTransactions {
		t.Errorf("AssignTheme() = %q, want first theme in map order", got)
	}
}

func TestMatchPolicies(t *testing.T) {
	t.Parallel()

	m := models.ThemeMap{Themes: []models.ThemeKeywords{
		{Theme: models.ThemeFeatureRequests, Keywords: []string{"add"}},
		{Theme: models.ThemeTransactions, Keywords: []string{"transfer slow"}},
	}}
	tests := []struct {
		policy MatchPolicy
		text   string
		want   string
	}{
		{MatchSubstring, "change address", models.ThemeFeatureRequests},
		{MatchToken, "change address", models.ThemeOther},
		{MatchToken, "please add option", models.ThemeFeatureRequests},
		{MatchToken, "transfer slow today", models.ThemeTransactions},
		{MatchToken, "slow transfer", models.ThemeOther},
	}
	for _, tt := range tests {
		a := NewAssigner(nil, tt.policy, nil)
		if got := a.AssignTheme(tt.text, m); got != tt.want {
			t.Errorf("%s AssignTheme(%q) = %q, want %q", tt.policy, tt.text, got, tt.want)
		}
	}
}

func TestParseMatchPolicy(t *testing.T) {
	t.Parallel()

	if p, err := ParseMatchPolicy(""); err != nil || p != MatchSubstring {
		t.Errorf("ParseMatchPolicy(\"\") = %q, %v", p, err)
	}
	if p, err := ParseMatchPolicy("TOKEN"); err != nil || p != MatchToken {
		t.Errorf("ParseMatchPolicy(TOKEN) = %q, %v", p, err)
	}
	if _, err := ParseMatchPolicy("regex"); err == nil {
		t.Error("ParseMatchPolicy(regex) error = nil")
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	rules, err := LoadRules("")
	if err != nil || len(rules) != len(DefaultRules) {
		t.Fatalf("LoadRules(\"\") = %d sets, %v", len(rules), err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `[{"key":"awash","rules":[{"theme":"Customer Support","triggers":["agent"]}]}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err = LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error: %v", err)
	}
	set, err := rules.For("Awash Bank")
	if err != nil || set.Rules[0].Triggers[0] != "agent" {
		t.Errorf("For() = %+v, %v", set, err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`[{"key":"","rules":[]}]`), 0o644)
	if _, err := LoadRules(bad); err == nil {
		t.Error("LoadRules(bad) error = nil")
	}
}
