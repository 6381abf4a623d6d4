// Package themes extracts the top TF-IDF keywords of a bank's reviews,
// buckets them into themes with the bank's rule table and labels reviews by
// keyword containment.
package themes

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

// MatchPolicy decides how a theme keyword is looked up in a review.
type MatchPolicy string

const (
	// MatchSubstring: the keyword occurs anywhere in the text, so "add"
	// matches "address".
	MatchSubstring MatchPolicy = "substring"
	// MatchToken: the keyword's tokens occur as a contiguous run of the
	// text's tokens.
	MatchToken MatchPolicy = "token"
)

// ParseMatchPolicy accepts "substring" and "token". Anything else is an error.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchToken:
		return MatchToken, nil
	default:
		return "", fmt.Errorf("unknown theme match policy %q", s)
	}
}

type Assigner struct {
	rules  Rules
	policy MatchPolicy
	topN   int
	logger *slog.Logger
}

// NewAssigner returns an Assigner. Nil rules use DefaultRules.
func NewAssigner(rules Rules, policy MatchPolicy, logger *slog.Logger) *Assigner {
	if rules == nil {
		rules = DefaultRules
	}
	if policy == "" {
		policy = MatchSubstring
	}
	return &Assigner{rules: rules, policy: policy, topN: defaultTopN, logger: logging.OrDiscard(logger)}
}

// BuildThemeMap extracts the top keywords of corpus and buckets them with
// the rule set of bank. A bank without rules gets an empty map, so every
// review is labeled Other.
func (a *Assigner) BuildThemeMap(corpus []string, bank string) models.ThemeMap {
	keywords := TopKeywords(corpus, a.topN)
	terms := make([]string, len(keywords))
	for i, k := range keywords {
		terms[i] = k.Term
	}

	set, err := a.rules.For(bank)
	if err != nil {
		a.logger.Warn("[ThemeAssigner] No rule set, all reviews become Other",
			slog.String("bank", bank))
		return models.ThemeMap{Bank: bank}
	}

	m := Bucket(terms, set)
	m.Bank = bank
	// The vocabulary is derived from this run's corpus only; log it so
	// label drift between runs can be traced.
	a.logger.Info("[ThemeAssigner] Built theme map",
		slog.String("bank", bank),
		slog.Any("keywords", terms),
		slog.Any("themes", m.Names()))
	return m
}

// Bucket assigns each keyword to every theme of set with a trigger that is
// a substring of the keyword. Keywords keep first-seen order without
// duplicates and empty themes are dropped.
func Bucket(keywords []string, set RuleSet) models.ThemeMap {
	var m models.ThemeMap
	for _, rule := range set.Rules {
		seen := map[string]struct{}{}
		var bucket []string
		for _, kw := range keywords {
			if _, dup := seen[kw]; dup || !containsAny(kw, rule.Triggers) {
				continue
			}
			seen[kw] = struct{}{}
			bucket = append(bucket, kw)
		}
		if len(bucket) == 0 {
			continue
		}
		m.Themes = appendTheme(m.Themes, rule.Theme, bucket)
	}
	return m
}

// appendTheme merges a bucket into an existing theme of the same name, which
// happens when a custom table lists a theme twice.
func appendTheme(themes []models.ThemeKeywords, theme string, bucket []string) []models.ThemeKeywords {
	for i := range themes {
		if themes[i].Theme != theme {
			continue
		}
		for _, kw := range bucket {
			if !slices.Contains(themes[i].Keywords, kw) {
				themes[i].Keywords = append(themes[i].Keywords, kw)
			}
		}
		return themes
	}
	return append(themes, models.ThemeKeywords{Theme: theme, Keywords: bucket})
}

// AssignTheme returns the first theme, in map order, with a keyword found in
// processedText, or Other.
func (a *Assigner) AssignTheme(processedText string, m models.ThemeMap) string {
	text := strings.ToLower(processedText)
	var tokens []string
	if a.policy == MatchToken {
		tokens = strings.Fields(text)
	}
	for _, t := range m.Themes {
		for _, kw := range t.Keywords {
			kw = strings.ToLower(kw)
			if a.policy == MatchToken {
				if containsRun(tokens, strings.Fields(kw)) {
					return t.Theme
				}
				continue
			}
			if strings.Contains(text, kw) {
				return t.Theme
			}
		}
	}
	return models.ThemeOther
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsRun(tokens, run []string) bool {
	if len(run) == 0 || len(run) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(run) <= len(tokens); i++ {
		for j, r := range run {
			if tokens[i+j] != r {
				continue outer
			}
		}
		return true
	}
	return false
}
