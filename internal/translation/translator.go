// Package translation brings non-English review text into English before
// normalization. Translate is total: failures keep the original text.
package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/spacesedan/bankreviews/internal/language"
	"github.com/spacesedan/bankreviews/internal/logging"
)

const (
	AmharicSourceHint = "am-ET"
	// AutoSourceHint lets the backend detect the source language.
	AutoSourceHint = ""

	CacheTTL       = 7 * 24 * time.Hour
	cacheKeyPrefix = "translation:"
)

// Backend performs one translation to English.
type Backend interface {
	Translate(ctx context.Context, text, sourceHint string) (string, error)
}

// Cache memoizes translations. Get reports a miss as ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type Translator struct {
	backend Backend
	cache   Cache
	logger  *slog.Logger
}

// New returns a Translator. A nil backend passes every text through; a nil
// cache disables caching.
func New(backend Backend, cache Cache, logger *slog.Logger) *Translator {
	return &Translator{backend: backend, cache: cache, logger: logging.OrDiscard(logger)}
}

// Translate returns the English rendering of text, or text itself when no
// translation is needed or the backend fails.
func (t *Translator) Translate(ctx context.Context, text string, lang language.Language) string {
	hint, ok := SourceHint(text, lang)
	if !ok || t.backend == nil {
		return text
	}

	key := CacheKey(hint, text)
	if t.cache != nil {
		cached, hit, err := t.cache.Get(ctx, key)
		switch {
		case err != nil:
			t.logger.Warn("[Translator] Cache lookup failed",
				slog.String("error", err.Error()))
		case hit && cached != "":
			return cached
		}
	}

	translated, err := t.backend.Translate(ctx, text, hint)
	if err != nil {
		t.logger.Warn("[Translator] Translation failed, keeping original text",
			slog.String("language", lang.String()),
			slog.String("error", err.Error()),
			preview(text))
		return text
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		t.logger.Warn("[Translator] Translation returned empty text, keeping original",
			slog.String("language", lang.String()),
			preview(text))
		return text
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, translated, CacheTTL); err != nil {
			t.logger.Warn("[Translator] Cache store failed",
				slog.String("error", err.Error()))
		}
	}
	return translated
}

// SourceHint decides whether text needs translation and with which source
// hint. Amharic always goes to the backend as am-ET; other text only when it
// carries characters outside plain English punctuation.
func SourceHint(text string, lang language.Language) (string, bool) {
	if lang == language.Skip || lang == language.English || !IsMeaningful(text) {
		return "", false
	}
	if lang == language.Amharic {
		return AmharicSourceHint, true
	}
	if HasNonEnglishChars(text) {
		return AutoSourceHint, true
	}
	return "", false
}

// IsMeaningful reports whether text keeps more than three code points after
// dropping everything but word characters, whitespace and .,!?'"- and
// trimming.
func IsMeaningful(text string) bool {
	var b strings.Builder
	for _, r := range text {
		if isWordRune(r) || unicode.IsSpace(r) || strings.ContainsRune(`.,!?'"-`, r) {
			b.WriteRune(r)
		}
	}
	return len([]rune(strings.TrimSpace(b.String()))) > 3
}

// HasNonEnglishChars reports whether text contains anything outside
// [A-Za-z0-9 .,!?'"-].
func HasNonEnglishChars(text string) bool {
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(` .,!?'"-`, r):
		default:
			return true
		}
	}
	return false
}

// CacheKey is "translation:<hint>:<sha256 of text>".
func CacheKey(hint, text string) string {
	sum := sha256.Sum256([]byte(text))
	if hint == "" {
		hint = "auto"
	}
	return cacheKeyPrefix + hint + ":" + hex.EncodeToString(sum[:])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func preview(text string) slog.Attr {
	r := []rune(text)
	if len(r) > 50 {
		r = r[:50]
	}
	return slog.String("text", string(r))
}
