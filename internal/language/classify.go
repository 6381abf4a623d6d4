// Package language decides whether review text is Amharic, English or
// something else, which in turn decides whether it needs translation.
//
// Amharic is recognised from the Ethiopic block (U+1200–U+137F) alone. The
// English/other split is delegated to a Detector; detection failures are
// treated as "other" and never surface to the caller.
package language

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/spacesedan/bankreviews/internal/logging"
)

// Language is the classification of a text span.
type Language int

const (
	Skip    Language = iota // empty or whitespace-only, handled upstream
	Amharic                 // contains Ethiopic code points
	English                 // detector returned "en"
	Other                   // anything else, including detection failures
)

var languageNames = [...]string{
	Skip:    "skip",
	Amharic: "amharic",
	English: "english",
	Other:   "other",
}

func (l Language) String() string {
	if int(l) >= 0 && int(l) < len(languageNames) {
		return languageNames[l]
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

const (
	ethiopicFirst = 0x1200
	ethiopicLast  = 0x137F
)

// ErrUndetectable is returned by detectors for input without usable letters.
var ErrUndetectable = errors.New("language: no features in text")

// Detector returns the ISO 639-1 code of the language of text.
type Detector interface {
	Detect(text string) (string, error)
}

// Classifier classifies texts using Detector for the non-Amharic case.
type Classifier struct {
	detector Detector
	logger   *slog.Logger
}

// NewClassifier returns a Classifier. A nil detector uses WhatlangDetector.
func NewClassifier(detector Detector, logger *slog.Logger) *Classifier {
	if detector == nil {
		detector = WhatlangDetector{}
	}
	return &Classifier{detector: detector, logger: logging.OrDiscard(logger)}
}

// Classify never fails: detector errors classify as Other.
func (c *Classifier) Classify(text string) Language {
	if strings.TrimSpace(text) == "" {
		return Skip
	}
	if IsAmharic(text) {
		return Amharic
	}

	code, err := c.detector.Detect(text)
	if err != nil {
		c.logger.Debug("[LanguageClassifier] Detection failed, treating as other",
			slog.String("error", err.Error()),
			preview(text))
		return Other
	}
	if code == "en" {
		return English
	}
	return Other
}

// IsAmharic reports whether any code point falls in the Ethiopic block.
func IsAmharic(text string) bool {
	for _, r := range text {
		if r >= ethiopicFirst && r <= ethiopicLast {
			return true
		}
	}
	return false
}

// WhatlangDetector adapts whatlanggo to Detector.
type WhatlangDetector struct{}

func (WhatlangDetector) Detect(text string) (string, error) {
	if !hasLetter(text) {
		return "", ErrUndetectable
	}
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Eng {
		return "en", nil
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetectable
	}
	return code, nil
}

func hasLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func preview(text string) slog.Attr {
	const n = 50
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return slog.String("text", string(r))
}
