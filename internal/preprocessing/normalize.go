package preprocessing

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/spacesedan/bankreviews/internal/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Lemmatizer maps a lowercase word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// NewGolemLemmatizer loads the English golem dictionary.
func NewGolemLemmatizer() (Lemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load lemmatizer dictionary: %w", err)
	}
	return l, nil
}

type identityLemmatizer struct{}

func (identityLemmatizer) Lemma(word string) string { return word }

// Normalizer turns review text into space separated content lemmas. Its
// output is a fixed point: normalizing it again returns it unchanged.
type Normalizer struct {
	lemmatizer Lemmatizer
	logger     *slog.Logger
}

// NewNormalizer returns a Normalizer. A nil lemmatizer leaves words as
// they are.
func NewNormalizer(lemmatizer Lemmatizer, logger *slog.Logger) *Normalizer {
	if lemmatizer == nil {
		lemmatizer = identityLemmatizer{}
	}
	return &Normalizer{lemmatizer: lemmatizer, logger: logging.OrDiscard(logger)}
}

// Normalize never fails. A panic in tokenization or lemmatization is logged
// and yields "".
func (n *Normalizer) Normalize(text string) (out string) {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("[Normalizer] Tokenization failed, using empty text",
				slog.Any("panic", r),
				slog.Int("length", len(text)))
			out = ""
		}
	}()

	text = cases.Lower(language.Und).String(norm.NFC.String(text))

	kept := make([]string, 0, 16)
	for _, tok := range Tokenize(text) {
		if !isAlphanumeric(tok) || isStopword(tok) {
			continue
		}
		lemma := n.lemma(tok)
		if !isAlphanumeric(lemma) || isStopword(lemma) {
			continue
		}
		kept = append(kept, lemma)
	}
	return strings.Join(kept, " ")
}

// comparatives are kept as written; a part-of-speech blind lemmatizer folds
// them into a different word ("worse" to "bad", "better" to "good").
var comparatives = map[string]bool{
	"better": true, "best": true,
	"worse": true, "worst": true,
	"less": true, "least": true,
	"further": true, "furthest": true,
	"farther": true, "farthest": true,
}

// lemma keeps a word's lemma only when the lemma is itself stable, so a
// second pass over the output maps every token to itself.
func (n *Normalizer) lemma(word string) string {
	if comparatives[word] {
		return word
	}
	l := strings.ToLower(n.lemmatizer.Lemma(word))
	if l == "" {
		return word
	}
	if strings.ToLower(n.lemmatizer.Lemma(l)) != l {
		return word
	}
	return l
}

var clitics = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// Tokenize splits on whitespace, then peels punctuation and symbols off both
// ends of each chunk and splits English clitics from the word they follow.
func Tokenize(text string) []string {
	var tokens []string
	for _, chunk := range strings.Fields(text) {
		r := []rune(chunk)

		start := 0
		for start < len(r) && isEdgeRune(r[start]) {
			tokens = append(tokens, string(r[start]))
			start++
		}
		end := len(r)
		var trailing []string
		for end > start && isEdgeRune(r[end-1]) {
			trailing = append(trailing, string(r[end-1]))
			end--
		}

		if word := string(r[start:end]); word != "" {
			tokens = append(tokens, splitClitic(word)...)
		}
		for i := len(trailing) - 1; i >= 0; i-- {
			tokens = append(tokens, trailing[i])
		}
	}
	return tokens
}

func splitClitic(word string) []string {
	lower := strings.ToLower(word)
	for _, c := range clitics {
		if len(lower) > len(c) && strings.HasSuffix(lower, c) {
			cut := len(word) - len(c)
			return []string{word[:cut], word[cut:]}
		}
	}
	return []string{word}
}

func isEdgeRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
