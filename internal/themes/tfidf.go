package themes

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxFeatures = 1000 // vocabulary cap, by corpus term count
	defaultTopN = 10
)

// Keyword is a unigram or bigram with its summed TF-IDF weight over the
// corpus and its total occurrence count.
type Keyword struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// TopKeywords ranks the unigrams and bigrams of corpus by TF-IDF weight
// summed over documents. Empty documents are ignored. Ties are broken
// alphabetically. Returns nil when the corpus yields no terms.
func TopKeywords(corpus []string, topN int) []Keyword {
	if topN <= 0 {
		topN = defaultTopN
	}

	docs := make([]map[string]int, 0, len(corpus))
	for _, text := range corpus {
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, termCounts(text))
	}
	if len(docs) == 0 {
		return nil
	}

	vocab := limitVocabulary(docs, maxFeatures)
	if len(vocab) == 0 {
		return nil
	}

	df := make(map[string]int, len(vocab))
	for _, d := range docs {
		for term := range d {
			if _, ok := vocab[term]; ok {
				df[term]++
			}
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(vocab))
	for term := range vocab {
		idf[term] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	scores := make(map[string]float64, len(vocab))
	for _, d := range docs {
		var norm float64
		weights := make(map[string]float64, len(d))
		for term, c := range d {
			w, ok := idf[term]
			if !ok {
				continue
			}
			weights[term] = float64(c) * w
			norm += weights[term] * weights[term]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			scores[term] += w / norm
		}
	}

	result := make([]Keyword, 0, len(scores))
	for term, s := range scores {
		result = append(result, Keyword{Term: term, Score: s, Count: vocab[term]})
	}
	slices.SortFunc(result, cmpKeyword)
	if len(result) > topN {
		result = result[:topN]
	}
	return result
}

// termCounts tokenizes like a default word vectorizer: runs of two or more
// word characters, stopwords removed, then unigrams and bigrams.
func termCounts(text string) map[string]int {
	var tokens []string
	for _, w := range wordRuns(strings.ToLower(text)) {
		if utf8.RuneCountInString(w) < 2 || isStopword(w) {
			continue
		}
		tokens = append(tokens, w)
	}

	counts := make(map[string]int, 2*len(tokens))
	for i, t := range tokens {
		counts[t]++
		if i+1 < len(tokens) {
			counts[t+" "+tokens[i+1]]++
		}
	}
	return counts
}

func wordRuns(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

// limitVocabulary keeps the max most frequent terms across the corpus and
// returns their total counts.
func limitVocabulary(docs []map[string]int, max int) map[string]int {
	total := map[string]int{}
	for _, d := range docs {
		for term, c := range d {
			total[term] += c
		}
	}
	if len(total) <= max {
		return total
	}

	terms := make([]Keyword, 0, len(total))
	for term, c := range total {
		terms = append(terms, Keyword{Term: term, Count: c})
	}
	slices.SortFunc(terms, func(a, b Keyword) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Term, b.Term)
	})

	kept := make(map[string]int, max)
	for _, k := range terms[:max] {
		kept[k.Term] = k.Count
	}
	return kept
}

func cmpKeyword(a, b Keyword) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Term, b.Term)
}
