package models

import "strings"

const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
)

// SentimentResult is the score for one review. Score is the confidence of
// Label, in [0, 1].
type SentimentResult struct {
	ReviewID string  `json:"review_id"`
	Label    string  `json:"sentiment_label"`
	Score    float64 `json:"sentiment_score"`
}

// NormalizeSentimentLabel maps model output labels ("positive", "LABEL_1",
// ...) onto POSITIVE/NEGATIVE.
func NormalizeSentimentLabel(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "POS", "LABEL_1":
		return SentimentPositive
	case "NEGATIVE", "NEG", "LABEL_0":
		return SentimentNegative
	default:
		return strings.ToUpper(strings.TrimSpace(label))
	}
}

// Hugging Face inference API payloads for text classification.
type (
	SentimentInferenceRequest struct {
		Inputs  []string          `json:"inputs"`
		Options *InferenceOptions `json:"options,omitempty"`
	}
	InferenceOptions struct {
		WaitForModel bool `json:"wait_for_model"`
	}
)

type (
	// SentimentInferenceResponse holds one label list per input text.
	SentimentInferenceResponse [][]SentimentLabelScore
	SentimentLabelScore        struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
)
