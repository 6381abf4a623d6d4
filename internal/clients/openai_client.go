package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	openAIDefaultModel   = "gpt-4o-mini"
)

const openAITranslatePrompt = `You translate Ethiopian bank app reviews into English.
Return only the English translation of the user's text. No quotes, no notes.
If the text is already English, return it unchanged.`

var ErrMissingAPIKey = errors.New("missing OpenAI API key")

// OpenAIClient translates through the chat completions API.
type OpenAIClient struct {
	Client *openai.Client
	Model  string
	logger *slog.Logger
}

func NewOpenAIClient(apiKey, model string, logger *slog.Logger) (*OpenAIClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if apiKey == "" {
		logger.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = openAIDefaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	)
	logger.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", openAIRequestTimeout),
		slog.String("model", model))

	return &OpenAIClient{Client: client, Model: model, logger: logger}, nil
}

// Translate asks the model for an English rendering of text. source is a
// hint such as "am-ET"; empty means unknown.
func (o *OpenAIClient) Translate(ctx context.Context, text, source string) (string, error) {
	user := text
	if source != "" {
		user = fmt.Sprintf("Source language: %s\n\n%s", source, text)
	}

	start := time.Now()
	completion, err := o.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAITranslatePrompt),
			openai.UserMessage(user),
		}),
		Model:       openai.F(openai.ChatModel(o.Model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai translation failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyTranslation
	}

	translated := strings.TrimSpace(completion.Choices[0].Message.Content)
	if translated == "" {
		return "", ErrEmptyTranslation
	}

	o.logger.Debug("[OpenAIClient] Translation request successful",
		slog.Duration("elapsed", time.Since(start)))
	return translated, nil
}
