package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/bankreviews/internal/models"
	"golang.org/x/oauth2"
)

const HF_SENTIMENT_ENDPOINT = "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"

type HuggingFaceClient struct {
	Client   *http.Client
	Endpoint string
	logger   *slog.Logger
	// backoff is the wait before the first retry; doubled per attempt.
	backoff time.Duration
}

// NewHuggingFaceClient builds a client for the text-classification inference
// API. token is sent as a bearer token when set.
func NewHuggingFaceClient(ctx context.Context, endpoint, token, env string, logger *slog.Logger) *HuggingFaceClient {
	if logger == nil {
		logger = slog.Default()
	}
	if endpoint == "" {
		endpoint = HF_SENTIMENT_ENDPOINT
	}

	var timeout time.Duration
	if env == "production" {
		timeout = 10 * time.Second
	} else {
		timeout = 60 * time.Second
	}

	client := &http.Client{}
	if token != "" {
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	client.Timeout = timeout

	logger.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", timeout),
		slog.String("env", env),
		slog.Bool("authenticated", token != ""))

	return &HuggingFaceClient{
		Client:   client,
		Endpoint: endpoint,
		logger:   logger,
		backoff:  INITIAL_BACKOFF,
	}
}

func (h *HuggingFaceClient) DoWithRetry(req *http.Request, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.backoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		h.logger.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	if err == nil {
		err = fmt.Errorf("status code %d", resp.StatusCode)
	}
	return nil, err
}

// ClassifySentiment scores a batch of texts. The response holds one label
// list per input, in input order.
func (h *HuggingFaceClient) ClassifySentiment(ctx context.Context, texts []string) (models.SentimentInferenceResponse, error) {
	var result models.SentimentInferenceResponse
	h.logger.Info("[HuggingFaceClient] Requesting sentiment analysis from inference service",
		slog.Int("batch_size", len(texts)))
	start := time.Now()

	input := models.SentimentInferenceRequest{
		Inputs:  texts,
		Options: &models.InferenceOptions{WaitForModel: true},
	}
	if err := h.postJSON(ctx, h.Endpoint, input, &result); err != nil {
		h.logger.Error("[HuggingFaceClient] Sentiment Analysis request failed",
			slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	if len(result) != len(texts) {
		return nil, fmt.Errorf("sentiment response has %d results for %d inputs", len(result), len(texts))
	}

	h.logger.Info("[HuggingFaceClient] Sentiment Analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// IsHealthy reports whether the inference endpoint answers a one-item batch.
func (h *HuggingFaceClient) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err := h.ClassifySentiment(ctx, []string{"ok"})
	return err == nil
}

// helper function for posting data to the inference API
func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		h.logger.Error("[HuggingFaceClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		h.logger.Error("[HuggingFaceClient] Failed to build request",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.DoWithRetry(req, body)
	if err != nil {
		h.logger.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))

		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.Error("[HuggingFaceClient] Failed to read response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		h.logger.Error("[HuggingFaceClient] Unexpected status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		h.logger.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(string(respBody))))

		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > PREVIEW_LENGTH {
		raw = raw[:PREVIEW_LENGTH]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
