package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	MYMEMORY_ENDPOINT   = "https://api.mymemory.translated.net/get"
	MYMEMORY_TARGET     = "en-US"
	MYMEMORY_AUTODETECT = "Autodetect"
	// MyMemory rejects queries above 500 bytes.
	MYMEMORY_MAX_QUERY_BYTES = 500
)

var (
	ErrTextTooLong       = errors.New("text exceeds translation query limit")
	ErrEmptyTranslation  = errors.New("translation service returned empty text")
	ErrTranslationStatus = errors.New("translation service returned an error status")
)

// MyMemoryClient calls the MyMemory translation API. Target is always English.
type MyMemoryClient struct {
	Client   *http.Client
	Endpoint string
	Email    string
	logger   *slog.Logger
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.Number `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

// NewMyMemoryClient builds a client. email is optional and raises the daily
// quota when set.
func NewMyMemoryClient(email string, logger *slog.Logger) *MyMemoryClient {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("[MyMemoryClient] Initializing Client",
		slog.Duration("timeout", TRANSLATION_TIMEOUT))
	return &MyMemoryClient{
		Client:   &http.Client{Timeout: TRANSLATION_TIMEOUT},
		Endpoint: MYMEMORY_ENDPOINT,
		Email:    email,
		logger:   logger,
	}
}

// Translate translates text to English. An empty source asks the service to
// detect the source language.
func (m *MyMemoryClient) Translate(ctx context.Context, text, source string) (string, error) {
	if len(text) > MYMEMORY_MAX_QUERY_BYTES {
		return "", fmt.Errorf("%w: %d bytes", ErrTextTooLong, len(text))
	}
	if source == "" {
		source = MYMEMORY_AUTODETECT
	}

	u, err := url.Parse(m.Endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", text)
	q.Set("langpair", source+"|"+MYMEMORY_TARGET)
	if m.Email != "" {
		q.Set("de", m.Email)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	start := time.Now()
	resp, err := m.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status code %d", ErrTranslationStatus, resp.StatusCode)
	}

	var out myMemoryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		m.logger.Error("[MyMemoryClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(body))
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.ResponseStatus != "" && out.ResponseStatus != "200" {
		return "", fmt.Errorf("%w: %s %s", ErrTranslationStatus, out.ResponseStatus, out.ResponseDetails)
	}

	translated := strings.TrimSpace(out.ResponseData.TranslatedText)
	if translated == "" {
		return "", ErrEmptyTranslation
	}

	m.logger.Debug("[MyMemoryClient] Translation request successful",
		slog.String("langpair", source+"|"+MYMEMORY_TARGET),
		slog.Duration("elapsed", time.Since(start)))
	return translated, nil
}
