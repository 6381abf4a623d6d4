package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/n0madic/google-play-scraper/pkg/store"
	"github.com/spacesedan/bankreviews/internal/logging"
	"github.com/spacesedan/bankreviews/internal/models"
)

func newMyMemory(t *testing.T, h http.HandlerFunc) *MyMemoryClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewMyMemoryClient("ops@example.com", logging.Discard())
	c.Endpoint = srv.URL
	return c
}

func TestMyMemoryTranslate(t *testing.T) {
	t.Parallel()

	var gotPair, gotEmail string
	c := newMyMemory(t, func(w http.ResponseWriter, r *http.Request) {
		gotPair = r.URL.Query().Get("langpair")
		gotEmail = r.URL.Query().Get("de")
		io.WriteString(w, `{"responseData":{"translatedText":" my money "},"responseStatus":200}`)
	})

	got, err := c.Translate(context.Background(), "የኔ ገንዘብ", "am-ET")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got != "my money" {
		t.Errorf("Translate() = %q", got)
	}
	if gotPair != "am-ET|en-US" {
		t.Errorf("langpair = %q", gotPair)
	}
	if gotEmail != "ops@example.com" {
		t.Errorf("de = %q", gotEmail)
	}
}

func TestMyMemoryAutodetect(t *testing.T) {
	t.Parallel()

	var gotPair string
	c := newMyMemory(t, func(w http.ResponseWriter, r *http.Request) {
		gotPair = r.URL.Query().Get("langpair")
		io.WriteString(w, `{"responseData":{"translatedText":"hello"},"responseStatus":"200"}`)
	})
	if _, err := c.Translate(context.Background(), "bonjour", ""); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if gotPair != "Autodetect|en-US" {
		t.Errorf("langpair = %q", gotPair)
	}
}

func TestMyMemoryErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		status  int
		body    string
		text    string
		wantErr error
	}{
		{name: "quota status", status: 200, body: `{"responseData":{"translatedText":"QUOTA"},"responseStatus":429,"responseDetails":"quota"}`, text: "ሰላም", wantErr: ErrTranslationStatus},
		{name: "http error", status: 503, body: `oops`, text: "ሰላም", wantErr: ErrTranslationStatus},
		{name: "empty translation", status: 200, body: `{"responseData":{"translatedText":"  "},"responseStatus":200}`, text: "ሰላም", wantErr: ErrEmptyTranslation},
		{name: "too long", status: 200, body: `{}`, text: strings.Repeat("a", MYMEMORY_MAX_QUERY_BYTES+1), wantErr: ErrTextTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newMyMemory(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Translate(context.Background(), tt.text, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Translate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHuggingFaceClassifySentiment(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var req models.SentimentInferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := make(models.SentimentInferenceResponse, len(req.Inputs))
		for i := range req.Inputs {
			resp[i] = []models.SentimentLabelScore{{Label: "POSITIVE", Score: 0.9}, {Label: "NEGATIVE", Score: 0.1}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	c := NewHuggingFaceClient(context.Background(), srv.URL, "hf_test", "dev", logging.Discard())
	c.backoff = time.Millisecond

	got, err := c.ClassifySentiment(context.Background(), []string{"great app", "works"})
	if err != nil {
		t.Fatalf("ClassifySentiment() error: %v", err)
	}
	if len(got) != 2 || got[0][0].Label != "POSITIVE" {
		t.Errorf("ClassifySentiment() = %+v", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls.Load())
	}
	if gotAuth != "Bearer hf_test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHuggingFaceLengthMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[[{"label":"POSITIVE","score":0.8}]]`)
	}))
	t.Cleanup(srv.Close)

	c := NewHuggingFaceClient(context.Background(), srv.URL, "", "dev", logging.Discard())
	if _, err := c.ClassifySentiment(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("ClassifySentiment() error = nil, want length mismatch")
	}
}

func TestIsConnectionError(t *testing.T) {
	t.Parallel()
	tests := map[string]bool{
		"dial tcp: connection refused": true,
		"unexpected EOF":               true,
		"read: i/o timeout":            true,
		"WRONGTYPE":                    false,
	}
	for msg, want := range tests {
		if got := isConnectionError(errors.New(msg)); got != want {
			t.Errorf("isConnectionError(%q) = %v", msg, got)
		}
	}
	if isConnectionError(nil) {
		t.Error("isConnectionError(nil) = true")
	}
}

func TestPlayStoreOptionsNewestFirst(t *testing.T) {
	t.Parallel()

	p := NewPlayStoreClient("en", "et", logging.Discard())
	got := p.options(400)
	if got.Sorting != store.SortNewest {
		t.Errorf("Sorting = %v, want SortNewest", got.Sorting)
	}
	if got.Number != 400 || got.Language != "en" || got.Country != "et" {
		t.Errorf("options = %+v", got)
	}
}
