package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "bankreviews-client/1.0 (+https://github.com/spacesedan/bankreviews)"

	// Translation calls are never retried. The timeout only bounds a hung
	// connection; failures fall back to the original text upstream.
	TRANSLATION_TIMEOUT = 30 * time.Second
	PREVIEW_LENGTH      = 50
)
