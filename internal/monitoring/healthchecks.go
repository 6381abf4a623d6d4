// Package monitoring waits for remote collaborators to become usable before
// a stage starts sending work to them.
package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/bankreviews/internal/logging"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_ATTEMPTS = 8
)

// HealthChecker reports whether a service answers requests.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// WaitHealthy polls checker until it is healthy, up to attempts times with
// interval between polls. Hosted models answer 503 while they load.
func WaitHealthy(ctx context.Context, name string, checker HealthChecker, interval time.Duration, attempts int, logger *slog.Logger) error {
	logger = logging.OrDiscard(logger)
	if attempts <= 0 {
		attempts = HEALTHCHECK_ATTEMPTS
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if checker.IsHealthy(ctx) {
			logger.Info("[HealthCheck] Service is healthy",
				slog.String("service", name),
				slog.Int("attempt", attempt))
			return nil
		}
		logger.Warn("[HealthCheck] Service is unhealthy",
			slog.String("service", name),
			slog.Int("attempt", attempt))
		if attempt == attempts {
			return fmt.Errorf("%s still unhealthy after %d checks", name, attempts)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
