package pipeline

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/bankreviews/config"
	"github.com/spacesedan/bankreviews/internal/logging"
)

// Main is the body of the cmd binaries: it loads the environment, builds
// the run logger named after job, runs stages and returns the exit code.
func Main(job string, stages ...Stage) int {
	logging.InitLogger()
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()

	logger, closeLog, err := logging.New(logging.Options{
		Job:   job,
		Dir:   cfg.Logging.Dir,
		Level: cfg.Logging.Level,
	})
	if err != nil {
		slog.Error("[Pipeline] Failed to create logger", slog.String("error", err.Error()))
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := NewRunner(cfg, logger)
	defer r.Close()

	if err := r.Run(ctx, stages...); err != nil {
		return 1
	}
	return 0
}
