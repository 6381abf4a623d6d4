package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

// Options configures a run logger.
type Options struct {
	// Job names the batch job, e.g. "preprocess". It becomes both the "job"
	// attribute and the log file name.
	Job string
	// Dir, when set, sends output to <Dir>/<Job>.log instead of Writer.
	Dir string
	// Writer is the sink when Dir is empty. Defaults to os.Stdout.
	Writer io.Writer
	Level  string
}

// New builds the logger for one batch run. The returned close function
// releases the file sink, if any, and must be called when the run ends.
func New(opts Options) (*slog.Logger, func() error, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	closeFn := func() error { return nil }
	color := w == os.Stdout

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		name := opts.Job
		if name == "" {
			name = "pipeline"
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		color = false
		closeFn = f.Close
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(opts.Level),
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !color,
	})

	logger := slog.New(handler).With(
		slog.String("run_id", uuid.NewString()),
	)
	if opts.Job != "" {
		logger = logger.With(slog.String("job", opts.Job))
	}

	return logger, closeFn, nil
}

// InitLogger installs a stdout tint handler as the process default. The
// stages do not rely on it; it only covers messages logged before a run
// logger exists.
func InitLogger() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})

	slog.SetDefault(slog.New(handler))
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
