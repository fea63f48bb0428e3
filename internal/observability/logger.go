// Package observability wires logging, metrics, and panic capture.
package observability

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sponto/ses-match/internal/config"
)

// SetupLogger configures a JSON slog logger with service fields. When
// SR_LOG_DIR is set, records go to a date-stamped file in that directory;
// otherwise to stdout.
func SetupLogger(cfg config.Config, app string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
	}

	out := os.Stdout
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			slog.Warn("failed to create SR_LOG_DIR; falling back to stdout", slog.Any("error", err))
		} else {
			name := fmt.Sprintf("%s.log.%s", app, time.Now().UTC().Format("2006-01-02"))
			f, err := os.OpenFile(filepath.Join(cfg.LogDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				slog.Warn("failed to open log file; falling back to stdout", slog.Any("error", err))
			} else {
				out = f
			}
		}
	}

	h := slog.NewJSONHandler(out, opts)
	return slog.New(h).With(
		slog.String("application", app),
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// CapturePanic logs a recovered panic with goroutine and location fields.
// Call via defer in worker loops so a panicking handler never kills the
// process or leaves a job in processing.
func CapturePanic(app string, rec any) {
	if rec == nil {
		return
	}

	pc, file, line, _ := runtime.Caller(3)
	location := fmt.Sprintf("%s:%d", file, line)
	if fn := runtime.FuncForPC(pc); fn != nil {
		location = fmt.Sprintf("%s (%s:%d)", fn.Name(), file, line)
	}

	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	goroutine := strings.SplitN(string(buf), " ", 3)[1]

	slog.Error("panic captured",
		slog.String("application", app),
		slog.String("thread", "goroutine-"+goroutine),
		slog.String("location", location),
		slog.Any("message", rec),
	)

	if os.Getenv("SR_LOG_INCLUDE_BACKTRACE") == "1" ||
		strings.EqualFold(os.Getenv("SR_LOG_INCLUDE_BACKTRACE"), "true") {
		stack := make([]byte, 8192)
		stack = stack[:runtime.Stack(stack, false)]
		slog.Error("panic backtrace", slog.String("stack", string(stack)))
	}
}
