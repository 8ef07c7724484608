package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const serviceName = "relief-coordinator"

func Setup(level string) {
	slog.SetDefault(New(os.Stdout, level))
}

// New builds a JSON logger tagged with the service name.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With("service", serviceName)
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
