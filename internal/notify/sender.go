package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Sender delivers one text message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// LogSender simulates SMS delivery by logging the message.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := "sim-" + uuid.NewString()
	s.logger.Info("simulated sms sent", "to", to, "message_id", id, "body", body)
	return id, nil
}
