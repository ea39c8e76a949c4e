package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender records messages in the application log instead of delivering
// them. It is meant for local development.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Name returns the provider name.
func (l *LogSender) Name() string {
	return "log"
}

// Send logs the message summary and always succeeds.
func (l *LogSender) Send(_ context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	var size int
	for _, att := range msg.Attachments {
		names = append(names, att.Filename)
		size += len(att.Content)
	}

	l.log.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Strs("attachments", names).
		Int("attachment_bytes", size).
		Msg("email not delivered (log provider)")

	return nil
}
