package notify

import (
	"context"

	"go.uber.org/zap"
)

// EmailSender delivers one email. Implementations may fail; the dispatcher
// treats every failure as non-fatal.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is the in-tree sender: the real mail transport lives outside this
// service, so outgoing mail is logged and handed off. Disabled when no sender
// address is configured.
type LogSender struct {
	logger *zap.Logger
	from   string
}

// NewLogSender builds the sender.
func NewLogSender(logger *zap.Logger, from string) *LogSender {
	return &LogSender{logger: logger, from: from}
}

// Send logs the outgoing email.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	if s.from == "" {
		return nil
	}
	s.logger.Info("email queued",
		zap.String("from", s.from),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
