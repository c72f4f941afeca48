package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/models"
)

// Request describes a single notification to deliver.
type Request struct {
	Channel  models.Channel
	UserID   string
	Subject  string
	Message  string
	Metadata map[string]string
}

// Sender delivers notifications on one or more channels.
type Sender interface {
	Send(ctx context.Context, req Request) error
}

// LogSender writes notifications to the log instead of a real delivery
// provider. It stands in for email/push/in-app gateways in development.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-backed notification sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, req Request) error {
	s.logger.Info("notification_sent",
		zap.String("channel", string(req.Channel)),
		zap.String("user_id", req.UserID),
		zap.String("subject", req.Subject),
		zap.String("message", req.Message),
	)
	return nil
}

var _ Sender = (*LogSender)(nil)
