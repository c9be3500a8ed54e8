package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no email API key is configured, so a development instance still
// shows exactly what would have been sent.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification and reports success.
func (l *LogNotifier) Send(_ context.Context, n Notification) error {
	fields := []zap.Field{
		zap.String("client_id", n.ClientID),
		zap.String("client_name", n.ClientName),
		zap.Strings("to", n.To),
		zap.Int("events", len(n.Events)),
	}
	for _, e := range n.Events {
		fields = append(fields, zap.String("event",
			e.Date.String()+" "+e.Title))
	}
	l.logger.Info("reminder (log-only delivery)", fields...)
	return nil
}
