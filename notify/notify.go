/*
Package notify delivers deadline reminders to clients.

PURPOSE:
  The alert scheduler hands this package one consolidated Notification per
  client per run; delivery (templating, transport) is this package's whole
  job. The scheduler only sees a success/failure outcome.

IMPLEMENTATIONS:
  - ResendNotifier: production email delivery via the Resend API
  - LogNotifier:    logs the notification instead of sending it; used in
                    development when no API key is configured, and by tests

SEE ALSO:
  - alert/scheduler.go: the only caller
*/
package notify

import (
	"context"

	"github.com/contaflow/tax-engine/calendar"
)

// EventLine is one obligation row inside a notification, already enriched
// with everything the template needs.
type EventLine struct {
	Title      string             `json:"title"`
	Date       calendar.Date      `json:"date"`
	Type       calendar.EventType `json:"type"`
	DaysUntil  int                `json:"days_until"`
	MinPenalty string             `json:"min_penalty,omitempty"` // formatted pesos, e.g. "498.000"
}

// Notification is one consolidated reminder for one client.
type Notification struct {
	ClientID   string
	ClientName string
	NIT        string
	To         []string
	Events     []EventLine
}

// Notifier delivers notifications. Implementations must respect the context
// deadline: the scheduler bounds each dispatch so one unresponsive
// destination cannot stall a whole run.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
