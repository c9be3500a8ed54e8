package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendNotifier sends deadline reminders as email through the Resend API.
type ResendNotifier struct {
	client    *resend.Client
	logger    *zap.Logger
	fromEmail string
	fromName  string
	tmpl      *template.Template
}

// NewResendNotifier creates a notifier backed by the Resend API.
func NewResendNotifier(apiKey, fromEmail, fromName string, logger *zap.Logger) *ResendNotifier {
	return &ResendNotifier{
		client:    resend.NewClient(apiKey),
		logger:    logger,
		fromEmail: fromEmail,
		fromName:  fromName,
		tmpl:      template.Must(template.New("reminder").Parse(reminderHTML)),
	}
}

// Send delivers one consolidated reminder to every destination address.
func (r *ResendNotifier) Send(ctx context.Context, n Notification) error {
	if len(n.To) == 0 {
		return fmt.Errorf("notification for client %s has no destinations", n.ClientID)
	}

	var body bytes.Buffer
	if err := r.tmpl.Execute(&body, n); err != nil {
		return fmt.Errorf("failed to render reminder template: %w", err)
	}

	subject := fmt.Sprintf("Recordatorio tributario: %d vencimiento(s) proximos", len(n.Events))
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", r.fromName, r.fromEmail),
		To:      n.To,
		Subject: subject,
		Html:    body.String(),
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "deadline-reminder"},
		},
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		r.logger.Error("failed to send reminder email",
			zap.String("client_id", n.ClientID),
			zap.Int("recipients", len(n.To)),
			zap.Error(err))
		return fmt.Errorf("failed to send reminder for client %s: %w", n.ClientID, err)
	}

	r.logger.Info("reminder email sent",
		zap.String("client_id", n.ClientID),
		zap.String("email_id", sent.Id),
		zap.Int("events", len(n.Events)))
	return nil
}

// reminderHTML is the consolidated reminder body. One table row per
// obligation, nearest deadline first (the scheduler pre-sorts).
const reminderHTML = `<!DOCTYPE html>
<html>
<body style="font-family: system-ui, sans-serif; max-width: 640px; margin: 0 auto;">
  <h2>Vencimientos tributarios proximos</h2>
  <p>{{.ClientName}} (NIT {{.NIT}}): las siguientes obligaciones vencen pronto.</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr>
      <th align="left" style="border-bottom: 1px solid #ccc;">Obligacion</th>
      <th align="left" style="border-bottom: 1px solid #ccc;">Vence</th>
      <th align="right" style="border-bottom: 1px solid #ccc;">Dias</th>
      <th align="right" style="border-bottom: 1px solid #ccc;">Sancion minima</th>
    </tr>
    {{range .Events}}
    <tr>
      <td style="padding: 6px 0;">{{.Title}}</td>
      <td>{{.Date}}</td>
      <td align="right">{{.DaysUntil}}</td>
      <td align="right">{{if .MinPenalty}}${{.MinPenalty}}{{else}}-{{end}}</td>
    </tr>
    {{end}}
  </table>
  <p style="color: #666; font-size: 12px;">
    La sancion minima corresponde a la presentacion extemporanea.
    Este es un recordatorio automatico; verifique el calendario oficial.
  </p>
</body>
</html>`
