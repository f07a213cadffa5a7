package worker

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/messaging/kafka"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
)

// Mailer sends a single notification email.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// smtpMailer delivers through a plain SMTP relay.
type smtpMailer struct {
	cfg config.NotifierConfig
}

// NewSMTPMailer builds a Mailer from the notifier configuration.
func NewSMTPMailer(cfg config.NotifierConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(_ context.Context, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + m.cfg.To,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg))
}

// Notifier turns report events from the stream into case-manager emails.
// Delivery is best-effort: a failed send is logged and the event is still
// committed, so an outage never replays a backlog of stale mail.
type Notifier struct {
	mailer Mailer
	logger logging.Logger
}

func NewNotifier(mailer Mailer, log logging.Logger) *Notifier {
	return &Notifier{mailer: mailer, logger: log}
}

// Handle implements kafka.EnvelopeHandler.
func (n *Notifier) Handle(ctx context.Context, env *kafka.EventEnvelope) error {
	subject, body, ok := n.render(env)
	if !ok {
		return nil
	}
	if err := n.mailer.Send(ctx, subject, body); err != nil {
		n.logger.Warn("Notification email failed, skipping",
			logging.String("event_type", env.EventType),
			logging.String("aggregate_id", env.AggregateID),
			logging.Err(err),
		)
	}
	return nil
}

func (n *Notifier) render(env *kafka.EventEnvelope) (subject, body string, ok bool) {
	switch env.EventType {
	case "report.created":
		var payload report.ReportCreatedEvent
		if err := env.DecodePayload(&payload); err != nil {
			n.logger.Warn("Undecodable created event", logging.Err(err))
			return "", "", false
		}
		subject = fmt.Sprintf("[SafeHarbor] New report for %s", payload.TenantID)
		body = fmt.Sprintf(
			"A new report was submitted for tenant %s.\n\n"+
				"Acknowledgment is due within 7 days and a final outcome within 90 days of submission (%s).",
			payload.TenantID, payload.CreatedAt.Format("2006-01-02"),
		)
		return subject, body, true

	case "report.message_added":
		var payload report.MessageAddedEvent
		if err := env.DecodePayload(&payload); err != nil {
			n.logger.Warn("Undecodable message event", logging.Err(err))
			return "", "", false
		}
		// Admin replies don't need to notify the admins.
		if payload.Role != report.RoleWhistleblower {
			return "", "", false
		}
		subject = fmt.Sprintf("[SafeHarbor] Reporter follow-up for %s", payload.TenantID)
		body = fmt.Sprintf("A reporter added a follow-up message on a report for tenant %s.", payload.TenantID)
		return subject, body, true

	default:
		return "", "", false
	}
}

//Personal.AI order the ending
