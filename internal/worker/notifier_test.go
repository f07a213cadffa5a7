package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/messaging/kafka"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
)

type captureMailer struct {
	subjects []string
	err      error
}

func (m *captureMailer) Send(_ context.Context, subject, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	return nil
}

func createdEnvelope(t *testing.T) *kafka.EventEnvelope {
	t.Helper()
	env, err := kafka.NewEventEnvelope("report.created", report.NewReportCreatedEvent(&report.Report{
		ID:       "r-1",
		TenantID: "acme",
	}))
	require.NoError(t, err)
	return env
}

func TestHandle_CreatedEventSendsMail(t *testing.T) {
	mailer := &captureMailer{}
	n := NewNotifier(mailer, logging.NewNopLogger())

	err := n.Handle(context.Background(), createdEnvelope(t))
	require.NoError(t, err)
	require.Len(t, mailer.subjects, 1)
	assert.Contains(t, mailer.subjects[0], "acme")
}

func TestHandle_SendFailureIsSwallowed(t *testing.T) {
	mailer := &captureMailer{err: errors.New("relay down")}
	n := NewNotifier(mailer, logging.NewNopLogger())

	// The event must still be treated as handled so the offset commits.
	assert.NoError(t, n.Handle(context.Background(), createdEnvelope(t)))
}

func TestHandle_AdminMessagesAreNotNotified(t *testing.T) {
	mailer := &captureMailer{}
	n := NewNotifier(mailer, logging.NewNopLogger())

	r := &report.Report{ID: "r-1", TenantID: "acme"}
	m := &report.Message{ID: "m-1", ReportID: "r-1", Role: report.RoleAdmin, Body: "noted"}
	env, err := kafka.NewEventEnvelope("report.message_added", report.NewMessageAddedEvent(r, m))
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), env))
	assert.Empty(t, mailer.subjects)
}

func TestHandle_WhistleblowerMessageNotifies(t *testing.T) {
	mailer := &captureMailer{}
	n := NewNotifier(mailer, logging.NewNopLogger())

	r := &report.Report{ID: "r-1", TenantID: "acme"}
	m := &report.Message{ID: "m-1", ReportID: "r-1", Role: report.RoleWhistleblower, Body: "any update?"}
	env, err := kafka.NewEventEnvelope("report.message_added", report.NewMessageAddedEvent(r, m))
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), env))
	require.Len(t, mailer.subjects, 1)
	assert.Contains(t, mailer.subjects[0], "follow-up")
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	mailer := &captureMailer{}
	n := NewNotifier(mailer, logging.NewNopLogger())

	env, err := kafka.NewEventEnvelope("report.status_changed",
		report.NewStatusChangedEvent(&report.Report{ID: "r-1", TenantID: "acme", Status: report.StatusResolved}, report.StatusPending))
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), env))
	assert.Empty(t, mailer.subjects)
}

//Personal.AI order the ending
