package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestReport(createdAt time.Time) *Report {
	return &Report{
		ID:           "r-1",
		TrackingCode: "WB-ABC123DE",
		Description:  "something worth reporting",
		Status:       StatusPending,
		TenantID:     "acme",
		CreatedAt:    createdAt,
	}
}

func TestInitialFeedbackDeadline(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 8, 9, 30, 0, 0, time.UTC), InitialFeedbackDeadline(created))
}

func TestFinalOutcomeDeadline(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC), FinalOutcomeDeadline(created))
}

func TestDaysRemaining_SignedFloor(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{"seven days out", testNow.AddDate(0, 0, 7), 7},
		{"due this instant", testNow, 0},
		{"due in twelve hours", testNow.Add(12 * time.Hour), 0},
		{"passed twelve hours ago", testNow.Add(-12 * time.Hour), -1},
		{"passed one day ago", testNow.AddDate(0, 0, -1), -1},
		{"passed five days ago", testNow.AddDate(0, 0, -5), -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRemaining(tt.deadline, testNow))
		})
	}
}

func TestInitialFeedbackStatus_AcknowledgedAlwaysOk(t *testing.T) {
	// Acknowledgment wins over deadline math, regardless of created_at,
	// including far-future creation times.
	ack := testNow.AddDate(0, 0, -1)
	for _, created := range []time.Time{
		testNow.AddDate(0, 0, -365),
		testNow.AddDate(0, 0, -8),
		testNow,
		testNow.AddDate(1, 0, 0),
	} {
		r := newTestReport(created)
		r.AcknowledgedAt = &ack
		assert.Equal(t, SLAOk, InitialFeedbackStatus(r, testNow), "created=%s", created)
	}
}

func TestInitialFeedbackStatus_EightDaysOld(t *testing.T) {
	r := newTestReport(testNow.AddDate(0, 0, -8))
	assert.Equal(t, SLAOverdue, InitialFeedbackStatus(r, testNow))
	assert.Equal(t, -1, DaysRemaining(InitialFeedbackDeadline(r.CreatedAt), testNow))
}

func TestInitialFeedbackStatus_FreshReport(t *testing.T) {
	r := newTestReport(testNow)
	assert.Equal(t, SLAPending, InitialFeedbackStatus(r, testNow))
	assert.Equal(t, 7, DaysRemaining(InitialFeedbackDeadline(r.CreatedAt), testNow))
}

func TestInitialFeedbackStatus_DueToday(t *testing.T) {
	// Created exactly 7 days ago: the deadline is this instant, day count 0,
	// still pending rather than overdue.
	r := newTestReport(testNow.AddDate(0, 0, -7))
	assert.Equal(t, SLAPending, InitialFeedbackStatus(r, testNow))
	assert.Equal(t, 0, DaysRemaining(InitialFeedbackDeadline(r.CreatedAt), testNow))
}

func TestFinalOutcomeStatus_TerminalAlwaysOk(t *testing.T) {
	// Terminal status wins over elapsed time, even long past 90 days.
	for _, st := range []Status{StatusResolved, StatusDismissed} {
		r := newTestReport(testNow.AddDate(0, 0, -400))
		r.Status = st
		assert.Equal(t, SLAOk, FinalOutcomeStatus(r, testNow), "status=%s", st)
	}
}

func TestFinalOutcomeStatus_OpenPastNinetyDays(t *testing.T) {
	r := newTestReport(testNow.AddDate(0, 0, -95))
	assert.Equal(t, SLAOverdue, FinalOutcomeStatus(r, testNow))
	assert.Equal(t, -5, DaysRemaining(FinalOutcomeDeadline(r.CreatedAt), testNow))
}

func TestFinalOutcomeStatus_OpenWithinWindow(t *testing.T) {
	r := newTestReport(testNow.AddDate(0, 0, -30))
	r.Status = StatusInProgress
	assert.Equal(t, SLAPending, FinalOutcomeStatus(r, testNow))
	assert.Equal(t, 60, DaysRemaining(FinalOutcomeDeadline(r.CreatedAt), testNow))
}

func TestEvaluateSLA_SingleReferenceTime(t *testing.T) {
	r := newTestReport(testNow.AddDate(0, 0, -8))
	snap := EvaluateSLA(r, testNow)
	assert.Equal(t, SLAOverdue, snap.InitialStatus)
	assert.Equal(t, -1, snap.InitialDaysRemaining)
	assert.Equal(t, SLAPending, snap.FinalStatus)
	assert.Equal(t, 82, snap.FinalDaysRemaining)
}

func TestClassifiers_NeverPanicOnNullableFields(t *testing.T) {
	// Every reachable combination of null/non-null fields has a defined
	// output.
	ack := testNow
	combos := []*Report{
		newTestReport(testNow),
		func() *Report { r := newTestReport(testNow); r.AcknowledgedAt = &ack; return r }(),
		func() *Report { r := newTestReport(testNow); r.Status = StatusDismissed; return r }(),
		func() *Report {
			r := newTestReport(testNow)
			sev := SeverityCritical
			r.Severity = &sev
			r.AcknowledgedAt = &ack
			r.Status = StatusResolved
			return r
		}(),
	}
	for _, r := range combos {
		assert.NotPanics(t, func() {
			_ = EvaluateSLA(r, testNow)
		})
	}
}

//Personal.AI order the ending
