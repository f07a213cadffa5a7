package report

import (
	"math"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Deadline calculator
// ─────────────────────────────────────────────────────────────────────────────

// Regulatory deadline offsets from report creation.
const (
	// InitialFeedbackDays is the acknowledgment obligation window.
	InitialFeedbackDays = 7

	// FinalOutcomeDays is the resolution obligation window.
	FinalOutcomeDays = 90
)

// InitialFeedbackDeadline returns createdAt + 7 days.
func InitialFeedbackDeadline(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, InitialFeedbackDays)
}

// FinalOutcomeDeadline returns createdAt + 90 days.
func FinalOutcomeDeadline(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, FinalOutcomeDays)
}

// DaysRemaining returns floor((deadline - now) / 24h) as a signed integer:
// negative means overdue by that many days, zero means due today, positive
// means days left.
//
// Both timestamps must come from the same clock. Mixing clocks drifts the
// result by fractional days near midnight; that edge is documented behaviour,
// not something this function compensates for.
func DaysRemaining(deadline, now time.Time) int {
	return int(math.Floor(deadline.Sub(now).Hours() / 24))
}

// ─────────────────────────────────────────────────────────────────────────────
// SLA status classifier
// ─────────────────────────────────────────────────────────────────────────────

// SLAStatus is the three-valued compliance status of a single deadline.
type SLAStatus string

const (
	// SLAOk means the obligation has been discharged.
	SLAOk SLAStatus = "ok"

	// SLAPending means the obligation is open and the deadline has not passed.
	SLAPending SLAStatus = "pending"

	// SLAOverdue means the obligation is open and the deadline has passed.
	SLAOverdue SLAStatus = "overdue"
)

// InitialFeedbackStatus classifies the 7-day acknowledgment rule.
//
// An acknowledgment timestamp always wins over deadline math, regardless of
// when it was recorded: once the obligation is discharged it cannot
// retroactively become overdue.
func InitialFeedbackStatus(r *Report, now time.Time) SLAStatus {
	if r.IsAcknowledged() {
		return SLAOk
	}
	if DaysRemaining(InitialFeedbackDeadline(r.CreatedAt), now) < 0 {
		return SLAOverdue
	}
	return SLAPending
}

// FinalOutcomeStatus classifies the 90-day resolution rule.
//
// A terminal lifecycle status always wins over deadline math: compliance is
// judged by closure happening at all, not by re-checking the clock after the
// fact.
func FinalOutcomeStatus(r *Report, now time.Time) SLAStatus {
	if r.Status.IsTerminal() {
		return SLAOk
	}
	if DaysRemaining(FinalOutcomeDeadline(r.CreatedAt), now) < 0 {
		return SLAOverdue
	}
	return SLAPending
}

// ─────────────────────────────────────────────────────────────────────────────
// SLASnapshot — one read-time evaluation of both rules
// ─────────────────────────────────────────────────────────────────────────────

// SLASnapshot captures both classifications and their raw day counts against
// a single reference time, so downstream consumers (label formatter, API
// payloads) never re-derive "now" and disagree with the classifier.
type SLASnapshot struct {
	InitialStatus        SLAStatus `json:"initial_status"`
	InitialDaysRemaining int       `json:"initial_days_remaining"`
	FinalStatus          SLAStatus `json:"final_status"`
	FinalDaysRemaining   int       `json:"final_days_remaining"`
}

// EvaluateSLA computes both rules for r against a single now.
func EvaluateSLA(r *Report, now time.Time) SLASnapshot {
	return SLASnapshot{
		InitialStatus:        InitialFeedbackStatus(r, now),
		InitialDaysRemaining: DaysRemaining(InitialFeedbackDeadline(r.CreatedAt), now),
		FinalStatus:          FinalOutcomeStatus(r, now),
		FinalDaysRemaining:   DaysRemaining(FinalOutcomeDeadline(r.CreatedAt), now),
	}
}

//Personal.AI order the ending
