package report

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// SLA label formatter
// ─────────────────────────────────────────────────────────────────────────────
//
// Pure projections from the classifier's categorical output plus the raw day
// count to user-facing strings. The formatter never re-derives "now": feeding
// it anything other than the snapshot it belongs to is a caller bug, and
// doing so would open a read-time race where classifier and label disagree.

// InitialFeedbackLabel renders the 7-day rule for the snapshot.
// acknowledgedAt is only consulted when the status is SLAOk.
func InitialFeedbackLabel(status SLAStatus, daysRemaining int, acknowledgedAt *time.Time) string {
	switch status {
	case SLAOk:
		if acknowledgedAt != nil {
			return fmt.Sprintf("acknowledgment sent on %s", acknowledgedAt.Format("2006-01-02"))
		}
		return "acknowledgment sent"
	case SLAOverdue:
		return fmt.Sprintf("overdue by %d %s", -daysRemaining, pluralDays(-daysRemaining))
	default:
		if daysRemaining == 0 {
			return "acknowledgment due today"
		}
		return fmt.Sprintf("%d %s remaining", daysRemaining, pluralDays(daysRemaining))
	}
}

// FinalOutcomeLabel renders the 90-day rule for the snapshot. closedLate
// distinguishes the two terminal phrasings; it is derived by the caller from
// the same snapshot (terminal AND days-remaining negative).
func FinalOutcomeLabel(status SLAStatus, daysRemaining int, closedLate bool) string {
	switch status {
	case SLAOk:
		if closedLate {
			return "closed past deadline"
		}
		return "closed on time"
	case SLAOverdue:
		return fmt.Sprintf("overdue by %d %s", -daysRemaining, pluralDays(-daysRemaining))
	default:
		if daysRemaining == 0 {
			return "resolution due today"
		}
		return fmt.Sprintf("%d %s remaining", daysRemaining, pluralDays(daysRemaining))
	}
}

// SLALabels renders both rules from one snapshot.
func SLALabels(r *Report, snap SLASnapshot) (initial, final string) {
	initial = InitialFeedbackLabel(snap.InitialStatus, snap.InitialDaysRemaining, r.AcknowledgedAt)
	final = FinalOutcomeLabel(snap.FinalStatus, snap.FinalDaysRemaining,
		snap.FinalStatus == SLAOk && snap.FinalDaysRemaining < 0)
	return initial, final
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

//Personal.AI order the ending
