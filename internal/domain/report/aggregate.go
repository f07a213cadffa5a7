package report

import (
	"time"

	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Tenant aggregator
// ─────────────────────────────────────────────────────────────────────────────

// Due-soon windows, inclusive on both ends. Narrower than plain "pending" so
// the UI can flag true near-term urgency separately from merely-not-yet-due.
const (
	InitialDueSoonDays = 2
	FinalDueSoonDays   = 30
)

// TenantStats is the per-tenant urgency rollup feeding tenant-switcher
// ranking and badging.
type TenantStats struct {
	// Pending counts reports in a non-terminal lifecycle state.
	Pending int `json:"pending"`

	// Critical counts non-terminal reports with CRITICAL severity.
	Critical int `json:"critical"`

	// InitialOverdue / InitialDueSoon track the 7-day acknowledgment rule.
	InitialOverdue int `json:"initial_overdue"`
	InitialDueSoon int `json:"initial_due_soon"`

	// FinalOverdue / FinalDueSoon track the 90-day resolution rule.
	FinalOverdue int `json:"final_overdue"`
	FinalDueSoon int `json:"final_due_soon"`
}

// HasUrgency reports whether any field warrants visual priority in the
// tenant switcher.
func (s TenantStats) HasUrgency() bool {
	return s.Critical > 0 || s.InitialOverdue > 0 || s.InitialDueSoon > 0 ||
		s.FinalOverdue > 0 || s.FinalDueSoon > 0
}

// Aggregate groups reports by tenant in a single pass and computes the
// rollup, evaluating both SLA rules against the one reference time now.
//
// Reports with an empty tenant id are excluded from all aggregates, never
// attributed to a default bucket. The result only contains tenants with at
// least one report; the caller is responsible for merging in zero-stat
// entries for member tenants that have none (see ZeroFill).
func Aggregate(reports []*Report, now time.Time) map[common.TenantID]TenantStats {
	out := make(map[common.TenantID]TenantStats)
	for _, r := range reports {
		if r == nil || r.TenantID == "" {
			continue
		}
		stats := out[r.TenantID]

		terminal := r.Status.IsTerminal()
		if !terminal {
			stats.Pending++
			if r.Severity != nil && *r.Severity == SeverityCritical {
				stats.Critical++
			}
		}

		snap := EvaluateSLA(r, now)

		switch snap.InitialStatus {
		case SLAOverdue:
			stats.InitialOverdue++
		case SLAPending:
			if snap.InitialDaysRemaining >= 0 && snap.InitialDaysRemaining <= InitialDueSoonDays {
				stats.InitialDueSoon++
			}
		}

		switch snap.FinalStatus {
		case SLAOverdue:
			stats.FinalOverdue++
		case SLAPending:
			if snap.FinalDaysRemaining >= 0 && snap.FinalDaysRemaining <= FinalDueSoonDays {
				stats.FinalDueSoon++
			}
		}

		out[r.TenantID] = stats
	}
	return out
}

// ZeroFill returns a copy of stats extended with an all-zero entry for every
// member tenant absent from the aggregation, so switcher rendering never has
// to special-case empty tenants.
func ZeroFill(stats map[common.TenantID]TenantStats, members []common.TenantID) map[common.TenantID]TenantStats {
	out := make(map[common.TenantID]TenantStats, len(members))
	for k, v := range stats {
		out[k] = v
	}
	for _, id := range members {
		if id == "" {
			continue
		}
		if _, ok := out[id]; !ok {
			out[id] = TenantStats{}
		}
	}
	return out
}

//Personal.AI order the ending
