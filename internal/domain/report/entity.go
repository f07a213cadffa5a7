// Package report defines the whistleblowing report aggregate and the
// regulatory-compliance logic that drives it: deadline calculation, SLA
// classification, per-tenant aggregation, and the lifecycle state machine.
package report

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Severity enumeration
// ─────────────────────────────────────────────────────────────────────────────

// Severity is the estimated impact level of a report. It is unset until the
// estimation pass has run; estimation failure leaves it unset for a later
// retry rather than blocking intake.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ValidSeverity reports whether s is one of the four known levels.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Status enumeration — lifecycle state machine
// ─────────────────────────────────────────────────────────────────────────────

// Status is the lifecycle state of a report.
//
// PENDING → IN_PROGRESS → RESOLVED | DISMISSED, but no transition is blocked
// by prior state: administrators may move a report between any two states,
// including reopening a resolved one. The status is a label on the report,
// not a gate on admin actions; the SLA clocks are evaluated independently of
// how often the label changed.
type Status string

const (
	// StatusPending is the initial state assigned at creation.
	StatusPending Status = "PENDING"

	// StatusInProgress marks a report under active investigation.
	StatusInProgress Status = "IN_PROGRESS"

	// StatusResolved is terminal for SLA purposes: the final-outcome clock
	// stops once a report is closed, regardless of when.
	StatusResolved Status = "RESOLVED"

	// StatusDismissed is the second terminal state. It is collapsed into
	// "resolved" in some UI controls but classification and aggregation keep
	// the values distinct.
	StatusDismissed Status = "DISMISSED"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether s stops the final-outcome clock.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// ─────────────────────────────────────────────────────────────────────────────
// Report aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Description length bounds enforced at intake.
const (
	MinDescriptionLen = 10
	MaxDescriptionLen = 5000
)

// Report is the central entity: a whistleblowing case owned by exactly one
// tenant. Reports are never hard-deleted; archival is a status transition.
type Report struct {
	// ID uniquely identifies the report.
	ID common.ID `json:"id"`

	// TrackingCode is the human-facing identifier ("WB-" + 8 uppercase
	// alphanumerics) handed to the reporter at submission. It is the
	// reporter's sole credential for follow-up and is immutable.
	TrackingCode string `json:"tracking_code"`

	// Description is the reporter's free-text account, 10 to 5000 characters.
	Description string `json:"description"`

	// IsAnonymous records whether the reporter chose anonymity. When true,
	// no contact information may be persisted regardless of what the
	// submitter supplied.
	IsAnonymous bool `json:"is_anonymous"`

	// EncryptedContact holds the AES-encrypted contact detail, present only
	// for non-anonymous reports.
	EncryptedContact *string `json:"encrypted_contact,omitempty"`

	// Severity is nil until estimation has run. Once set it is not
	// overwritten by later estimation passes unless explicitly re-triggered.
	Severity *Severity `json:"severity,omitempty"`

	// Status is the lifecycle state, StatusPending at creation.
	Status Status `json:"status"`

	// TenantID is the owning tenant. Required: a report with no resolvable
	// tenant is rejected at creation, never stored unscoped.
	TenantID common.TenantID `json:"tenant_id"`

	// CreatedAt anchors both regulatory deadlines and is immutable.
	CreatedAt time.Time `json:"created_at"`

	// AcknowledgedAt is set by an explicit admin acknowledgment and cleared
	// by an explicit revoke. It is independent of Status: a report can be
	// acknowledged while still PENDING.
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`

	// AdminResponse is the first-response slot shown to the reporter on
	// tracking lookup.
	AdminResponse *string `json:"admin_response,omitempty"`
}

// NewReport creates a Report in its initial state with validation.
//
// Business rules:
//   - Description must be 10–5000 characters after trimming.
//   - TenantID must be non-empty.
//   - encryptedContact must be nil when isAnonymous is true; the anonymity
//     invariant is enforced here, before any storage write.
func NewReport(
	tenantID common.TenantID,
	description string,
	isAnonymous bool,
	encryptedContact *string,
	now time.Time,
) (*Report, error) {
	description = strings.TrimSpace(description)
	// Bounds are in characters, not bytes; multibyte text near the cap must
	// not be rejected early.
	length := utf8.RuneCountInString(description)
	if length < MinDescriptionLen {
		return nil, errors.New(errors.ErrCodeDescriptionTooShort,
			fmt.Sprintf("description must be at least %d characters", MinDescriptionLen))
	}
	if length > MaxDescriptionLen {
		return nil, errors.New(errors.ErrCodeDescriptionTooLong,
			fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen))
	}
	if tenantID == "" {
		return nil, errors.New(errors.ErrCodeTenantRequired, "report must belong to a tenant")
	}
	if isAnonymous && encryptedContact != nil {
		return nil, errors.New(errors.ErrCodeAnonymousContact,
			"anonymous reports must not carry contact information")
	}

	code, err := GenerateTrackingCode()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to generate tracking code")
	}

	return &Report{
		ID:               common.NewID(),
		TrackingCode:     code,
		Description:      description,
		IsAnonymous:      isAnonymous,
		EncryptedContact: encryptedContact,
		Status:           StatusPending,
		TenantID:         tenantID,
		CreatedAt:        now.UTC(),
	}, nil
}

// Acknowledge records the acknowledgment timestamp. Policy is last write
// wins: acknowledging an already-acknowledged report refreshes the timestamp,
// which keeps the operation idempotent in effect (the report stays
// acknowledged) while matching what a repeated explicit admin action means.
func (r *Report) Acknowledge(now time.Time) {
	ts := now.UTC()
	r.AcknowledgedAt = &ts
}

// RevokeAcknowledgment clears the acknowledgment timestamp without touching
// lifecycle status. Revoking an unacknowledged report is a no-op.
func (r *Report) RevokeAcknowledgment() {
	r.AcknowledgedAt = nil
}

// SetStatus applies a lifecycle transition. Every transition between known
// states is legal, including setting the current status again (a safe no-op).
func (r *Report) SetStatus(s Status) error {
	if !ValidStatus(s) {
		return errors.New(errors.ErrCodeInvalidStatus,
			fmt.Sprintf("unknown lifecycle status %q", s))
	}
	r.Status = s
	return nil
}

// ApplySeverity records an estimated severity. A severity that is already
// set is kept unless force is true (an explicit re-trigger).
func (r *Report) ApplySeverity(s Severity, force bool) error {
	if !ValidSeverity(s) {
		return errors.New(errors.ErrCodeInvalidSeverity,
			fmt.Sprintf("unknown severity %q", s))
	}
	if r.Severity != nil && !force {
		return nil
	}
	r.Severity = &s
	return nil
}

// IsAcknowledged reports whether the 7-day obligation has been discharged.
func (r *Report) IsAcknowledged() bool {
	return r.AcknowledgedAt != nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Tracking codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	trackingCodePrefix   = "WB-"
	trackingCodeLen      = 8
	trackingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateTrackingCode returns a fresh code of the form "WB-" followed by 8
// uppercase alphanumeric characters, drawn from crypto/rand.
func GenerateTrackingCode() (string, error) {
	buf := make([]byte, trackingCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("report: read random bytes: %w", err)
	}
	var b strings.Builder
	b.WriteString(trackingCodePrefix)
	for _, c := range buf {
		b.WriteByte(trackingCodeAlphabet[int(c)%len(trackingCodeAlphabet)])
	}
	return b.String(), nil
}

// NormalizeTrackingCode canonicalizes a human-entered code: surrounding
// whitespace is stripped and the code is upper-cased, so " wb-abc123de "
// resolves identically to "WB-ABC123DE".
func NormalizeTrackingCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidTrackingCode reports whether code (already normalized) has the
// canonical shape.
func ValidTrackingCode(code string) bool {
	if len(code) != len(trackingCodePrefix)+trackingCodeLen {
		return false
	}
	if !strings.HasPrefix(code, trackingCodePrefix) {
		return false
	}
	for _, c := range code[len(trackingCodePrefix):] {
		if !strings.ContainsRune(trackingCodeAlphabet, c) {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
