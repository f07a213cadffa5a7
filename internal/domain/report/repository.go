package report

import (
	"context"
	"time"

	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ListFilter narrows scoped report listings.
type ListFilter struct {
	// TenantIDs is the caller's resolved access scope. An empty slice means
	// the caller has no memberships and must see zero rows; implementations
	// must never treat it as "no filter".
	TenantIDs []common.TenantID

	// Status, when set, restricts to one lifecycle state.
	Status *Status

	// Severity, when set, restricts to one severity level.
	Severity *Severity

	Limit  int
	Offset int
}

// Repository defines the persistence contract for reports. Every method that
// touches tenant-owned data takes the caller's resolved tenant scope and must
// intersect it with the query before touching storage; a mutation that
// matches zero rows (missing or out of scope) reports not-found without
// distinguishing the two cases.
type Repository interface {
	// Create persists a new report.
	Create(ctx context.Context, r *Report) error

	// GetByID fetches one report within scope.
	GetByID(ctx context.Context, id common.ID, scope []common.TenantID) (*Report, error)

	// GetByTrackingCode fetches a report by its already-normalized tracking
	// code. This is the public, unauthenticated path: no tenant scope
	// applies, the code itself is the credential.
	GetByTrackingCode(ctx context.Context, code string) (*Report, error)

	// List returns reports matching filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Report, error)

	// ListUnestimated returns up to limit reports with no severity yet, for
	// the estimation worker.
	ListUnestimated(ctx context.Context, limit int) ([]*Report, error)

	// UpdateStatus applies a lifecycle transition within scope.
	UpdateStatus(ctx context.Context, id common.ID, scope []common.TenantID, status Status) error

	// SetAcknowledged sets or clears the acknowledgment timestamp within
	// scope. A nil timestamp revokes.
	SetAcknowledged(ctx context.Context, id common.ID, scope []common.TenantID, ts *time.Time) error

	// SetAdminResponse records the first-response text within scope.
	SetAdminResponse(ctx context.Context, id common.ID, scope []common.TenantID, response string) error

	// SetSeverity records an estimated severity. When force is false the
	// write only applies if no severity is set yet.
	SetSeverity(ctx context.Context, id common.ID, severity Severity, force bool) error
}

// MessageRepository defines persistence for the follow-up exchange.
type MessageRepository interface {
	// Append stores a new message. Messages are immutable once written.
	Append(ctx context.Context, m *Message) error

	// ListByReport returns all messages for a report in creation-timestamp
	// order. This ordering is a hard contract for conversation
	// reconstruction.
	ListByReport(ctx context.Context, reportID common.ID) ([]*Message, error)
}

//Personal.AI order the ending
