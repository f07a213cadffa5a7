package report

import (
	"strings"
	"time"

	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Follow-up messages
// ─────────────────────────────────────────────────────────────────────────────

// MessageRole identifies which side of the conversation wrote a message.
type MessageRole string

const (
	// RoleAdmin marks a case-manager reply (requires authenticated scope).
	RoleAdmin MessageRole = "admin"

	// RoleWhistleblower marks a reporter reply. Possession of a valid
	// tracking code is the only credential, a deliberately lower trust bar
	// since the code is the anonymous reporter's sole identity.
	RoleWhistleblower MessageRole = "whistleblower"
)

// ValidMessageRole reports whether r is a known role.
func ValidMessageRole(r MessageRole) bool {
	return r == RoleAdmin || r == RoleWhistleblower
}

// Message is one item of the ordered follow-up exchange on a report.
// Messages are append-only: no edits or deletions once created, and
// creation-timestamp order is the display order.
type Message struct {
	ID        common.ID   `json:"id"`
	ReportID  common.ID   `json:"report_id"`
	Role      MessageRole `json:"role"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewMessage creates a follow-up message with validation.
func NewMessage(reportID common.ID, role MessageRole, body string, now time.Time) (*Message, error) {
	if reportID == "" {
		return nil, errors.InvalidParam("report id must not be empty")
	}
	if !ValidMessageRole(role) {
		return nil, errors.InvalidParam("message role must be admin or whistleblower")
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New(errors.ErrCodeEmptyMessage, "message body must not be empty")
	}
	return &Message{
		ID:        common.NewID(),
		ReportID:  reportID,
		Role:      role,
		Body:      body,
		CreatedAt: now.UTC(),
	}, nil
}

//Personal.AI order the ending
