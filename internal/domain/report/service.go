package report

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Collaborator ports
// ─────────────────────────────────────────────────────────────────────────────

// ContactCipher encrypts contact details before they reach storage and
// decrypts them for authorized reads.
type ContactCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// EventPublisher emits domain events to the message stream. Publish failures
// are logged and never fail the primary operation.
type EventPublisher interface {
	Publish(ctx context.Context, event common.DomainEvent) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Service — report domain service
// ─────────────────────────────────────────────────────────────────────────────

// Service orchestrates report operations by coordinating the Report
// aggregate, the SLA engine, and the repository ports.
//
// Domain logic (deadline math, classification, the lifecycle rules) lives in
// the aggregate and the pure functions of this package. Service methods are
// intentionally thin: they resolve scope preconditions, invoke domain logic,
// and persist the result.
type Service struct {
	repo        Repository
	messages    MessageRepository
	cipher      ContactCipher
	events      EventPublisher
	attachments AttachmentRepository
	blobs       AttachmentBlobStore
	logger      logging.Logger
	now         func() time.Time
}

// NewService creates a report Service with the required dependencies.
// cipher and events may be nil in tests; a nil events publisher disables
// event emission.
func NewService(
	repo Repository,
	messages MessageRepository,
	cipher ContactCipher,
	events EventPublisher,
	logger logging.Logger,
) *Service {
	return &Service{
		repo:     repo,
		messages: messages,
		cipher:   cipher,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Tests use this to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithAttachments enables the attachment operations. Object storage is a
// non-essential collaborator; without it the attachment endpoints report
// unavailable and everything else keeps working.
func (s *Service) WithAttachments(meta AttachmentRepository, blobs AttachmentBlobStore) *Service {
	s.attachments = meta
	s.blobs = blobs
	return s
}

func (s *Service) publish(ctx context.Context, event common.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			logging.String("event_id", event.EventID()),
			logging.Err(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit — public intake
// ─────────────────────────────────────────────────────────────────────────────

// SubmitInput carries the public intake form fields.
type SubmitInput struct {
	TenantID    common.TenantID
	Description string
	IsAnonymous bool

	// Contact is the plaintext contact detail. It is encrypted before
	// persistence and discarded entirely for anonymous submissions, no
	// matter what the submitter supplied.
	Contact string
}

// Submit validates and persists a new report, returning it with its tracking
// code. Severity estimation runs out of band and never blocks intake.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Report, error) {
	var encrypted *string
	if !in.IsAnonymous && strings.TrimSpace(in.Contact) != "" {
		if s.cipher == nil {
			return nil, pkgerrors.Internal("contact cipher not configured")
		}
		ct, err := s.cipher.Encrypt(in.Contact)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeEncryptFailed, "failed to encrypt contact")
		}
		encrypted = &ct
	}

	r, err := NewReport(in.TenantID, in.Description, in.IsAnonymous, encrypted, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error("failed to persist report",
			logging.String("tenant_id", string(r.TenantID)),
			logging.Err(err))
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to persist report")
	}

	s.logger.Info("report submitted",
		logging.String("report_id", string(r.ID)),
		logging.String("tenant_id", string(r.TenantID)),
		logging.Bool("anonymous", r.IsAnonymous))

	s.publish(ctx, NewReportCreatedEvent(r))
	return r, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Tracking — unauthenticated reporter access
// ─────────────────────────────────────────────────────────────────────────────

// TrackingStatus is the public projection of a report for its reporter. It
// never reveals tenant identity beyond what the code itself implies.
type TrackingStatus struct {
	TrackingCode  string     `json:"tracking_code"`
	CreatedAt     time.Time  `json:"created_at"`
	Status        Status     `json:"status"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	Messages      []*Message `json:"messages"`
}

// Track looks up a report by human-entered tracking code and returns its
// public projection including the follow-up thread. The code is normalized
// (trimmed, upper-cased) before lookup.
func (s *Service) Track(ctx context.Context, code string) (*TrackingStatus, error) {
	normalized := NormalizeTrackingCode(code)
	if !ValidTrackingCode(normalized) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeTrackingCodeInvalid, "malformed tracking code")
	}
	r, err := s.repo.GetByTrackingCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByReport(ctx, r.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to load messages")
	}
	return &TrackingStatus{
		TrackingCode:  r.TrackingCode,
		CreatedAt:     r.CreatedAt,
		Status:        r.Status,
		AdminResponse: r.AdminResponse,
		Messages:      msgs,
	}, nil
}

// ReporterReply appends a whistleblower message, authenticated solely by
// possession of a valid tracking code.
func (s *Service) ReporterReply(ctx context.Context, code, body string) (*Message, error) {
	normalized := NormalizeTrackingCode(code)
	if !ValidTrackingCode(normalized) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeTrackingCodeInvalid, "malformed tracking code")
	}
	r, err := s.repo.GetByTrackingCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	m, err := NewMessage(r.ID, RoleWhistleblower, body, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.messages.Append(ctx, m); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to store message")
	}
	s.publish(ctx, NewMessageAddedEvent(r, m))
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scoped reads
// ─────────────────────────────────────────────────────────────────────────────

// Get fetches one report within the caller's scope. An empty scope and an
// out-of-scope id both surface as not-found.
func (s *Service) Get(ctx context.Context, id common.ID, scope tenant.Scope) (*Report, error) {
	if scope.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found")
	}
	return s.repo.GetByID(ctx, id, scope.Allowed)
}

// List returns the caller's reports, newest first. An empty scope yields an
// empty slice without touching storage.
func (s *Service) List(ctx context.Context, scope tenant.Scope, status *Status, severity *Severity, limit, offset int) ([]*Report, error) {
	if scope.IsEmpty() {
		return []*Report{}, nil
	}
	return s.repo.List(ctx, ListFilter{
		TenantIDs: scope.Allowed,
		Status:    status,
		Severity:  severity,
		Limit:     limit,
		Offset:    offset,
	})
}

// Messages returns the follow-up exchange for a scoped report in creation
// order.
func (s *Service) Messages(ctx context.Context, id common.ID, scope tenant.Scope) ([]*Message, error) {
	if _, err := s.Get(ctx, id, scope); err != nil {
		return nil, err
	}
	return s.messages.ListByReport(ctx, id)
}

// Stats aggregates the caller's reports per tenant against a single
// reference time, then zero-fills member tenants that have none.
func (s *Service) Stats(ctx context.Context, scope tenant.Scope) (map[common.TenantID]TenantStats, error) {
	if scope.IsEmpty() {
		return map[common.TenantID]TenantStats{}, nil
	}
	reports, err := s.repo.List(ctx, ListFilter{TenantIDs: scope.Allowed})
	if err != nil {
		return nil, err
	}
	return ZeroFill(Aggregate(reports, s.now()), scope.Allowed), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scoped mutations
// ─────────────────────────────────────────────────────────────────────────────

// UpdateStatus applies a lifecycle transition. Any transition between known
// states is legal, including a no-op to the current state.
func (s *Service) UpdateStatus(ctx context.Context, id common.ID, scope tenant.Scope, status Status) error {
	if !ValidStatus(status) {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidStatus, "unknown lifecycle status")
	}
	if scope.IsEmpty() {
		return pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found")
	}
	r, err := s.repo.GetByID(ctx, id, scope.Allowed)
	if err != nil {
		return err
	}
	from := r.Status
	if err := s.repo.UpdateStatus(ctx, id, scope.Allowed, status); err != nil {
		return err
	}
	r.Status = status
	s.logger.Info("report status changed",
		logging.String("report_id", string(id)),
		logging.String("from", string(from)),
		logging.String("to", string(status)))
	s.publish(ctx, NewStatusChangedEvent(r, from))
	return nil
}

// Acknowledge records the 7-day acknowledgment. Policy is last write wins:
// repeating the action refreshes the timestamp and the report stays
// acknowledged either way.
func (s *Service) Acknowledge(ctx context.Context, id common.ID, scope tenant.Scope) error {
	if scope.IsEmpty() {
		return pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found")
	}
	r, err := s.repo.GetByID(ctx, id, scope.Allowed)
	if err != nil {
		return err
	}
	ts := s.now().UTC()
	if err := s.repo.SetAcknowledged(ctx, id, scope.Allowed, &ts); err != nil {
		return err
	}
	r.AcknowledgedAt = &ts
	s.publish(ctx, NewReportAcknowledgedEvent(r, false))
	return nil
}

// RevokeAcknowledgment clears the acknowledgment timestamp. The
// confirmation gate before this call is a UI concern, not a server
// invariant; revoking an unacknowledged report is a safe no-op.
func (s *Service) RevokeAcknowledgment(ctx context.Context, id common.ID, scope tenant.Scope) error {
	if scope.IsEmpty() {
		return pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found")
	}
	r, err := s.repo.GetByID(ctx, id, scope.Allowed)
	if err != nil {
		return err
	}
	if err := s.repo.SetAcknowledged(ctx, id, scope.Allowed, nil); err != nil {
		return err
	}
	r.AcknowledgedAt = nil
	s.publish(ctx, NewReportAcknowledgedEvent(r, true))
	return nil
}

// Respond records the first-response text shown to the reporter on tracking
// lookup.
func (s *Service) Respond(ctx context.Context, id common.ID, scope tenant.Scope, response string) error {
	if strings.TrimSpace(response) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeEmptyResponse, "response must not be empty")
	}
	if scope.IsEmpty() {
		return pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found")
	}
	return s.repo.SetAdminResponse(ctx, id, scope.Allowed, response)
}

// AdminReply appends a case-manager message to a scoped report.
func (s *Service) AdminReply(ctx context.Context, id common.ID, scope tenant.Scope, body string) (*Message, error) {
	r, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	m, err := NewMessage(r.ID, RoleAdmin, body, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.messages.Append(ctx, m); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to store message")
	}
	s.publish(ctx, NewMessageAddedEvent(r, m))
	return m, nil
}

// RevealContact decrypts the contact detail of a scoped, non-anonymous
// report.
func (s *Service) RevealContact(ctx context.Context, id common.ID, scope tenant.Scope) (string, error) {
	r, err := s.Get(ctx, id, scope)
	if err != nil {
		return "", err
	}
	if r.IsAnonymous || r.EncryptedContact == nil {
		return "", pkgerrors.NotFound("report has no contact information")
	}
	if s.cipher == nil {
		return "", pkgerrors.Internal("contact cipher not configured")
	}
	plain, err := s.cipher.Decrypt(*r.EncryptedContact)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeDecryptFailed, "failed to decrypt contact")
	}
	return plain, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Attachments
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) attachmentsEnabled() error {
	if s.attachments == nil || s.blobs == nil {
		return pkgerrors.New(pkgerrors.ErrCodeServiceUnavailable, "attachments are not available")
	}
	return nil
}

// Attach uploads evidence for a report identified by tracking code. Like the
// tracking lookup itself, possession of a valid code is the only credential.
// The blob is stored first; a metadata write failure rolls the object back
// best-effort so the two stores cannot drift silently.
func (s *Service) Attach(ctx context.Context, code, filename, contentType string, content io.Reader, size int64) (*Attachment, error) {
	if err := s.attachmentsEnabled(); err != nil {
		return nil, err
	}
	normalized := NormalizeTrackingCode(code)
	if !ValidTrackingCode(normalized) {
		return nil, pkgerrors.New(pkgerrors.ErrCodeTrackingCodeInvalid, "malformed tracking code")
	}
	r, err := s.repo.GetByTrackingCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	att, err := s.blobs.Upload(ctx, r.ID, filename, contentType, content, size)
	if err != nil {
		return nil, err
	}
	if err := s.attachments.Create(ctx, att); err != nil {
		s.logger.Error("attachment metadata write failed, removing blob",
			logging.String("report_id", string(r.ID)),
			logging.String("attachment_id", string(att.ID)),
			logging.Err(err))
		if delErr := s.blobs.Delete(ctx, att.ReportID, att.ID, att.Filename); delErr != nil {
			s.logger.Warn("orphaned attachment blob left behind", logging.Err(delErr))
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to record attachment")
	}
	return att, nil
}

// Attachments lists a scoped report's attachments in upload order.
func (s *Service) Attachments(ctx context.Context, id common.ID, scope tenant.Scope) ([]*Attachment, error) {
	if err := s.attachmentsEnabled(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id, scope); err != nil {
		return nil, err
	}
	return s.attachments.ListByReport(ctx, id)
}

// AttachmentURL returns a time-limited download URL for one attachment of a
// scoped report.
func (s *Service) AttachmentURL(ctx context.Context, id, attachmentID common.ID, scope tenant.Scope) (string, error) {
	if err := s.attachmentsEnabled(); err != nil {
		return "", err
	}
	if _, err := s.Get(ctx, id, scope); err != nil {
		return "", err
	}
	att, err := s.attachments.GetByID(ctx, id, attachmentID)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignedDownloadURL(ctx, att.ReportID, att.ID, att.Filename)
}

//Personal.AI order the ending
