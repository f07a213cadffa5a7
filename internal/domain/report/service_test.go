package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, r *Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id common.ID, scope []common.TenantID) (*Report, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func (m *mockRepo) GetByTrackingCode(ctx context.Context, code string) (*Report, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]*Report, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Report), args.Error(1)
}

func (m *mockRepo) ListUnestimated(ctx context.Context, limit int) ([]*Report, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Report), args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id common.ID, scope []common.TenantID, status Status) error {
	return m.Called(ctx, id, scope, status).Error(0)
}

func (m *mockRepo) SetAcknowledged(ctx context.Context, id common.ID, scope []common.TenantID, ts *time.Time) error {
	return m.Called(ctx, id, scope, ts).Error(0)
}

func (m *mockRepo) SetAdminResponse(ctx context.Context, id common.ID, scope []common.TenantID, response string) error {
	return m.Called(ctx, id, scope, response).Error(0)
}

func (m *mockRepo) SetSeverity(ctx context.Context, id common.ID, severity Severity, force bool) error {
	return m.Called(ctx, id, severity, force).Error(0)
}

type mockMessageRepo struct{ mock.Mock }

func (m *mockMessageRepo) Append(ctx context.Context, msg *Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepo) ListByReport(ctx context.Context, reportID common.ID) ([]*Message, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Message), args.Error(1)
}

// roundTripCipher is a trivial reversible cipher for tests.
type roundTripCipher struct{}

func (roundTripCipher) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }
func (roundTripCipher) Decrypt(ciphertext string) (string, error) {
	return ciphertext[len("enc:"):], nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event common.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func newTestService(repo *mockRepo, msgs *mockMessageRepo) *Service {
	return NewService(repo, msgs, roundTripCipher{}, nil, logging.NewNopLogger()).
		WithClock(func() time.Time { return testNow })
}

var scopeA = tenant.Scope{UserID: "u-1", Allowed: []common.TenantID{"acme"}}

// ─────────────────────────────────────────────────────────────────────────────
// Submit
// ─────────────────────────────────────────────────────────────────────────────

func TestSubmit_AnonymousDiscardsContact(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Report) bool {
		return r.IsAnonymous && r.EncryptedContact == nil
	})).Return(nil)

	r, err := svc.Submit(context.Background(), SubmitInput{
		TenantID:    "acme",
		Description: "a credible account of misconduct",
		IsAnonymous: true,
		Contact:     "reporter@example.com", // supplied but must not persist
	})
	require.NoError(t, err)
	assert.Nil(t, r.EncryptedContact)
	repo.AssertExpectations(t)
}

func TestSubmit_NonAnonymousEncryptsContact(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := svc.Submit(context.Background(), SubmitInput{
		TenantID:    "acme",
		Description: "a credible account of misconduct",
		Contact:     "reporter@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, r.EncryptedContact)
	assert.Equal(t, "enc:reporter@example.com", *r.EncryptedContact)

	// Round-trip law: the stored ciphertext decrypts back to the original.
	plain, err := roundTripCipher{}.Decrypt(*r.EncryptedContact)
	require.NoError(t, err)
	assert.Equal(t, "reporter@example.com", plain)
}

func TestSubmit_ValidationStopsBeforeStorage(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		TenantID:    "acme",
		Description: "too short",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDescriptionTooShort))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_StorageFailureSurfaces(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	repo.On("Create", mock.Anything, mock.Anything).
		Return(pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "connection refused"))

	_, err := svc.Submit(context.Background(), SubmitInput{
		TenantID:    "acme",
		Description: "a credible account of misconduct",
		IsAnonymous: true,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

// ─────────────────────────────────────────────────────────────────────────────
// Tracking
// ─────────────────────────────────────────────────────────────────────────────

func TestTrack_NormalizesCode(t *testing.T) {
	repo := &mockRepo{}
	msgs := &mockMessageRepo{}
	svc := newTestService(repo, msgs)

	stored := newTestReport(testNow)
	stored.TrackingCode = "WB-ABC123DE"
	stored.AdminResponse = strPtr("we are looking into it")
	repo.On("GetByTrackingCode", mock.Anything, "WB-ABC123DE").Return(stored, nil)
	msgs.On("ListByReport", mock.Anything, stored.ID).Return([]*Message{}, nil)

	got, err := svc.Track(context.Background(), " wb-abc123de ")
	require.NoError(t, err)
	assert.Equal(t, "WB-ABC123DE", got.TrackingCode)
	assert.Equal(t, stored.CreatedAt, got.CreatedAt)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "we are looking into it", *got.AdminResponse)
	assert.Empty(t, got.Messages)
}

func TestTrack_MalformedCodeRejectedBeforeLookup(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	_, err := svc.Track(context.Background(), "not-a-code")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeTrackingCodeInvalid))
	repo.AssertNotCalled(t, "GetByTrackingCode", mock.Anything, mock.Anything)
}

func TestReporterReply_AppendsWhistleblowerMessage(t *testing.T) {
	repo := &mockRepo{}
	msgs := &mockMessageRepo{}
	svc := newTestService(repo, msgs)

	stored := newTestReport(testNow)
	stored.TrackingCode = "WB-ABC123DE"
	repo.On("GetByTrackingCode", mock.Anything, "WB-ABC123DE").Return(stored, nil)
	msgs.On("Append", mock.Anything, mock.MatchedBy(func(m *Message) bool {
		return m.Role == RoleWhistleblower && m.ReportID == stored.ID
	})).Return(nil)

	m, err := svc.ReporterReply(context.Background(), "wb-abc123de", "any news?")
	require.NoError(t, err)
	assert.Equal(t, RoleWhistleblower, m.Role)
	msgs.AssertExpectations(t)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scope enforcement
// ─────────────────────────────────────────────────────────────────────────────

func TestGet_EmptyScopeNeverTouchesStorage(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	_, err := svc.Get(context.Background(), "r-1", tenant.Scope{UserID: "u-1"})
	assert.True(t, pkgerrors.IsNotFound(err))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestList_EmptyScopeReturnsZeroRows(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	got, err := svc.List(context.Background(), tenant.Scope{UserID: "u-1"}, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestList_PassesScopeToRepository(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
		return len(f.TenantIDs) == 1 && f.TenantIDs[0] == "acme"
	})).Return([]*Report{}, nil)

	_, err := svc.List(context.Background(), scopeA, nil, nil, 50, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────────────────

func TestAcknowledge_LastWriteWins(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	stored := newTestReport(testNow.AddDate(0, 0, -3))
	earlier := testNow.Add(-time.Hour)
	stored.AcknowledgedAt = &earlier

	repo.On("GetByID", mock.Anything, stored.ID, scopeA.Allowed).Return(stored, nil)
	repo.On("SetAcknowledged", mock.Anything, stored.ID, scopeA.Allowed,
		mock.MatchedBy(func(ts *time.Time) bool {
			return ts != nil && ts.Equal(testNow)
		})).Return(nil)

	// Re-acknowledging an already-acknowledged report refreshes the
	// timestamp to the current clock.
	require.NoError(t, svc.Acknowledge(context.Background(), stored.ID, scopeA))
	repo.AssertExpectations(t)
}

func TestRevokeAcknowledgment_ClearsTimestamp(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	stored := newTestReport(testNow)
	ack := testNow
	stored.AcknowledgedAt = &ack

	repo.On("GetByID", mock.Anything, stored.ID, scopeA.Allowed).Return(stored, nil)
	repo.On("SetAcknowledged", mock.Anything, stored.ID, scopeA.Allowed, (*time.Time)(nil)).Return(nil)

	require.NoError(t, svc.RevokeAcknowledgment(context.Background(), stored.ID, scopeA))
	repo.AssertExpectations(t)
}

func TestUpdateStatus_RejectsUnknownState(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	err := svc.UpdateStatus(context.Background(), "r-1", scopeA, "ARCHIVED")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeInvalidStatus))
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_OutOfScopeSurfacesNotFound(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	repo.On("GetByID", mock.Anything, common.ID("r-1"), scopeA.Allowed).
		Return(nil, pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found"))

	err := svc.UpdateStatus(context.Background(), "r-1", scopeA, StatusResolved)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRespond_RejectsEmptyText(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	err := svc.Respond(context.Background(), "r-1", scopeA, "   ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeEmptyResponse))
	repo.AssertNotCalled(t, "SetAdminResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRevealContact_DecryptsStoredCiphertext(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	stored := newTestReport(testNow)
	stored.EncryptedContact = strPtr("enc:reporter@example.com")
	repo.On("GetByID", mock.Anything, stored.ID, scopeA.Allowed).Return(stored, nil)

	plain, err := svc.RevealContact(context.Background(), stored.ID, scopeA)
	require.NoError(t, err)
	assert.Equal(t, "reporter@example.com", plain)
}

func TestRevealContact_AnonymousHasNothingToReveal(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	stored := newTestReport(testNow)
	stored.IsAnonymous = true
	repo.On("GetByID", mock.Anything, stored.ID, scopeA.Allowed).Return(stored, nil)

	_, err := svc.RevealContact(context.Background(), stored.ID, scopeA)
	assert.True(t, pkgerrors.IsNotFound(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Stats
// ─────────────────────────────────────────────────────────────────────────────

func TestStats_ZeroFillsMemberTenants(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	scope := tenant.Scope{UserID: "u-1", Allowed: []common.TenantID{"acme", "globex"}}
	repo.On("List", mock.Anything, mock.Anything).Return([]*Report{newTestReport(testNow)}, nil)

	stats, err := svc.Stats(context.Background(), scope)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
	assert.Equal(t, 1, stats["acme"].Pending)
	assert.Equal(t, TenantStats{}, stats["globex"])
}

func TestStats_EmptyScope(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockMessageRepo{})

	stats, err := svc.Stats(context.Background(), tenant.Scope{UserID: "u-1"})
	require.NoError(t, err)
	assert.Empty(t, stats)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

//Personal.AI order the ending
