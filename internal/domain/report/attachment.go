package report

import (
	"context"
	"io"
	"time"

	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// Attachment describes a file a whistleblower attached to a report. The
// bytes live in object storage; this record is the metadata row that lets
// case managers enumerate and fetch them.
type Attachment struct {
	ID          common.ID `json:"id"`
	ReportID    common.ID `json:"report_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// AttachmentRepository defines persistence for attachment metadata.
type AttachmentRepository interface {
	// Create records a new attachment.
	Create(ctx context.Context, a *Attachment) error

	// ListByReport returns a report's attachments in upload order.
	ListByReport(ctx context.Context, reportID common.ID) ([]*Attachment, error)

	// GetByID fetches one attachment belonging to the given report.
	GetByID(ctx context.Context, reportID, attachmentID common.ID) (*Attachment, error)
}

// AttachmentBlobStore is the object-storage boundary for attachment content.
type AttachmentBlobStore interface {
	// Upload stores the content and returns the attachment descriptor.
	Upload(ctx context.Context, reportID common.ID, filename, contentType string, content io.Reader, size int64) (*Attachment, error)

	// PresignedDownloadURL returns a time-limited download URL.
	PresignedDownloadURL(ctx context.Context, reportID, attachmentID common.ID, filename string) (string, error)

	// Delete removes stored content.
	Delete(ctx context.Context, reportID, attachmentID common.ID, filename string) error
}

//Personal.AI order the ending
