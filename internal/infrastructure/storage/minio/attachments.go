package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// MinIOAPI is the subset of the minio client the attachment store uses.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// AttachmentStore persists report attachments in an S3-compatible bucket.
// Objects are keyed "reports/<report-id>/<attachment-id>/<filename>" so a
// report's attachments can be enumerated by prefix.
type AttachmentStore struct {
	client        MinIOAPI
	bucket        string
	maxObjectSize int64
	presignExpiry time.Duration
	logger        logging.Logger
}

// NewAttachmentStore connects to MinIO and ensures the attachment bucket
// exists.
func NewAttachmentStore(cfg config.MinIOConfig, log logging.Logger) (*AttachmentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	store := NewAttachmentStoreWithClient(client, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("Attachment store ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return store, nil
}

// NewAttachmentStoreWithClient builds an AttachmentStore over an existing
// client without touching the network.
func NewAttachmentStoreWithClient(client MinIOAPI, cfg config.MinIOConfig, log logging.Logger) *AttachmentStore {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "safeharbor-attachments"
	}
	maxSize := cfg.MaxObjectSize
	if maxSize == 0 {
		maxSize = 5 << 20
	}
	expiry := cfg.PresignExpiry
	if expiry == 0 {
		expiry = time.Hour
	}
	return &AttachmentStore{
		client:        client,
		bucket:        bucket,
		maxObjectSize: maxSize,
		presignExpiry: expiry,
		logger:        log,
	}
}

func (s *AttachmentStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check attachment bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create attachment bucket")
	}
	return nil
}

func (s *AttachmentStore) objectKey(reportID, attachmentID common.ID, filename string) string {
	return path.Join("reports", string(reportID), string(attachmentID), sanitizeFilename(filename))
}

// sanitizeFilename strips path components so the uploaded name cannot
// escape the attachment prefix.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "attachment"
	}
	return name
}

// Upload stores the attachment content and returns its descriptor. size must
// be the exact content length; anything over the configured cap is rejected
// before a byte is sent.
func (s *AttachmentStore) Upload(ctx context.Context, reportID common.ID, filename, contentType string, content io.Reader, size int64) (*report.Attachment, error) {
	if size <= 0 {
		return nil, errors.InvalidParam("attachment size must be positive")
	}
	if size > s.maxObjectSize {
		return nil, errors.New(errors.ErrCodeAttachmentTooLarge,
			fmt.Sprintf("attachment exceeds %d byte limit", s.maxObjectSize))
	}

	att := &report.Attachment{
		ID:          common.NewID(),
		ReportID:    reportID,
		Filename:    sanitizeFilename(filename),
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}

	key := s.objectKey(reportID, att.ID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"report-id": string(reportID),
		},
	})
	if err != nil {
		s.logger.Error("Attachment upload failed",
			logging.String("report_id", string(reportID)),
			logging.String("key", key),
			logging.Err(err),
		)
		return nil, errors.Wrap(err, errors.ErrCodeAttachmentUploadFailed, "failed to upload attachment")
	}

	s.logger.Info("Attachment uploaded",
		logging.String("report_id", string(reportID)),
		logging.String("attachment_id", string(att.ID)),
		logging.Int64("size", size),
	)
	return att, nil
}

// PresignedDownloadURL returns a time-limited download URL for an attachment.
func (s *AttachmentStore) PresignedDownloadURL(ctx context.Context, reportID, attachmentID common.ID, filename string) (string, error) {
	key := s.objectKey(reportID, attachmentID, filename)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", errors.New(errors.ErrCodeNotFound, "attachment not found")
	}

	params := make(url.Values)
	params.Set("response-content-disposition",
		fmt.Sprintf("attachment; filename=%q", sanitizeFilename(filename)))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, params)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to presign attachment url")
	}
	return u.String(), nil
}

// Delete removes an attachment object.
func (s *AttachmentStore) Delete(ctx context.Context, reportID, attachmentID common.ID, filename string) error {
	key := s.objectKey(reportID, attachmentID, filename)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete attachment")
	}
	return nil
}

//Personal.AI order the ending
