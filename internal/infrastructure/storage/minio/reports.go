package minio

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

var (
	ErrReportNotFound  = errors.New(errors.ErrCodeNotFound, "report not found")
	ErrInvalidReportID = errors.New(errors.ErrCodeValidation, "invalid report id")
)

var reportIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// Report is one rendered batch report.
type Report struct {
	RunID       string
	Extension   string
	ContentType string
	Data        []byte
	Metadata    map[string]string
}

// StoredReport describes an uploaded report object.
type StoredReport struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	ETag       string    `json:"etag"`
	Size       int64     `json:"size"`
	URI        string    `json:"uri"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ReportStore writes and locates report objects.
type ReportStore struct {
	client *MinIOClient
	logger logging.Logger
}

func NewReportStore(client *MinIOClient, log logging.Logger) *ReportStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportStore{client: client, logger: log.Named("reports")}
}

// ObjectKey returns prefix + runID + "." + ext.
func (s *ReportStore) ObjectKey(runID, ext string) string {
	return s.client.config.Prefix + runID + "." + ext
}

// Upload stores r and returns its location.
func (s *ReportStore) Upload(ctx context.Context, r *Report) (*StoredReport, error) {
	if !reportIDPattern.MatchString(r.RunID) {
		return nil, ErrInvalidReportID.WithDetail(r.RunID)
	}
	if r.Extension == "" {
		return nil, errors.New(errors.ErrCodeValidation, "report extension required")
	}
	api, err := s.client.api()
	if err != nil {
		return nil, err
	}

	bucket := s.client.Bucket()
	key := s.ObjectKey(r.RunID, r.Extension)
	contentType := r.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := api.PutObject(ctx, bucket, key, bytes.NewReader(r.Data), int64(len(r.Data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: r.Metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportUploadFailed, "report upload failed").WithDetail(key)
	}

	stored := &StoredReport{
		Bucket:     bucket,
		Key:        key,
		ETag:       info.ETag,
		Size:       info.Size,
		URI:        fmt.Sprintf("s3://%s/%s", bucket, key),
		UploadedAt: time.Now().UTC(),
	}
	s.logger.Info("report uploaded",
		logging.String(logging.FieldRunID, r.RunID),
		logging.String("key", key),
		logging.Int("bytes", len(r.Data)))
	return stored, nil
}

// UploadReport is Upload returning only the object URI.
func (s *ReportStore) UploadReport(ctx context.Context, runID, ext, contentType string, data []byte) (string, error) {
	stored, err := s.Upload(ctx, &Report{RunID: runID, Extension: ext, ContentType: contentType, Data: data})
	if err != nil {
		return "", err
	}
	return stored.URI, nil
}

// Stat returns the stored object for runID and ext, or ErrReportNotFound.
func (s *ReportStore) Stat(ctx context.Context, runID, ext string) (*StoredReport, error) {
	api, err := s.client.api()
	if err != nil {
		return nil, err
	}
	bucket := s.client.Bucket()
	key := s.ObjectKey(runID, ext)
	info, err := api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrReportNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "report stat failed")
	}
	return &StoredReport{
		Bucket:     bucket,
		Key:        key,
		ETag:       info.ETag,
		Size:       info.Size,
		URI:        fmt.Sprintf("s3://%s/%s", bucket, key),
		UploadedAt: info.LastModified,
	}, nil
}

// PresignedURL returns a time-limited download link.  A zero expiry uses the
// configured default.
func (s *ReportStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	api, err := s.client.api()
	if err != nil {
		return "", err
	}
	if expiry == 0 {
		expiry = s.client.config.PresignExpiry
	}
	u, err := api.PresignedGetObject(ctx, s.client.Bucket(), key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "presign failed")
	}
	return u.String(), nil
}

//Personal.AI order the ending
