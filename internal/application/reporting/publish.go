package reporting

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// Render returns results rendered in format.
func Render(format stypes.ReportFormat, results []stypes.CompoundResult) ([]byte, error) {
	w, err := NewWriter(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders results to path, creating parent directories.  A path
// of "-" writes to stdout.
func WriteFile(path string, format stypes.ReportFormat, results []stypes.CompoundResult) error {
	w, err := NewWriter(format)
	if err != nil {
		return err
	}
	if path == "-" {
		return w.Write(os.Stdout, results)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "creating report directory").WithDetail(dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "creating report file").WithDetail(path)
	}
	if err := w.Write(f, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "closing report file").WithDetail(path)
	}
	return nil
}

// Uploader stores a rendered report and returns its URI.  minio.ReportStore
// satisfies it.
type Uploader interface {
	UploadReport(ctx context.Context, runID, ext, contentType string, data []byte) (string, error)
}

// UploadMetrics receives upload outcomes.
type UploadMetrics interface {
	RecordReportUpload(ok bool)
}

// Publisher renders a batch report and uploads it.
type Publisher struct {
	uploader Uploader
	metrics  UploadMetrics
	logger   logging.Logger
}

func NewPublisher(uploader Uploader, metrics UploadMetrics, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{uploader: uploader, metrics: metrics, logger: logger.Named("reporting")}
}

// Publish uploads the report of a batch run and returns the object URI.
func (p *Publisher) Publish(ctx context.Context, runID string, format stypes.ReportFormat, results []stypes.CompoundResult) (string, error) {
	w, err := NewWriter(format)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, results); err != nil {
		return "", err
	}

	uri, err := p.uploader.UploadReport(ctx, runID, format.Extension(), w.ContentType(), buf.Bytes())
	if p.metrics != nil {
		p.metrics.RecordReportUpload(err == nil)
	}
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("report upload failed", logging.String(logging.FieldRunID, runID))
		if errors.IsCode(err, errors.ErrCodeReportUploadFailed) {
			return "", err
		}
		return "", errors.Wrap(err, errors.ErrCodeReportUploadFailed, "uploading report")
	}
	p.logger.Info("report published", logging.String(logging.FieldRunID, runID), logging.String("uri", uri))
	return uri, nil
}

//Personal.AI order the ending
