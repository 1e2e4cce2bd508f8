package minio

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/pkg/errors"
)

func newTestStore(api *MockMinIOAPI) *ReportStore {
	return NewReportStore(newMinIOClient(api, MinIOConfig{}, nil), nil)
}

func TestReportStore_Upload(t *testing.T) {
	api := new(MockMinIOAPI)
	store := newTestStore(api)
	data := []byte("smiles,name\nCCO,ethanol\n")

	api.On("PutObject", mock.Anything, "simpol-reports", "reports/run-1.csv",
		mock.MatchedBy(func(r io.Reader) bool {
			b, _ := io.ReadAll(r)
			return string(b) == string(data)
		}),
		int64(len(data)),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "text/csv" }),
	).Return(minio.UploadInfo{Bucket: "simpol-reports", Key: "reports/run-1.csv", ETag: "abc", Size: int64(len(data))}, nil)

	stored, err := store.Upload(context.Background(), &Report{RunID: "run-1", Extension: "csv", ContentType: "text/csv", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "reports/run-1.csv", stored.Key)
	assert.Equal(t, "s3://simpol-reports/reports/run-1.csv", stored.URI)
	assert.Equal(t, "abc", stored.ETag)
	assert.Equal(t, int64(len(data)), stored.Size)
	api.AssertExpectations(t)
}

func TestReportStore_UploadReport(t *testing.T) {
	api := new(MockMinIOAPI)
	store := newTestStore(api)
	api.On("PutObject", mock.Anything, "simpol-reports", "reports/r9.json", mock.Anything, int64(2), mock.Anything).
		Return(minio.UploadInfo{Size: 2}, nil)

	uri, err := store.UploadReport(context.Background(), "r9", "json", "application/json", []byte("[]"))
	require.NoError(t, err)
	assert.Equal(t, "s3://simpol-reports/reports/r9.json", uri)
}

func TestReportStore_UploadRejectsBadInput(t *testing.T) {
	store := newTestStore(new(MockMinIOAPI))
	ctx := context.Background()

	_, err := store.Upload(ctx, &Report{RunID: "../etc/passwd", Extension: "csv"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = store.Upload(ctx, &Report{RunID: "run-1"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestReportStore_UploadFailure(t *testing.T) {
	api := new(MockMinIOAPI)
	store := newTestStore(api)
	api.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	_, err := store.Upload(context.Background(), &Report{RunID: "r", Extension: "json", Data: []byte("{}")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportUploadFailed))
}

func TestReportStore_Stat(t *testing.T) {
	api := new(MockMinIOAPI)
	store := newTestStore(api)
	mod := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	api.On("StatObject", mock.Anything, "simpol-reports", "reports/a.txt", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{ETag: "e", Size: 10, LastModified: mod}, nil)
	api.On("StatObject", mock.Anything, "simpol-reports", "reports/missing.txt", minio.StatObjectOptions{}).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	got, err := store.Stat(context.Background(), "a", "txt")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Size)
	assert.Equal(t, mod, got.UploadedAt)

	_, err = store.Stat(context.Background(), "missing", "txt")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestReportStore_PresignedURL(t *testing.T) {
	api := new(MockMinIOAPI)
	store := newTestStore(api)
	u, _ := url.Parse("https://minio.local/simpol-reports/reports/a.csv?sig=1")
	api.On("PresignedGetObject", mock.Anything, "simpol-reports", "reports/a.csv", time.Hour, url.Values(nil)).Return(u, nil)

	got, err := store.PresignedURL(context.Background(), "reports/a.csv", 0)
	require.NoError(t, err)
	assert.Equal(t, u.String(), got)
}

func TestReportStore_ClosedClient(t *testing.T) {
	api := new(MockMinIOAPI)
	store := newTestStore(api)
	require.NoError(t, store.client.Close())

	_, err := store.Upload(context.Background(), &Report{RunID: "r", Extension: "csv"})
	assert.Equal(t, ErrMinIOClientClosed, err)
}

//Personal.AI order the ending
