package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/formgrid/forms-api/internal/config"
	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
)

const responseFolderPrefix = "Response "

// Storage implements submission.BlobStore on a MinIO/S3 bucket. Attachments
// live under `<formId>/Response <n>/<file>`.
type Storage struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
}

var _ submission.BlobStore = (*Storage)(nil)

// New creates a MinIO client from the storage config. Returns nil without
// error when storage is not configured; callers treat a nil Storage as
// "not connected".
func New(cfg *config.Config) (*Storage, error) {
	if !cfg.StorageEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &Storage{
		client:    client,
		bucket:    cfg.StorageBucket,
		region:    cfg.StorageRegion,
		publicURL: strings.TrimSuffix(cfg.StoragePublicURL, "/"),
	}, nil
}

// EnsureBucket makes sure the attachment bucket exists before use.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// IsConnected implements submission.BlobStore.
func (s *Storage) IsConnected(ctx context.Context, formPublicID string) bool {
	return s != nil && s.client != nil
}

// EnsureResponseFolder implements submission.BlobStore. It scans the form's
// existing `Response N` prefixes and allocates N+1. The scan and the later
// writes are not atomic: two concurrent submissions can claim the same
// number and share a folder.
func (s *Storage) EnsureResponseFolder(ctx context.Context, formPublicID string) (string, error) {
	highest := 0
	prefix := formPublicID + "/" + responseFolderPrefix

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return "", fmt.Errorf("scan response folders: %w", object.Err)
		}
		rest := strings.TrimPrefix(object.Key, prefix)
		numStr, _, _ := strings.Cut(rest, "/")
		if n, err := strconv.Atoi(numStr); err == nil && n > highest {
			highest = n
		}
	}

	folder := fmt.Sprintf("%s%d", responseFolderPrefix, highest+1)
	log := logger.GetLogger()
	log.Debug().
		Str("form_id", formPublicID).
		Str("folder", folder).
		Msg("allocated response folder")
	return folder, nil
}

// Upload implements submission.BlobStore.
func (s *Storage) Upload(ctx context.Context, formPublicID, folder string, file submission.FileUpload) (*submission.StoredFile, error) {
	objectKey := fmt.Sprintf("%s/%s/%s", formPublicID, folder, file.Name)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey,
		bytes.NewReader(file.Data), int64(len(file.Data)),
		minio.PutObjectOptions{ContentType: file.ContentType})
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	fileID := "file_" + uuid.NewString()
	return &submission.StoredFile{
		FileID:      fileID,
		WebViewLink: s.objectURL(objectKey),
		SecureURL:   s.objectURL(objectKey),
	}, nil
}

func (s *Storage) objectURL(objectKey string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + objectKey
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, objectKey)
}
