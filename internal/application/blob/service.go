package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/leanderkretschmer/lotify/internal/domain"
	s3infra "github.com/leanderkretschmer/lotify/internal/infrastructure/s3"
	"github.com/leanderkretschmer/lotify/internal/pkg/id"
)

// UploadInput carries one uploaded attachment.
type UploadInput struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

type Service interface {
	// Upload authorizes the credential, stores the bytes and records the
	// attachment metadata for usage accounting. Returns the blob id.
	Upload(ctx context.Context, presentedKey string, input UploadInput) (string, error)
	// Download streams a blob by id together with its content type.
	Download(ctx context.Context, blobID string) (io.ReadCloser, string, error)
	// UsageBytes sums the recorded attachment sizes for one device.
	UsageBytes(ctx context.Context, deviceID string) (int64, error)
}

type authorizer interface {
	AuthorizeUpload(ctx context.Context, presentedKey string) (*domain.Device, error)
}

type byteStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type attachmentStore interface {
	Put(ctx context.Context, a *domain.AttachmentMeta) error
	ListByDevice(ctx context.Context, deviceID string) ([]domain.AttachmentMeta, error)
}

type service struct {
	auth        authorizer
	store       byteStore
	attachments attachmentStore
}

func NewService(auth authorizer, store byteStore, attachments attachmentStore) Service {
	return &service{auth: auth, store: store, attachments: attachments}
}

func (s *service) Upload(ctx context.Context, presentedKey string, input UploadInput) (string, error) {
	d, err := s.auth.AuthorizeUpload(ctx, presentedKey)
	if err != nil {
		return "", err
	}

	safeName := sanitizeFilename(input.Filename)
	blobID := id.New() + path.Ext(safeName)
	if err := s.store.Upload(ctx, objectKey(blobID), input.Reader, s3infra.DetectContentType(safeName)); err != nil {
		return "", err
	}

	meta := &domain.AttachmentMeta{
		BlobID:    blobID,
		DeviceID:  d.DeviceID,
		Name:      safeName,
		Size:      input.Size,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.attachments.Put(ctx, meta); err != nil {
		return "", fmt.Errorf("record attachment: %w", err)
	}
	return blobID, nil
}

func (s *service) Download(ctx context.Context, blobID string) (io.ReadCloser, string, error) {
	return s.store.Download(ctx, objectKey(sanitizeFilename(blobID)))
}

func (s *service) UsageBytes(ctx context.Context, deviceID string) (int64, error) {
	attachments, err := s.attachments.ListByDevice(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, a := range attachments {
		total += a.Size
	}
	return total, nil
}

func objectKey(blobID string) string {
	return "blobs/" + blobID
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
