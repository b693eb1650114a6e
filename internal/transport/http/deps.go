package http

import (
	"context"
	"io"

	"github.com/leanderkretschmer/lotify/internal/domain"
)

// DeviceRepository is the minimal interface the router requires from the
// device store.
type DeviceRepository interface {
	PutNew(ctx context.Context, d *domain.Device) error
	GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Device, error)
	GetByID(ctx context.Context, deviceID string) (*domain.Device, error)
	SetActive(ctx context.Context, publicKey string, active bool) error
	List(ctx context.Context) ([]domain.Device, error)
}

// MessageRepository is the minimal interface the router requires from the
// message store.
type MessageRepository interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByDevice(ctx context.Context, deviceID string) ([]domain.Message, error)
	ListUndelivered(ctx context.Context, deviceID string) ([]domain.Message, error)
	MarkDelivered(ctx context.Context, messageID string) error
}

// AttachmentRepository is the minimal interface the router requires from the
// attachment metadata store.
type AttachmentRepository interface {
	Put(ctx context.Context, a *domain.AttachmentMeta) error
	ListByDevice(ctx context.Context, deviceID string) ([]domain.AttachmentMeta, error)
}

// ObjectStore is the minimal interface the router requires from the blob
// byte store.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}
