package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/leanderkretschmer/lotify/internal/pkg/apikey"
)

// Service authorizes api-key credentials against the device store.
type Service interface {
	// AuthorizeSend resolves the target device by public key and checks the
	// presented api key. Unknown public keys fail with ErrNotRegistered
	// before any credential comparison.
	AuthorizeSend(ctx context.Context, publicKey, presentedKey string) (*domain.Device, error)
	// AuthorizeUpload resolves the device owning the presented api key.
	AuthorizeUpload(ctx context.Context, presentedKey string) (*domain.Device, error)
}

type deviceStore interface {
	GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error)
	GetByAPIKey(ctx context.Context, key string) (*domain.Device, error)
}

type service struct {
	devices deviceStore
}

func NewService(devices deviceStore) Service {
	return &service{devices: devices}
}

func (s *service) AuthorizeSend(ctx context.Context, publicKey, presentedKey string) (*domain.Device, error) {
	d, err := s.devices.GetByPublicKey(ctx, publicKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", publicKey, domain.ErrNotRegistered)
	}
	if err != nil {
		return nil, err
	}
	if presentedKey == "" || !apikey.Equal(presentedKey, d.APIKey) {
		return nil, fmt.Errorf("api key mismatch: %w", domain.ErrInvalidCredential)
	}
	return d, nil
}

func (s *service) AuthorizeUpload(ctx context.Context, presentedKey string) (*domain.Device, error) {
	if presentedKey == "" {
		return nil, fmt.Errorf("missing api key: %w", domain.ErrInvalidCredential)
	}
	d, err := s.devices.GetByAPIKey(ctx, presentedKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no device for api key: %w", domain.ErrInvalidCredential)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
