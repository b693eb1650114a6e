package device

import (
	"context"
	"errors"
	"time"

	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/leanderkretschmer/lotify/internal/pkg/apikey"
	"github.com/leanderkretschmer/lotify/internal/pkg/id"
)

// RegisterResult is the outcome of a registration attempt.
type RegisterResult struct {
	APIKey  string
	Created bool
}

type Service interface {
	// Register returns the api key for publicKey, creating a device on first
	// sight. Re-registering an existing public key returns the original key
	// and Created=false.
	Register(ctx context.Context, publicKey string) (RegisterResult, error)
	Get(ctx context.Context, publicKey string) (*domain.Device, error)
	// SetActive toggles the active flag; fails with ErrNotFound for unknown ids.
	SetActive(ctx context.Context, deviceID string, active bool) error
}

type deviceStore interface {
	PutNew(ctx context.Context, d *domain.Device) error
	GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error)
	GetByID(ctx context.Context, deviceID string) (*domain.Device, error)
	SetActive(ctx context.Context, publicKey string, active bool) error
}

type service struct {
	repo deviceStore
}

func NewService(repo deviceStore) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, publicKey string) (RegisterResult, error) {
	existing, err := s.repo.GetByPublicKey(ctx, publicKey)
	if err == nil {
		return RegisterResult{APIKey: existing.APIKey, Created: false}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return RegisterResult{}, err
	}

	key, err := apikey.New()
	if err != nil {
		return RegisterResult{}, err
	}
	d := &domain.Device{
		DeviceID:  id.New(),
		PublicKey: publicKey,
		APIKey:    key,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	err = s.repo.PutNew(ctx, d)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a registration race — the winner's api key is authoritative.
		winner, getErr := s.repo.GetByPublicKey(ctx, publicKey)
		if getErr != nil {
			return RegisterResult{}, getErr
		}
		return RegisterResult{APIKey: winner.APIKey, Created: false}, nil
	}
	if err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{APIKey: key, Created: true}, nil
}

func (s *service) Get(ctx context.Context, publicKey string) (*domain.Device, error) {
	return s.repo.GetByPublicKey(ctx, publicKey)
}

func (s *service) SetActive(ctx context.Context, deviceID string, active bool) error {
	d, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	return s.repo.SetActive(ctx, d.PublicKey, active)
}
