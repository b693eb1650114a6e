package message

import (
	"context"
	"fmt"
	"time"

	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/leanderkretschmer/lotify/internal/pkg/id"
)

type Service interface {
	// Send authorizes the presented credential against the target device,
	// enforces the per-key quota and appends the message undelivered.
	Send(ctx context.Context, req domain.SendRequest, presentedKey string) (*domain.Message, error)
	// ListForPublicKey returns every stored message for the device,
	// delivered or not, in storage order.
	ListForPublicKey(ctx context.Context, publicKey string) ([]domain.Message, error)
}

type authorizer interface {
	AuthorizeSend(ctx context.Context, publicKey, presentedKey string) (*domain.Device, error)
}

type deviceStore interface {
	GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error)
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByDevice(ctx context.Context, deviceID string) ([]domain.Message, error)
}

type limiter interface {
	Allow(credential string) bool
}

type service struct {
	auth     authorizer
	devices  deviceStore
	messages messageStore
	limiter  limiter
}

func NewService(auth authorizer, devices deviceStore, messages messageStore, limiter limiter) Service {
	return &service{auth: auth, devices: devices, messages: messages, limiter: limiter}
}

func (s *service) Send(ctx context.Context, req domain.SendRequest, presentedKey string) (*domain.Message, error) {
	d, err := s.auth.AuthorizeSend(ctx, req.PublicKey, presentedKey)
	if err != nil {
		return nil, err
	}
	if !d.Active {
		return nil, fmt.Errorf("device %s: %w", d.DeviceID, domain.ErrDeviceDeactivated)
	}
	if !s.limiter.Allow(presentedKey) {
		return nil, fmt.Errorf("api key quota: %w", domain.ErrRateLimited)
	}
	m := &domain.Message{
		MessageID: id.New(),
		DeviceID:  d.DeviceID,
		Header:    req.Header,
		Content:   req.Content,
		BlobID:    req.BlobID,
		Delivered: false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListForPublicKey(ctx context.Context, publicKey string) ([]domain.Message, error) {
	d, err := s.devices.GetByPublicKey(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByDevice(ctx, d.DeviceID)
}
