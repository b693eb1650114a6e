package admin

import (
	"context"
	"fmt"

	"github.com/leanderkretschmer/lotify/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DeviceUsage is one row of the admin device listing.
type DeviceUsage struct {
	Device     domain.Device `json:"device"`
	UsageBytes int64         `json:"usage_bytes"`
	Live       bool          `json:"live"`
}

type Service interface {
	// Login checks the configured admin credentials and returns a signed token.
	Login(ctx context.Context, username, password string) (string, error)
	// ListDevices returns all devices with their computed usage (message
	// content bytes plus recorded attachment sizes) and live-connection state.
	ListDevices(ctx context.Context) ([]DeviceUsage, error)
	SetActive(ctx context.Context, deviceID string, active bool) error
}

type deviceService interface {
	SetActive(ctx context.Context, deviceID string, active bool) error
}

type deviceLister interface {
	List(ctx context.Context) ([]domain.Device, error)
}

type messageStore interface {
	ListByDevice(ctx context.Context, deviceID string) ([]domain.Message, error)
}

type usageCounter interface {
	UsageBytes(ctx context.Context, deviceID string) (int64, error)
}

type connectionRegistry interface {
	Connected(publicKey string) bool
}

type tokenSigner interface {
	Sign(username string) (string, error)
}

type ServiceDeps struct {
	Devices      deviceLister
	DeviceSvc    deviceService
	Messages     messageStore
	Usage        usageCounter
	Registry     connectionRegistry
	Signer       tokenSigner
	Username     string
	PasswordHash string
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

func (s *service) Login(_ context.Context, username, password string) (string, error) {
	if username != s.deps.Username || s.deps.PasswordHash == "" {
		return "", fmt.Errorf("bad admin credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.deps.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("bad admin credentials: %w", domain.ErrUnauthorized)
	}
	return s.deps.Signer.Sign(username)
}

func (s *service) ListDevices(ctx context.Context) ([]DeviceUsage, error) {
	devices, err := s.deps.Devices.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]DeviceUsage, 0, len(devices))
	for _, d := range devices {
		usage, err := s.usageFor(ctx, d.DeviceID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, DeviceUsage{
			Device:     d,
			UsageBytes: usage,
			Live:       s.deps.Registry.Connected(d.PublicKey),
		})
	}
	return rows, nil
}

func (s *service) usageFor(ctx context.Context, deviceID string) (int64, error) {
	msgs, err := s.deps.Messages.ListByDevice(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, m := range msgs {
		total += int64(len(m.Content))
	}
	attachmentBytes, err := s.deps.Usage.UsageBytes(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	return total + attachmentBytes, nil
}

func (s *service) SetActive(ctx context.Context, deviceID string, active bool) error {
	return s.deps.DeviceSvc.SetActive(ctx, deviceID, active)
}
