package message

import (
	"context"
	"testing"

	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) AuthorizeSend(ctx context.Context, publicKey, presentedKey string) (*domain.Device, error) {
	args := m.Called(ctx, publicKey, presentedKey)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error) {
	args := m.Called(ctx, publicKey)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Put(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageStore) ListByDevice(ctx context.Context, deviceID string) ([]domain.Message, error) {
	args := m.Called(ctx, deviceID)
	if msgs, _ := args.Get(0).([]domain.Message); msgs != nil {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func activeDevice() *domain.Device {
	return &domain.Device{DeviceID: "d1", PublicKey: "pk1", APIKey: "secret", Active: true}
}

func TestSend_OK(t *testing.T) {
	auth := &mockAuthorizer{}
	auth.On("AuthorizeSend", mock.Anything, "pk1", "secret").Return(activeDevice(), nil)

	msgs := &mockMessageStore{}
	msgs.On("Put", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.DeviceID == "d1" && m.Header == "hi" && m.Content == "body" &&
			!m.Delivered && m.MessageID != ""
	})).Return(nil)

	svc := NewService(auth, &mockDeviceStore{}, msgs, allowAll{})
	m, err := svc.Send(context.Background(), domain.SendRequest{
		PublicKey: "pk1", Header: "hi", Content: "body",
	}, "secret")

	require.NoError(t, err)
	assert.False(t, m.Delivered)
	msgs.AssertExpectations(t)
}

func TestSend_AuthFailureShortCircuits(t *testing.T) {
	auth := &mockAuthorizer{}
	auth.On("AuthorizeSend", mock.Anything, "pk1", "bad").Return(nil, domain.ErrInvalidCredential)

	msgs := &mockMessageStore{}

	svc := NewService(auth, &mockDeviceStore{}, msgs, allowAll{})
	_, err := svc.Send(context.Background(), domain.SendRequest{
		PublicKey: "pk1", Header: "hi", Content: "body",
	}, "bad")

	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	msgs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSend_DeactivatedDevice(t *testing.T) {
	d := activeDevice()
	d.Active = false
	auth := &mockAuthorizer{}
	auth.On("AuthorizeSend", mock.Anything, "pk1", "secret").Return(d, nil)

	svc := NewService(auth, &mockDeviceStore{}, &mockMessageStore{}, allowAll{})
	_, err := svc.Send(context.Background(), domain.SendRequest{
		PublicKey: "pk1", Header: "hi", Content: "body",
	}, "secret")

	assert.ErrorIs(t, err, domain.ErrDeviceDeactivated)
}

func TestSend_RateLimited(t *testing.T) {
	auth := &mockAuthorizer{}
	auth.On("AuthorizeSend", mock.Anything, "pk1", "secret").Return(activeDevice(), nil)

	msgs := &mockMessageStore{}

	svc := NewService(auth, &mockDeviceStore{}, msgs, denyAll{})
	_, err := svc.Send(context.Background(), domain.SendRequest{
		PublicKey: "pk1", Header: "hi", Content: "body",
	}, "secret")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	msgs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestListForPublicKey_UnknownDevice(t *testing.T) {
	devices := &mockDeviceStore{}
	devices.On("GetByPublicKey", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockAuthorizer{}, devices, &mockMessageStore{}, allowAll{})
	_, err := svc.ListForPublicKey(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListForPublicKey_ReturnsAllIncludingDelivered(t *testing.T) {
	devices := &mockDeviceStore{}
	devices.On("GetByPublicKey", mock.Anything, "pk1").Return(activeDevice(), nil)

	stored := []domain.Message{
		{MessageID: "m1", DeviceID: "d1", Header: "a", Delivered: true},
		{MessageID: "m2", DeviceID: "d1", Header: "b", Delivered: false},
	}
	msgs := &mockMessageStore{}
	msgs.On("ListByDevice", mock.Anything, "d1").Return(stored, nil)

	svc := NewService(&mockAuthorizer{}, devices, msgs, allowAll{})
	got, err := svc.ListForPublicKey(context.Background(), "pk1")

	require.NoError(t, err)
	assert.Equal(t, stored, got)
}
