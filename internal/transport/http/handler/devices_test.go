package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanderkretschmer/lotify/internal/application/device"
	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDeviceService struct{ mock.Mock }

func (m *mockDeviceService) Register(ctx context.Context, publicKey string) (device.RegisterResult, error) {
	args := m.Called(ctx, publicKey)
	return args.Get(0).(device.RegisterResult), args.Error(1)
}

func (m *mockDeviceService) Get(ctx context.Context, publicKey string) (*domain.Device, error) {
	args := m.Called(ctx, publicKey)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceService) SetActive(ctx context.Context, deviceID string, active bool) error {
	args := m.Called(ctx, deviceID, active)
	return args.Error(0)
}

func TestRegister_NewDevice(t *testing.T) {
	svc := &mockDeviceService{}
	svc.On("Register", mock.Anything, "pk1").Return(device.RegisterResult{APIKey: "key1", Created: true}, nil)

	h := NewDeviceHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"public_key":"pk1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body RegisterEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "registered", body.Status)
	assert.Equal(t, "key1", body.APIKey)
}

func TestRegister_ExistingDevice(t *testing.T) {
	svc := &mockDeviceService{}
	svc.On("Register", mock.Anything, "pk1").Return(device.RegisterResult{APIKey: "key1", Created: false}, nil)

	h := NewDeviceHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"public_key":"pk1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body RegisterEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "already_registered", body.Status)
	assert.Equal(t, "key1", body.APIKey)
}

func TestRegister_MissingPublicKey(t *testing.T) {
	h := NewDeviceHandler(&mockDeviceService{})
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	h := NewDeviceHandler(&mockDeviceService{})
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
