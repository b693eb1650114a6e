package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/leanderkretschmer/lotify/internal/application/admin"
	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *mockAdminService) ListDevices(ctx context.Context) ([]admin.DeviceUsage, error) {
	args := m.Called(ctx)
	if rows, _ := args.Get(0).([]admin.DeviceUsage); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) SetActive(ctx context.Context, deviceID string, active bool) error {
	args := m.Called(ctx, deviceID, active)
	return args.Error(0)
}

func TestAdminLogin_OK(t *testing.T) {
	svc := &mockAdminService{}
	svc.On("Login", mock.Anything, "admin", "hunter2").Return("tok", nil)

	h := NewAdminHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"username":"admin","password":"hunter2"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tok", body["Bearer"])
}

func TestAdminLogin_BadCredentialsIs401(t *testing.T) {
	svc := &mockAdminService{}
	svc.On("Login", mock.Anything, "admin", "wrong").Return("", domain.ErrUnauthorized)

	h := NewAdminHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"username":"admin","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogin_MissingFieldsIs400(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSetActive_OK(t *testing.T) {
	svc := &mockAdminService{}
	svc.On("SetActive", mock.Anything, "d1", false).Return(nil)

	r := chi.NewRouter()
	r.Put("/admin/devices/{id}/active", NewAdminHandler(svc).SetActive)

	req := httptest.NewRequest(http.MethodPut, "/admin/devices/d1/active",
		strings.NewReader(`{"active":false}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAdminSetActive_MissingFlagIs400(t *testing.T) {
	svc := &mockAdminService{}

	r := chi.NewRouter()
	r.Put("/admin/devices/{id}/active", NewAdminHandler(svc).SetActive)

	req := httptest.NewRequest(http.MethodPut, "/admin/devices/d1/active", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminSetActive_UnknownDeviceIs404(t *testing.T) {
	svc := &mockAdminService{}
	svc.On("SetActive", mock.Anything, "nope", true).Return(domain.ErrNotFound)

	r := chi.NewRouter()
	r.Put("/admin/devices/{id}/active", NewAdminHandler(svc).SetActive)

	req := httptest.NewRequest(http.MethodPut, "/admin/devices/nope/active",
		strings.NewReader(`{"active":true}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
