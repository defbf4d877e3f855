package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSettingsService struct {
	settings     *domain.Settings
	getErr       error
	detailed     *domain.DetailedSettings
	detailedErr  error
	autoRenewErr error
	autoRenewArg bool
	autoRenewSet bool
}

func (m *mockSettingsService) Get(ctx context.Context, userID uuid.UUID, chatToken string) (*domain.Settings, error) {
	return m.settings, m.getErr
}

func (m *mockSettingsService) Detailed(ctx context.Context, userID uuid.UUID, chatToken string) (*domain.DetailedSettings, error) {
	return m.detailed, m.detailedErr
}

func (m *mockSettingsService) SetAutoRenew(ctx context.Context, userID uuid.UUID, chatToken string, autoRenew bool) error {
	m.autoRenewSet = true
	m.autoRenewArg = autoRenew
	return m.autoRenewErr
}

func sessionBody() string {
	return `{"user_id":"` + uuid.NewString() + `","chat_token":"abc123"}`
}

func TestSettingsHandler_Get(t *testing.T) {
	userID := uuid.New()
	svc := &mockSettingsService{
		settings: &domain.Settings{UserID: userID, FreeMessages: 2},
	}
	h := NewSettingsHandler(svc, testLogger())

	req := httptest.NewRequest("POST", "/settings/get-settings", strings.NewReader(sessionBody()))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    settingsPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, userID, body.Data.UserID)
	assert.Equal(t, int32(2), body.Data.FreeMessages)
	assert.Nil(t, body.Data.SubscriptionID)
}

func TestSettingsHandler_Get_NotFound(t *testing.T) {
	svc := &mockSettingsService{
		getErr: domain.NotFound("SettingsService.Get", "settings", uuid.NewString()),
	}
	h := NewSettingsHandler(svc, testLogger())

	req := httptest.NewRequest("POST", "/settings/get-settings", strings.NewReader(sessionBody()))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsHandler_Detailed(t *testing.T) {
	userID := uuid.New()
	subID := int32(1)
	svc := &mockSettingsService{
		detailed: &domain.DetailedSettings{
			Settings: &domain.Settings{UserID: userID, SubscriptionID: &subID},
			Payments: []domain.Payment{
				{ID: uuid.New(), UserID: userID, SubscriptionID: subID, CardLast4: "4242"},
			},
			ConsumedMessages:  8,
			RemainingMessages: 95,
		},
	}
	h := NewSettingsHandler(svc, testLogger())

	req := httptest.NewRequest("POST", "/settings/get-detailed-settings", strings.NewReader(sessionBody()))
	rec := httptest.NewRecorder()
	h.Detailed(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Settings          settingsPayload  `json:"settings"`
			Payments          []paymentPayload `json:"payments"`
			ConsumedMessages  int64            `json:"consumed_messages"`
			RemainingMessages int64            `json:"remaining_messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(8), body.Data.ConsumedMessages)
	assert.Equal(t, int64(95), body.Data.RemainingMessages)
	require.Len(t, body.Data.Payments, 1)
	assert.Equal(t, "4242", body.Data.Payments[0].CardLast4)
}

func TestSettingsHandler_UpdateAutoRenew(t *testing.T) {
	tests := []struct {
		name        string
		autoRenew   string
		wantArg     bool
		wantMessage string
	}{
		{"enable", "true", true, "Auto-renew enabled successfully"},
		{"disable", "false", false, "Auto-renew disabled successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSettingsService{}
			h := NewSettingsHandler(svc, testLogger())

			payload := `{"user_id":"` + uuid.NewString() + `","chat_token":"abc123","auto_renew":` + tt.autoRenew + `}`
			req := httptest.NewRequest("POST", "/settings/update-autorenew", strings.NewReader(payload))
			rec := httptest.NewRecorder()
			h.UpdateAutoRenew(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, svc.autoRenewSet)
			assert.Equal(t, tt.wantArg, svc.autoRenewArg)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

func TestSettingsHandler_UpdateAutoRenew_MissingFlag(t *testing.T) {
	svc := &mockSettingsService{}
	h := NewSettingsHandler(svc, testLogger())

	req := httptest.NewRequest("POST", "/settings/update-autorenew", strings.NewReader(sessionBody()))
	rec := httptest.NewRecorder()
	h.UpdateAutoRenew(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.autoRenewSet)
	assert.Contains(t, rec.Body.String(), "auto_renew")
}
