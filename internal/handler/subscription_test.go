package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dstanfill/parley/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubscriptionService struct {
	plans          []domain.Plan
	plansErr       error
	purchaseResult *domain.PurchaseResult
	purchaseErr    error
	purchaseParams domain.PurchaseParams
	cancelErr      error
	cancelCalls    int
}

func (m *mockSubscriptionService) Plans(ctx context.Context) ([]domain.Plan, error) {
	return m.plans, m.plansErr
}

func (m *mockSubscriptionService) Purchase(ctx context.Context, params domain.PurchaseParams) (*domain.PurchaseResult, error) {
	m.purchaseParams = params
	return m.purchaseResult, m.purchaseErr
}

func (m *mockSubscriptionService) Cancel(ctx context.Context, userID uuid.UUID, chatToken string) error {
	m.cancelCalls++
	return m.cancelErr
}

func TestSubscriptionHandler_Plans(t *testing.T) {
	svc := &mockSubscriptionService{
		plans: []domain.Plan{
			{ID: 1, Type: "basic", BillingCycle: "monthly", Price: "9.99", MaxMessages: "100"},
			{ID: 6, Type: "premium", BillingCycle: "yearly", Price: "199.99", MaxMessages: "unlimited"},
		},
	}
	h := NewSubscriptionHandler(svc, testLogger())

	req := httptest.NewRequest("GET", "/subscription/plans", nil)
	rec := httptest.NewRecorder()
	h.Plans(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool          `json:"success"`
		Data    []planPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Basic Monthly", body.Data[0].DisplayName)
	assert.Equal(t, "unlimited", body.Data[1].MaxMessages)
}

func purchaseBody(userID uuid.UUID) string {
	return `{
		"user_id": "` + userID.String() + `",
		"chat_token": "abc123",
		"subscription_id": 2,
		"auto_renew": true,
		"card_number": "4242 4242 4242 4242",
		"cvc": "123",
		"card_expiry_date": "12/27"
	}`
}

func TestSubscriptionHandler_Purchase(t *testing.T) {
	userID := uuid.New()
	subID := int32(2)
	daysLeft := int32(30)
	start := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	svc := &mockSubscriptionService{
		purchaseResult: &domain.PurchaseResult{
			Payment: &domain.Payment{
				ID:             uuid.New(),
				UserID:         userID,
				SubscriptionID: subID,
				ChatToken:      "abc123",
				AutoRenew:      true,
				CardLast4:      "4242",
				CardToken:      "tok_deadbeef",
			},
			Plan: &domain.Plan{ID: subID, Type: "standard", BillingCycle: "monthly", Price: "19.99", MaxMessages: "500"},
			Settings: &domain.Settings{
				UserID:            userID,
				SubscriptionID:    &subID,
				FreeMessages:      500,
				SubscriptionStart: &start,
				SubscriptionEnd:   &end,
				DaysLeft:          &daysLeft,
				AutoRenew:         true,
			},
		},
	}
	h := NewSubscriptionHandler(svc, testLogger())

	req := httptest.NewRequest("POST", "/subscription/purchase", strings.NewReader(purchaseBody(userID)))
	rec := httptest.NewRecorder()
	h.Purchase(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Raw card fields reach the service; the response never echoes them
	assert.Equal(t, "4242 4242 4242 4242", svc.purchaseParams.Card.Number)
	assert.NotContains(t, rec.Body.String(), "4242 4242")
	assert.NotContains(t, rec.Body.String(), `"cvc"`)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Payment  paymentPayload  `json:"payment"`
			Plan     planPayload     `json:"plan"`
			Settings settingsPayload `json:"settings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Subscription purchased successfully", body.Message)
	assert.Equal(t, "4242", body.Data.Payment.CardLast4)
	assert.Equal(t, int32(500), body.Data.Settings.FreeMessages)
	require.NotNil(t, body.Data.Settings.SubscriptionEnd)
	assert.Equal(t, "2025-04-14", *body.Data.Settings.SubscriptionEnd)
}

func TestSubscriptionHandler_Purchase_Validation(t *testing.T) {
	h := NewSubscriptionHandler(&mockSubscriptionService{}, testLogger())

	payload := `{"user_id":"` + uuid.NewString() + `","chat_token":"abc123","subscription_id":2}`
	req := httptest.NewRequest("POST", "/subscription/purchase", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Purchase(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Missing required fields", body.Error)
	assert.Contains(t, body.Fields, "auto_renew")
	assert.Contains(t, body.Fields, "card_number")
	assert.Contains(t, body.Fields, "cvc")
	assert.Contains(t, body.Fields, "card_expiry_date")
}

func TestSubscriptionHandler_Purchase_UnknownPlan(t *testing.T) {
	svc := &mockSubscriptionService{
		purchaseErr: domain.PlanNotFound("SubscriptionService.Purchase", 99),
	}
	h := NewSubscriptionHandler(svc, testLogger())

	req := httptest.NewRequest("POST", "/subscription/purchase", strings.NewReader(purchaseBody(uuid.New())))
	rec := httptest.NewRecorder()
	h.Purchase(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	svc := &mockSubscriptionService{}
	h := NewSubscriptionHandler(svc, testLogger())

	payload := `{"user_id":"` + uuid.NewString() + `","chat_token":"abc123"}`
	req := httptest.NewRequest("POST", "/subscription/cancel", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.cancelCalls)
	assert.Contains(t, rec.Body.String(), "Subscription canceled successfully")
}

func TestSubscriptionHandler_Cancel_NotFound(t *testing.T) {
	svc := &mockSubscriptionService{
		cancelErr: domain.NotFound("SubscriptionService.Cancel", "settings", uuid.NewString()),
	}
	h := NewSubscriptionHandler(svc, testLogger())

	payload := `{"user_id":"` + uuid.NewString() + `","chat_token":"abc123"}`
	req := httptest.NewRequest("POST", "/subscription/cancel", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
