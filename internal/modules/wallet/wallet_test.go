package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homechef-delivery/internal/models"
	"homechef-delivery/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

var testPolicy = Policy{WalletMaxUsagePerOrder: 50, WalletMinOrderAmount: 100, BonusMinOrderAmount: 150}

func TestEligibility(t *testing.T) {
	tests := []struct {
		name         string
		balance      float64
		orderTotal   float64
		wantEligible bool
		wantBonus    float64
	}{
		{"no balance", 0, 500, false, 0},
		{"below minimum", 50, 149, false, 0},
		{"at minimum", 50, 150, true, 50},
		{"above minimum", 80, 400, true, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Eligibility(tt.balance, tt.orderTotal, 150)
			assert.Equal(t, tt.wantEligible, got.Eligible)
			assert.Equal(t, tt.wantBonus, got.Bonus)
			assert.Equal(t, 150.0, got.MinOrderAmount)
			if !tt.wantEligible {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestService_Summary(t *testing.T) {
	users := new(mockUsers)
	users.On("FindByID", mock.Anything, "u-1").Return(&models.User{ID: "u-1", WalletBalance: 120, BonusBalance: 50}, nil)
	users.On("FindByID", mock.Anything, "ghost").Return(nil, models.ErrNotFound)
	svc := NewService(users, testPolicy)

	summary, err := svc.Summary(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, summary.WalletBalance)
	assert.Equal(t, 50.0, summary.MaxUsagePerOrder)
	assert.Equal(t, 100.0, summary.MinOrderAmount)

	_, err = svc.Summary(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHandler_CheckBonusEligibility(t *testing.T) {
	users := new(mockUsers)
	users.On("FindByID", mock.Anything, "u-1").Return(&models.User{ID: "u-1", BonusBalance: 50}, nil)
	h := NewHandler(NewService(users, testPolicy))
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/user/check-bonus-eligibility", strings.NewReader(`{"orderTotal":230}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(utils.UserIDKey, "u-1")

	require.NoError(t, h.CheckBonusEligibility(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body models.BonusEligibility
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Eligible)
	assert.Equal(t, 50.0, body.Bonus)
}

func TestHandler_GetWallet_RequiresLogin(t *testing.T) {
	h := NewHandler(NewService(new(mockUsers), testPolicy))
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/user/wallet", nil), httptest.NewRecorder())

	var he *echo.HTTPError
	require.ErrorAs(t, h.GetWallet(c), &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
