package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"homechef-delivery/internal/models"
	"homechef-delivery/internal/modules/wallet"
	"homechef-delivery/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*models.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 100, orders: map[int64]*models.Order{}}
}

func (r *fakeRepo) CreateTx(_ context.Context, _ pgx.Tx, o *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := *o
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.orders[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, models.ErrNotFound
}

func (r *fakeRepo) ListByUserID(_ context.Context, userID string, _, _ int) ([]*models.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

type fakeChefs map[int64]*models.Chef

func (f fakeChefs) GetChef(_ context.Context, id int64) (*models.Chef, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, models.ErrNotFound
}

type balanceChange struct {
	userID        string
	wallet, bonus float64
}

type fakeAccounts struct {
	users     map[string]*models.User
	created   []*models.User
	changes   []balanceChange
	createErr error
}

func (f *fakeAccounts) GetProfile(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeAccounts) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAccounts) FindByReferralCode(_ context.Context, code string) (*models.User, error) {
	for _, u := range f.users {
		if u.ReferralCode == code {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAccounts) NewCheckoutAccount(name, phone, email string, referrer *models.User, bonus float64) (*models.User, error) {
	u := &models.User{ID: "new-" + phone, Name: name, Phone: phone, Email: email, Role: models.RoleCustomer}
	if referrer != nil {
		u.ReferredBy = &referrer.ID
		u.BonusBalance = bonus
	}
	return u, nil
}

func (f *fakeAccounts) IssueAccessToken(u *models.User) (string, error) {
	return "token-" + u.ID, nil
}

func (f *fakeAccounts) CreateTx(_ context.Context, _ pgx.Tx, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeAccounts) AdjustBalancesTx(_ context.Context, _ pgx.Tx, userID string, w, b float64) error {
	f.changes = append(f.changes, balanceChange{userID, w, b})
	return nil
}

type fakeCoupons struct {
	redeemed []string
}

func (f *fakeCoupons) Verify(_ context.Context, code string, _, _ float64) (*models.VerifyCouponResponse, error) {
	if strings.EqualFold(code, "FLAT50") {
		return &models.VerifyCouponResponse{Code: "FLAT50", DiscountAmount: 50}, nil
	}
	return nil, models.ErrInvalidCoupon
}

func (f *fakeCoupons) RedeemTx(_ context.Context, _ pgx.Tx, code string) error {
	f.redeemed = append(f.redeemed, code)
	return nil
}

type recordingPublisher struct {
	events []models.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, evt models.OrderPlacedEvent) error {
	p.events = append(p.events, evt)
	return p.err
}

func runDirect(_ context.Context, fn func(pgx.Tx) error) error { return fn(nil) }

// --- fixtures ---

func kurlaChef() *models.Chef {
	return &models.Chef{
		ID: 7, Name: "Kurla Kitchen", IsActive: true,
		DeliverySettings: models.DeliverySettings{
			DefaultDeliveryFee: 40, DeliveryFeePerKm: 5, FreeDeliveryThreshold: 250, MaxDeliveryDistanceKm: 5,
		},
		Latitude: 19.0726, Longitude: 72.8845,
	}
}

type harness struct {
	svc       *Service
	repo      *fakeRepo
	accounts  *fakeAccounts
	coupons   *fakeCoupons
	publisher *recordingPublisher
	chefs     fakeChefs
}

func newHarness() *harness {
	h := &harness{
		repo: newFakeRepo(),
		accounts: &fakeAccounts{users: map[string]*models.User{
			"u-1": {ID: "u-1", Name: "Asha", Phone: "9876543210", ReferralCode: "ASHA2345", WalletBalance: 20, Role: models.RoleCustomer},
		}},
		coupons:   &fakeCoupons{},
		publisher: &recordingPublisher{},
		chefs:     fakeChefs{7: kurlaChef()},
	}
	h.svc = NewService(Dependencies{
		Repo:         h.repo,
		Chefs:        h.chefs,
		Accounts:     h.accounts,
		AccountStore: h.accounts,
		Coupons:      h.coupons,
		CouponStore:  h.coupons,
		RunInTx:      runDirect,
		Publisher:    h.publisher,
		QR:           PaymentQR{VPA: "kitchen@upi", PayeeName: "Home Chef"},
		Policy: Policy{
			Wallet:              wallet.Policy{WalletMaxUsagePerOrder: 50, WalletMinOrderAmount: 100, BonusMinOrderAmount: 150},
			ReferralReward:      50,
			ReferralSignupBonus: 50,
			Slots:               testSlots(),
		},
		Now: func() time.Time { return at(10, 9, 0) },
	})
	return h
}

func f64(v float64) *float64 { return &v }

func baseRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		CustomerName: "Ravi",
		Phone:        "9123456780",
		AddressQuery: models.AddressQuery{Building: "12 Sai Niwas", Area: "Kurla West", City: "Mumbai", Pincode: "400070"},
		Items: []models.OrderItem{
			{MenuItemID: 1, Name: "Dal", Category: "Curry", Price: 100, Quantity: 2},
			{MenuItemID: 2, Name: "Rice", Category: "Rice", Price: 100, Quantity: 1},
		},
		ChefID: 7,
		Total:  1,
	}
}

// --- service tests ---

func TestPlaceOrder_GuardsRunInOrder(t *testing.T) {
	h := newHarness()
	inactive := kurlaChef()
	inactive.ID, inactive.IsActive = 8, false
	h.chefs[8] = inactive

	empty := baseRequest()
	empty.Items = nil
	empty.ChefID = 8
	empty.Phone = "12"
	_, err := h.svc.PlaceOrder(context.Background(), "", empty)
	assert.ErrorIs(t, err, models.ErrCartEmpty)

	closed := baseRequest()
	closed.ChefID = 8
	closed.Phone = "12"
	_, err = h.svc.PlaceOrder(context.Background(), "", closed)
	assert.ErrorIs(t, err, models.ErrChefInactive)

	badPhone := baseRequest()
	badPhone.Phone = "98765-4321"
	_, err = h.svc.PlaceOrder(context.Background(), "", badPhone)
	assert.ErrorIs(t, err, models.ErrInvalidPhone)

	noName := baseRequest()
	noName.CustomerName = ""
	noName.Phone = "9876543210"
	_, err = h.svc.PlaceOrder(context.Background(), "", noName)
	assert.ErrorIs(t, err, models.ErrInvalidName)

	registered := baseRequest()
	registered.Phone = "9876543210"
	registered.DeliverySlot = models.SlotEvening
	registered.Items = rotiItems
	_, err = h.svc.PlaceOrder(context.Background(), "", registered)
	var rejection *models.OrderRejection
	require.ErrorAs(t, err, &rejection)
	assert.True(t, rejection.RequiresLogin)
	assert.False(t, rejection.RequiresReschedule)

	late := baseRequest()
	late.Items = rotiItems
	late.DeliveryDate = "2025-03-10"
	_, err = h.svc.PlaceOrder(context.Background(), "", late)
	require.ErrorAs(t, err, &rejection)
	assert.True(t, rejection.RequiresReschedule)
	assert.Equal(t, "2025-03-11", rejection.NextAvailableDate)

	assert.Empty(t, h.repo.orders)
}

func TestPlaceOrder_SignedInWithCouponAndWallet(t *testing.T) {
	h := newHarness()
	req := baseRequest()
	req.Phone = "9876543210"
	req.CouponCode = "flat50"
	req.UseWallet = true

	res, err := h.svc.PlaceOrder(context.Background(), "u-1", req)
	require.NoError(t, err)

	// 300 subtotal ships free above 250; 300 - 50 - 20 = 230.
	assert.Equal(t, 230.0, res.Total)
	assert.False(t, res.AccountCreated)
	assert.Empty(t, res.AccessToken)

	stored := h.repo.orders[res.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "u-1", stored.UserID)
	assert.Equal(t, 300.0, stored.Subtotal)
	assert.Equal(t, 0.0, stored.DeliveryFee)
	assert.Equal(t, 50.0, stored.Discount)
	assert.Equal(t, 20.0, stored.WalletUsed)
	assert.Equal(t, "2025-03-10", stored.DeliveryDate.Format(dateLayout))

	assert.Equal(t, []string{"FLAT50"}, h.coupons.redeemed)
	assert.Equal(t, []balanceChange{{"u-1", -20, 0}}, h.accounts.changes)
	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, res.ID, h.publisher.events[0].OrderID)
}

func TestPlaceOrder_GuestWithReferral(t *testing.T) {
	h := newHarness()
	req := baseRequest()
	req.ReferralCode = "ASHA2345"
	req.UseBonus = true

	res, err := h.svc.PlaceOrder(context.Background(), "", req)
	require.NoError(t, err)

	assert.True(t, res.AccountCreated)
	assert.Equal(t, "token-new-9123456780", res.AccessToken)
	assert.Equal(t, 50.0, res.AppliedReferralBonus)
	assert.Equal(t, 250.0, res.Total)

	require.Len(t, h.accounts.created, 1)
	assert.Equal(t, "u-1", *h.accounts.created[0].ReferredBy)
	assert.Equal(t, []balanceChange{
		{"new-9123456780", 0, -50},
		{"u-1", 50, 0},
	}, h.accounts.changes)
}

func TestPlaceOrder_PricesDistanceOnServer(t *testing.T) {
	h := newHarness()
	req := baseRequest()
	req.Items = []models.OrderItem{{MenuItemID: 1, Name: "Dal", Price: 120, Quantity: 1}}
	// About 1.23 km from the kitchen.
	req.CustomerLatitude, req.CustomerLongitude = f64(19.0650), f64(72.8930)
	req.DeliveryFee = 0
	req.Total = 120

	res, err := h.svc.PlaceOrder(context.Background(), "", req)
	require.NoError(t, err)

	stored := h.repo.orders[res.ID]
	assert.Equal(t, 7.0, stored.DeliveryFee)
	assert.Equal(t, 127.0, stored.Total)
	require.NotNil(t, stored.DistanceKm)
	assert.Equal(t, 1.2, *stored.DistanceKm)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.CreateOrderRequest)
		wantErr error
	}{
		{"out of zone", func(r *models.CreateOrderRequest) {
			r.CustomerLatitude, r.CustomerLongitude = f64(19.0596), f64(72.8295)
		}, models.ErrOutOfZone},
		{"unknown coupon", func(r *models.CreateOrderRequest) { r.CouponCode = "NOPE" }, models.ErrInvalidCoupon},
		{"unknown chef", func(r *models.CreateOrderRequest) { r.ChefID = 99 }, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			req := baseRequest()
			tt.mutate(&req)
			_, err := h.svc.PlaceOrder(context.Background(), "", req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, h.repo.orders)
		})
	}
}

func TestPlaceOrder_BelowMinimumOrder(t *testing.T) {
	h := newHarness()
	h.chefs[7].MinOrderAmount = 500
	_, err := h.svc.PlaceOrder(context.Background(), "", baseRequest())
	assert.ErrorIs(t, err, models.ErrBelowMinimumOrder)
}

func TestPlaceOrder_PhoneTakenDuringCommit(t *testing.T) {
	h := newHarness()
	h.accounts.createErr = models.ErrConflict

	_, err := h.svc.PlaceOrder(context.Background(), "", baseRequest())
	var rejection *models.OrderRejection
	require.ErrorAs(t, err, &rejection)
	assert.True(t, rejection.RequiresLogin)
	assert.Empty(t, h.publisher.events)
}

func TestPlaceOrder_PublishFailureKeepsOrder(t *testing.T) {
	h := newHarness()
	h.publisher.err = errors.New("broker down")

	res, err := h.svc.PlaceOrder(context.Background(), "", baseRequest())
	require.NoError(t, err)
	assert.Contains(t, h.repo.orders, res.ID)
}

func TestGetOrderDetails_Ownership(t *testing.T) {
	h := newHarness()
	res, err := h.svc.PlaceOrder(context.Background(), "u-1", baseRequest())
	require.NoError(t, err)

	_, err = h.svc.GetOrderDetails(context.Background(), res.ID, "someone-else", models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrNotFound)

	o, err := h.svc.GetOrderDetails(context.Background(), res.ID, "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, res.ID, o.ID)
}

func TestPaymentQR(t *testing.T) {
	h := newHarness()
	res, err := h.svc.PlaceOrder(context.Background(), "u-1", baseRequest())
	require.NoError(t, err)

	png, err := h.svc.PaymentQR(context.Background(), res.ID, "u-1", models.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	h.repo.orders[res.ID].PaymentStatus = models.PaymentStatusPaid
	_, err = h.svc.PaymentQR(context.Background(), res.ID, "u-1", models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrAlreadyPaid)
}

func TestPaymentQR_URI(t *testing.T) {
	uri := PaymentQR{VPA: "kitchen@upi", PayeeName: "Home Chef"}.URI(42, 230)
	assert.Equal(t, "upi://pay?am=230.00&cu=INR&pa=kitchen%40upi&pn=Home+Chef&tn=Order+42", uri)
}

// --- handler tests ---

func TestHandler_CreateOrder(t *testing.T) {
	h := newHarness()
	handler := NewHandler(h.svc)
	e := echo.New()

	post := func(body interface{}, userID string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(raw))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if userID != "" {
			c.Set(utils.UserIDKey, userID)
		}
		require.NoError(t, handler.CreateOrder(c))
		return rec
	}

	rec := post(baseRequest(), "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created models.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.AccountCreated)
	assert.NotEmpty(t, created.AccessToken)

	again := baseRequest()
	again.Phone = "9876543210"
	rec = post(again, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	var rejection map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rejection))
	assert.Equal(t, true, rejection["requiresLogin"])

	invalid := baseRequest()
	invalid.CustomerName = ""
	rec = post(invalid, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetPaymentQR(t *testing.T) {
	h := newHarness()
	res, err := h.svc.PlaceOrder(context.Background(), "u-1", baseRequest())
	require.NoError(t, err)

	handler := NewHandler(h.svc)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(res.ID, 10))
	c.Set(utils.UserIDKey, "u-1")
	c.Set(utils.UserRoleKey, models.RoleCustomer)

	require.NoError(t, handler.GetPaymentQR(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}
