package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/service/services/checkoutsvc"
)

type fakeCheckoutService struct {
	gotRequest checkoutsvc.CheckoutRequest
	result     checkoutsvc.CheckoutResult
	err        error
}

func (f *fakeCheckoutService) Checkout(
	_ context.Context,
	req checkoutsvc.CheckoutRequest,
) (checkoutsvc.CheckoutResult, error) {
	f.gotRequest = req
	return f.result, f.err
}

type fakeCartClearer struct {
	clearedFor string
}

func (f *fakeCartClearer) Clear(_ context.Context, userID string) error {
	f.clearedFor = userID
	return nil
}

const validBody = `{
	"paymentMethod": "cash-on-delivery",
	"name": "Asha Rao",
	"address": "12 MG Road, Bengaluru",
	"phone": "+919876543210",
	"pincode": "560001",
	"lines": [{"productId": 42, "quantity": 2, "unitPrice": 499.00}]
}`

func doCheckout(t *testing.T, svc *fakeCheckoutService, carts *fakeCartClearer, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()

	Checkout(rec, req, svc, carts)

	return rec
}

func TestCheckout_Created(t *testing.T) {
	svc := &fakeCheckoutService{
		result: checkoutsvc.CheckoutResult{
			OrderID:     "ord-1",
			AmountMinor: 99800,
			Status:      order.StatusCODConfirmed,
		},
	}
	carts := &fakeCartClearer{}

	rec := doCheckout(t, svc, carts, validBody, "user-1")

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ord-1", resp["orderId"])
	assert.Equal(t, float64(99800), resp["amountMinor"])
	assert.Equal(t, 998.00, resp["amount"])
	assert.Equal(t, "cod-confirmed", resp["status"])

	assert.Equal(t, "user-1", svc.gotRequest.UserID)
	assert.Equal(t, "user-1", carts.clearedFor)
}

func TestCheckout_MissingUser(t *testing.T) {
	rec := doCheckout(t, &fakeCheckoutService{}, &fakeCartClearer{}, validBody, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_MalformedBody(t *testing.T) {
	rec := doCheckout(t, &fakeCheckoutService{}, &fakeCartClearer{}, "{not json", "user-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_EmptyLines(t *testing.T) {
	body := `{
		"paymentMethod": "cash-on-delivery",
		"name": "Asha Rao",
		"address": "12 MG Road",
		"phone": "+919876543210",
		"lines": []
	}`

	rec := doCheckout(t, &fakeCheckoutService{}, &fakeCartClearer{}, body, "user-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_UnknownPaymentMethod(t *testing.T) {
	body := strings.Replace(validBody, "cash-on-delivery", "barter", 1)

	rec := doCheckout(t, &fakeCheckoutService{}, &fakeCartClearer{}, body, "user-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_AuthenticityFailureMapsTo402(t *testing.T) {
	svc := &fakeCheckoutService{
		err: fmt.Errorf("payment could not be verified: %w", errs.ErrAuthenticity),
	}
	carts := &fakeCartClearer{}

	rec := doCheckout(t, svc, carts, validBody, "user-1")

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	// A failed checkout keeps the cart.
	assert.Empty(t, carts.clearedFor)
}

func TestCheckout_WarningsPassedThrough(t *testing.T) {
	svc := &fakeCheckoutService{
		result: checkoutsvc.CheckoutResult{
			OrderID:     "ord-1",
			AmountMinor: 99800,
			Status:      order.StatusPaid,
			Warnings:    []string{"stock for product 42 needs attention"},
		},
	}

	rec := doCheckout(t, svc, &fakeCartClearer{}, validBody, "user-1")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "needs attention")
}
