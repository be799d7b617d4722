package checkoutsvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1241007/shop-spark-45/internal/payment"
	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/inventory"
	"github.com/1241007/shop-spark-45/internal/service/models/order"
	paymentmodel "github.com/1241007/shop-spark-45/internal/service/models/payment"
	"github.com/1241007/shop-spark-45/internal/service/models/shipping"
)

type fakeOrderLedger struct {
	mu      sync.Mutex
	created []order.Order
	failed  []order.Order
}

func (f *fakeOrderLedger) Create(_ context.Context, o order.Order) (order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = "ord-1"
	f.created = append(f.created, o)
	return o, nil
}

func (f *fakeOrderLedger) CreateFailed(_ context.Context, o order.Order) (order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = "ord-failed-1"
	o.Status = order.StatusFailed
	f.failed = append(f.failed, o)
	return o, nil
}

type fakeInventoryLedger struct {
	mu         sync.Mutex
	records    map[int64]inventory.Record
	failingIDs map[int64]error
	decrements map[int64]int64
	warned     []int64
}

func newFakeInventory(records ...inventory.Record) *fakeInventoryLedger {
	f := &fakeInventoryLedger{
		records:    make(map[int64]inventory.Record),
		failingIDs: make(map[int64]error),
		decrements: make(map[int64]int64),
	}
	for _, r := range records {
		f.records[r.ProductID] = r
	}
	return f
}

func (f *fakeInventoryLedger) Get(_ context.Context, productID int64) (*inventory.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeInventoryLedger) Decrement(
	_ context.Context,
	productID int64,
	quantity int64,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failingIDs[productID]; ok {
		return 0, err
	}
	f.decrements[productID] += quantity
	return f.records[productID].Available - f.decrements[productID], nil
}

func (f *fakeInventoryLedger) WarnStockFailure(
	_ context.Context,
	_, _ string,
	productID int64,
	_ error,
) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warned = append(f.warned, productID)
}

var testShipping = shipping.Details{
	Name:    "Asha Rao",
	Address: "12 MG Road, Bengaluru",
	Phone:   "+919876543210",
	Pincode: "560001",
}

func kettleInventory() *fakeInventoryLedger {
	return newFakeInventory(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 10,
	})
}

func newTestService(
	orders *fakeOrderLedger,
	inv *fakeInventoryLedger,
	verifier *payment.Verifier,
) *CheckoutService {
	return MustNewCheckoutService(
		WithOrderLedger(orders),
		WithInventoryLedger(inv),
		WithVerifier(verifier),
		WithCreateTimeout(time.Second),
	)
}

func codRequest() CheckoutRequest {
	return CheckoutRequest{
		UserID:        "user-1",
		PaymentMethod: paymentmodel.MethodCOD,
		Shipping:      testShipping,
		Lines: []LineInput{
			{ProductID: 42, Quantity: 2, ObservedUnitPrice: 499.00},
		},
	}
}

func TestCheckout_CODHappyPath(t *testing.T) {
	orders := &fakeOrderLedger{}
	inv := kettleInventory()
	svc := newTestService(orders, inv, payment.NewVerifier("secret"))

	result, err := svc.Checkout(context.Background(), codRequest())
	require.NoError(t, err)

	assert.Equal(t, "ord-1", result.OrderID)
	assert.Equal(t, int64(99800), result.AmountMinor)
	assert.Equal(t, order.StatusCODConfirmed, result.Status)
	assert.Empty(t, result.Warnings)

	require.Len(t, orders.created, 1)
	created := orders.created[0]
	assert.Equal(t, 998.00, created.DisplayAmount)
	require.Len(t, created.Lines, 1)
	assert.Equal(t, "Kettle", created.Lines[0].ProductName)
	assert.Equal(t, int64(49900), created.Lines[0].UnitPriceMinor)
	assert.Equal(t, 2, created.Lines[0].Quantity)

	// Stock moved only after creation.
	assert.Equal(t, int64(2), inv.decrements[42])
}

func TestCheckout_OnlineHappyPath(t *testing.T) {
	orders := &fakeOrderLedger{}
	verifier := payment.NewVerifier("secret")
	svc := newTestService(orders, kettleInventory(), verifier)

	req := codRequest()
	req.PaymentMethod = paymentmodel.MethodOnline
	req.Callback = &paymentmodel.GatewayCallback{
		GatewayOrderID:   "order_gw1",
		GatewayPaymentID: "pay_gw1",
		Signature:        verifier.Sign("order_gw1", "pay_gw1"),
	}

	result, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, order.StatusPaid, result.Status)
	require.Len(t, orders.created, 1)
	assert.Equal(t, "pay_gw1", orders.created[0].ExternalPaymentID)
	assert.Empty(t, orders.failed)
}

func TestCheckout_ForgedSignature(t *testing.T) {
	orders := &fakeOrderLedger{}
	inv := kettleInventory()
	svc := newTestService(orders, inv, payment.NewVerifier("secret"))

	req := codRequest()
	req.PaymentMethod = paymentmodel.MethodOnline
	req.Callback = &paymentmodel.GatewayCallback{
		GatewayOrderID:   "order_gw1",
		GatewayPaymentID: "pay_gw1",
		Signature:        payment.NewVerifier("attacker").Sign("order_gw1", "pay_gw1"),
	}

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrAuthenticity)

	// The attempt is persisted as failed for audit, nothing is created,
	// no stock moves.
	require.Len(t, orders.failed, 1)
	assert.Equal(t, order.StatusFailed, orders.failed[0].Status)
	assert.Empty(t, orders.created)
	assert.Empty(t, inv.decrements)
}

func TestCheckout_OnlineWithoutCallback(t *testing.T) {
	orders := &fakeOrderLedger{}
	svc := newTestService(orders, kettleInventory(), payment.NewVerifier("secret"))

	req := codRequest()
	req.PaymentMethod = paymentmodel.MethodOnline
	req.Callback = nil

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, orders.created)
	assert.Empty(t, orders.failed)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newTestService(&fakeOrderLedger{}, kettleInventory(), payment.NewVerifier("secret"))

	req := codRequest()
	req.Lines = nil

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCheckout_ZeroQuantity(t *testing.T) {
	svc := newTestService(&fakeOrderLedger{}, kettleInventory(), payment.NewVerifier("secret"))

	req := codRequest()
	req.Lines[0].Quantity = 0

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCheckout_MissingShippingPhone(t *testing.T) {
	svc := newTestService(&fakeOrderLedger{}, kettleInventory(), payment.NewVerifier("secret"))

	req := codRequest()
	req.Shipping.Phone = ""

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCheckout_UnknownProduct(t *testing.T) {
	svc := newTestService(&fakeOrderLedger{}, kettleInventory(), payment.NewVerifier("secret"))

	req := codRequest()
	req.Lines = append(req.Lines, LineInput{ProductID: 999, Quantity: 1, ObservedUnitPrice: 1.00})

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCheckout_PriceTamperRejected(t *testing.T) {
	orders := &fakeOrderLedger{}
	svc := newTestService(orders, kettleInventory(), payment.NewVerifier("secret"))

	// Client claims the kettle costs one rupee.
	req := codRequest()
	req.Lines[0].ObservedUnitPrice = 1.00

	_, err := svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, orders.created)
}

func TestCheckout_ServerPriceWinsWithinTolerance(t *testing.T) {
	orders := &fakeOrderLedger{}
	svc := MustNewCheckoutService(
		WithOrderLedger(orders),
		WithInventoryLedger(kettleInventory()),
		WithVerifier(payment.NewVerifier("secret")),
		WithCreateTimeout(time.Second),
		WithPriceTolerance(500),
	)

	// Client saw a slightly stale price; the order still carries the
	// server amount.
	req := codRequest()
	req.Lines[0].ObservedUnitPrice = 497.00

	result, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(99800), result.AmountMinor)
}

func TestCheckout_StockFailureIsWarningNotError(t *testing.T) {
	orders := &fakeOrderLedger{}
	inv := newFakeInventory(
		inventory.Record{ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 10},
		inventory.Record{ProductID: 7, ProductName: "Mug", UnitPriceMinor: 9900, Available: 10},
	)
	inv.failingIDs[7] = errors.New("conditional update kept losing")

	svc := newTestService(orders, inv, payment.NewVerifier("secret"))

	req := codRequest()
	req.Lines = append(req.Lines, LineInput{ProductID: 7, Quantity: 1, ObservedUnitPrice: 99.00})

	result, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	// The order stands, the shortfall is reported and flagged for
	// reconciliation.
	assert.Equal(t, "ord-1", result.OrderID)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "7")
	assert.Equal(t, []int64{7}, inv.warned)
	assert.Equal(t, int64(2), inv.decrements[42])
}

func TestCheckout_MultiLineTotals(t *testing.T) {
	orders := &fakeOrderLedger{}
	inv := newFakeInventory(
		inventory.Record{ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 10},
		inventory.Record{ProductID: 7, ProductName: "Mug", UnitPriceMinor: 9900, Available: 10},
	)
	svc := newTestService(orders, inv, payment.NewVerifier("secret"))

	req := codRequest()
	req.Lines = append(req.Lines, LineInput{ProductID: 7, Quantity: 3, ObservedUnitPrice: 99.00})

	result, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	// 2 x 49900 + 3 x 9900
	assert.Equal(t, int64(129500), result.AmountMinor)
	assert.Equal(t, int64(2), inv.decrements[42])
	assert.Equal(t, int64(3), inv.decrements[7])
}
