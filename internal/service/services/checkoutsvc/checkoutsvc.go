package checkoutsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/currency"
	"github.com/1241007/shop-spark-45/internal/service/models/inventory"
	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/service/models/orderline"
	"github.com/1241007/shop-spark-45/internal/service/models/payment"
	"github.com/1241007/shop-spark-45/internal/service/models/shipping"
)

// orderLedger is the slice of the order service the orchestrator needs.
type orderLedger interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
	CreateFailed(ctx context.Context, o order.Order) (order.Order, error)
}

// inventoryLedger is the slice of the inventory service the orchestrator
// needs: the catalog read for re-pricing, and the decrement.
type inventoryLedger interface {
	Get(ctx context.Context, productID int64) (*inventory.Record, error)
	Decrement(ctx context.Context, productID int64, quantity int64) (int64, error)
	WarnStockFailure(ctx context.Context, orderID, userID string, productID int64, cause error)
}

// signatureVerifier authenticates a gateway callback.
type signatureVerifier interface {
	Verify(orderRef, paymentRef, signature string) bool
}

// LineInput is one cart line handed to checkout. ObservedUnitPrice is the
// display price the client saw; it is cross-checked against the server
// price, never trusted for the total.
type LineInput struct {
	ProductID         int64
	Quantity          int
	ObservedUnitPrice float64
}

// CheckoutRequest is the full input of one checkout attempt.
type CheckoutRequest struct {
	UserID        string
	PaymentMethod payment.Method
	Shipping      shipping.Details
	Lines         []LineInput
	Callback      *payment.GatewayCallback
}

// CheckoutResult is the consolidated outcome. Warnings carry post-creation
// stock problems that did not fail the checkout.
type CheckoutResult struct {
	OrderID     string
	AmountMinor int64
	Status      order.Status
	Warnings    []string
}

// CheckoutService ties cart lines, payment verification, order creation and
// inventory decrement into one synchronous operation.
type CheckoutService struct {
	orders              orderLedger
	inventory           inventoryLedger
	verifier            signatureVerifier
	maxConcurrent       int
	priceToleranceMinor int64
	createTimeout       time.Duration
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService. Concurrency,
// pricing tolerance and the creation timeout default from config.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxConcurrent == 0 {
		s.maxConcurrent = viper.GetInt("checkout.max_concurrent")
		if s.maxConcurrent == 0 {
			s.maxConcurrent = 10
		}
	}
	if s.priceToleranceMinor == 0 {
		s.priceToleranceMinor = viper.GetInt64("checkout.price_tolerance_minor")
	}
	if s.createTimeout == 0 {
		ms := viper.GetInt("checkout.create_timeout_ms")
		if ms == 0 {
			ms = 5000
		}
		s.createTimeout = time.Duration(ms) * time.Millisecond
	}

	return s
}

// WithOrderLedger sets the order service.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderLedger(orders orderLedger) option {
	return func(s *CheckoutService) {
		s.orders = orders
	}
}

// WithInventoryLedger sets the inventory service.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithInventoryLedger(inv inventoryLedger) option {
	return func(s *CheckoutService) {
		s.inventory = inv
	}
}

// WithVerifier sets the payment signature verifier.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithVerifier(v signatureVerifier) option {
	return func(s *CheckoutService) {
		s.verifier = v
	}
}

// WithCreateTimeout bounds payment verification plus order creation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCreateTimeout(d time.Duration) option {
	return func(s *CheckoutService) {
		s.createTimeout = d
	}
}

// WithPriceTolerance sets the allowed disagreement, in minor units, between
// the client-observed total and the server-computed total.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPriceTolerance(minor int64) option {
	return func(s *CheckoutService) {
		s.priceToleranceMinor = minor
	}
}

// Checkout runs the full pipeline: validate, re-price, verify payment,
// create the order, decrement stock. Order creation is durable before any
// stock is touched; decrement failures become warnings, never checkout
// failures, because by then the payment may already have been captured.
func (s *CheckoutService) Checkout(
	ctx context.Context,
	req CheckoutRequest,
) (CheckoutResult, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "CheckoutService.Checkout")
	defer span.End()

	if err := s.validate(&req); err != nil {
		return CheckoutResult{}, err
	}

	lines, amountMinor, err := s.repriceLines(ctx, req)
	if err != nil {
		return CheckoutResult{}, err
	}

	o := order.Order{
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.Shipping,
		AmountMinor:   amountMinor,
		DisplayAmount: float64(amountMinor) / 100,
		Currency:      currency.CurrencyINR,
		Lines:         lines,
	}

	createCtx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	switch req.PaymentMethod {
	case payment.MethodOnline:
		o.ExternalPaymentID = req.Callback.GatewayPaymentID
		if !s.verifier.Verify(
			req.Callback.GatewayOrderID,
			req.Callback.GatewayPaymentID,
			req.Callback.Signature,
		) {
			return CheckoutResult{}, s.rejectForgery(createCtx, o, req)
		}
		o.Status = order.StatusPaid
	case payment.MethodCOD:
		o.Status = order.StatusCODConfirmed
	}

	created, err := s.orders.Create(createCtx, o)
	if err != nil {
		if errors.Is(createCtx.Err(), context.DeadlineExceeded) {
			return CheckoutResult{}, fmt.Errorf(
				"order creation timed out, retry the checkout: %w", errs.ErrDependency)
		}

		return CheckoutResult{}, err
	}

	warnings := s.decrementStock(ctx, created)

	return CheckoutResult{
		OrderID:     created.ID,
		AmountMinor: created.AmountMinor,
		Status:      created.Status,
		Warnings:    warnings,
	}, nil
}

func (s *CheckoutService) validate(req *CheckoutRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("user is required: %w", errs.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("there are no items to check out: %w", errs.ErrValidation)
	}
	for i, line := range req.Lines {
		if line.Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1: %w", i, errs.ErrValidation)
		}
	}
	if err := req.Shipping.Validate(); err != nil {
		return fmt.Errorf("shipping details: %v: %w", err, errs.ErrValidation)
	}
	if _, err := payment.ParseMethod(req.PaymentMethod.String()); err != nil {
		return fmt.Errorf("payment method %q: %w", req.PaymentMethod, errs.ErrValidation)
	}
	if req.PaymentMethod == payment.MethodOnline && req.Callback == nil {
		return fmt.Errorf("online payment requires a gateway callback: %w", errs.ErrValidation)
	}

	return nil
}

// repriceLines snapshots name, image and unit price from the server-side
// catalog for every line, concurrently, and computes the total from server
// prices. Client-observed prices only gate: a disagreement beyond the
// tolerance rejects the checkout.
func (s *CheckoutService) repriceLines(
	ctx context.Context,
	req CheckoutRequest,
) ([]orderline.OrderLine, int64, error) {
	lines := make([]orderline.OrderLine, len(req.Lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range req.Lines {
		g.Go(func() error {
			input := req.Lines[idx]

			record, err := s.inventory.Get(gctx, input.ProductID)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("product %d is not available: %w",
					input.ProductID, errs.ErrValidation)
			}

			lines[idx] = orderline.OrderLine{
				ProductID:      record.ProductID,
				ProductName:    record.ProductName,
				UnitPriceMinor: record.UnitPriceMinor,
				ImageURL:       record.ImageURL,
				Quantity:       input.Quantity,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var serverTotal, clientTotal int64
	for i, line := range lines {
		serverTotal += line.UnitPriceMinor * int64(line.Quantity)
		clientTotal += order.MinorFromDisplay(req.Lines[i].ObservedUnitPrice) * int64(line.Quantity)
	}

	if serverTotal <= 0 {
		return nil, 0, fmt.Errorf("order amount must be positive: %w", errs.ErrValidation)
	}

	if clientTotal > 0 {
		diff := serverTotal - clientTotal
		if diff < 0 {
			diff = -diff
		}
		if diff > s.priceToleranceMinor {
			return nil, 0, fmt.Errorf(
				"prices have changed, refresh the cart (client %d, server %d): %w",
				clientTotal, serverTotal, errs.ErrValidation)
		}
	}

	return lines, serverTotal, nil
}

// rejectForgery persists the failed order for audit and surfaces the
// authenticity error. The order is never dropped silently.
func (s *CheckoutService) rejectForgery(
	ctx context.Context,
	o order.Order,
	req CheckoutRequest,
) error {
	slog.Warn("Payment signature mismatch, possible forgery attempt",
		"user_id", req.UserID,
		"gateway_order_id", req.Callback.GatewayOrderID,
		"gateway_payment_id", req.Callback.GatewayPaymentID,
	)

	if _, err := s.orders.CreateFailed(ctx, o); err != nil {
		slog.Error("Failed to persist rejected order for audit", "error", err)
	}

	return fmt.Errorf("payment could not be verified: %w", errs.ErrAuthenticity)
}

// decrementStock applies per-line decrements concurrently after the order
// is durable. Lines hit distinct product rows, so there is no ordering
// requirement between them.
func (s *CheckoutService) decrementStock(ctx context.Context, o order.Order) []string {
	var (
		mu       sync.Mutex
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, line := range o.Lines {
		g.Go(func() error {
			if _, err := s.inventory.Decrement(gctx, line.ProductID, int64(line.Quantity)); err != nil {
				s.inventory.WarnStockFailure(gctx, o.ID, o.UserID, line.ProductID, err)

				mu.Lock()
				warnings = append(warnings, fmt.Sprintf(
					"stock for product %d needs attention", line.ProductID))
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	return warnings
}
