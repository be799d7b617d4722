package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/payment"
	"github.com/1241007/shop-spark-45/internal/service/models/shipping"
	"github.com/1241007/shop-spark-45/internal/service/services/checkoutsvc"
	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Checkout(ctx context.Context, req checkoutsvc.CheckoutRequest) (checkoutsvc.CheckoutResult, error)
}

// cartClearer drops the user's cart after a successful checkout.
type cartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// lineInCheckoutRequest represents one cart line in a checkout request.
type lineInCheckoutRequest struct {
	ProductID int64   `json:"productId" validate:"gt=0"`
	Quantity  int     `json:"quantity"  validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
}

// callbackInCheckoutRequest carries the gateway payment callback fields.
type callbackInCheckoutRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"   validate:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" validate:"required"`
	Signature        string `json:"signature"        validate:"required"`
}

// checkoutRequest represents a checkout request.
type checkoutRequest struct {
	PaymentMethod string                     `json:"paymentMethod" validate:"required"`
	Name          string                     `json:"name"          validate:"required"`
	Address       string                     `json:"address"       validate:"required"`
	Phone         string                     `json:"phone"         validate:"required"`
	Pincode       string                     `json:"pincode"       validate:"omitempty,len=6,numeric"`
	Lines         []lineInCheckoutRequest    `json:"lines"         validate:"required,min=1,dive"`
	Callback      *callbackInCheckoutRequest `json:"callback"`
}

// Validate validates the checkout request.
func (r *checkoutRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts checkoutRequest to checkoutsvc.CheckoutRequest.
func (r *checkoutRequest) toModel(userID string) (checkoutsvc.CheckoutRequest, error) {
	method, err := payment.ParseMethod(r.PaymentMethod)
	if err != nil {
		return checkoutsvc.CheckoutRequest{}, fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}

	lines := make([]checkoutsvc.LineInput, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = checkoutsvc.LineInput{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			ObservedUnitPrice: line.UnitPrice,
		}
	}

	req := checkoutsvc.CheckoutRequest{
		UserID:        userID,
		PaymentMethod: method,
		Shipping: shipping.Details{
			Name:    r.Name,
			Address: r.Address,
			Phone:   r.Phone,
			Pincode: r.Pincode,
		},
		Lines: lines,
	}
	if r.Callback != nil {
		req.Callback = &payment.GatewayCallback{
			GatewayOrderID:   r.Callback.GatewayOrderID,
			GatewayPaymentID: r.Callback.GatewayPaymentID,
			Signature:        r.Callback.Signature,
		}
	}

	return req, nil
}

// checkoutResponse represents a checkout response.
type checkoutResponse struct {
	OrderID     string   `json:"orderId"`
	AmountMinor int64    `json:"amountMinor"`
	Amount      float64  `json:"amount"`
	Status      string   `json:"status"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Checkout handles the checkout request.
func Checkout(w http.ResponseWriter, r *http.Request, service service, carts cartClearer) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	req := checkoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for checkout", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for checkout", "error", err)

		return
	}

	model, err := req.toModel(userID)
	if err != nil {
		httperr.Respond(w, err)
		slog.Error("Error converting checkout request to model", "error", err)

		return
	}

	result, err := service.Checkout(r.Context(), model)
	if err != nil {
		httperr.Respond(w, err)
		slog.Error("Error performing checkout", "error", err, "user_id", userID)

		return
	}

	if err := carts.Clear(r.Context(), userID); err != nil {
		slog.Error("Error clearing cart after checkout",
			"error", err, "user_id", userID, "order_id", result.OrderID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(checkoutResponse{
		OrderID:     result.OrderID,
		AmountMinor: result.AmountMinor,
		Amount:      float64(result.AmountMinor) / 100,
		Status:      result.Status.String(),
		Warnings:    result.Warnings,
	}); err != nil {
		slog.Error("Error sending response for checkout", "error", err)
	}
}
