package cancelorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	Cancel(ctx context.Context, userID, orderID string) error
}

type cancelOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderID")

	if err := service.Cancel(r.Context(), userID, orderID); err != nil {
		httperr.Respond(w, err)
		slog.Error("Error cancelling order", "error", err, "order_id", orderID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cancelOrderResponse{
		OrderID: orderID,
		Status:  "cancelled",
	}); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
