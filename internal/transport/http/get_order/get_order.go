package getorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	GetByID(ctx context.Context, userID, orderID string) (order.Order, error)
}

func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderID")

	o, err := service.GetByID(r.Context(), userID, orderID)
	if err != nil {
		httperr.Respond(w, err)
		slog.Error("Error getting order", "error", err, "order_id", orderID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(o); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
