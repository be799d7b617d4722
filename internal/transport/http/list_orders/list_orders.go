package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error)
}

type listOrdersRequest struct {
	Limit  int `schema:"limit,omitempty"`
	Offset int `schema:"offset,omitempty"`
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	decoder := schema.NewDecoder()
	query := &listOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.ListByUser(r.Context(), userID, query.Limit, query.Offset)
	if err != nil {
		httperr.Respond(w, err)
		slog.Error("Error listing orders", "error", err, "user_id", userID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
