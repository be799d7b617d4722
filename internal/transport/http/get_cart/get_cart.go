package getcart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/1241007/shop-spark-45/internal/service/models/cartitem"
	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	List(ctx context.Context, userID string) ([]cartitem.CartItem, error)
}

func GetCart(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	items, err := service.List(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		slog.Error("Error listing cart", "error", err, "user_id", userID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
