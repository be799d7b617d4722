package mergecart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/1241007/shop-spark-45/internal/service/models/cartitem"
	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	Merge(ctx context.Context, userID string, items []cartitem.CartItem) error
	List(ctx context.Context, userID string) ([]cartitem.CartItem, error)
}

// itemInMergeCartRequest represents one locally held cart line.
type itemInMergeCartRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"`
}

// mergeCartRequest carries a device-local cart to fold into the stored one.
type mergeCartRequest struct {
	Items []itemInMergeCartRequest `json:"items" validate:"dive"`
}

// Validate validates the merge cart request.
func (r *mergeCartRequest) Validate() error {
	return validator.New().Struct(r)
}

func MergeCart(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	req := mergeCartRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for merge cart", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for merge cart", "error", err)

		return
	}

	items := make([]cartitem.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = cartitem.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	if err := service.Merge(r.Context(), userID, items); err != nil {
		httperr.Respond(w, err)
		slog.Error("Error merging cart", "error", err, "user_id", userID)

		return
	}

	merged, err := service.List(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		slog.Error("Error listing cart after merge", "error", err, "user_id", userID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(merged); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
