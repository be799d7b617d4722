package setcartitem

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	SetQuantity(ctx context.Context, userID string, productID int64, quantity int) error
}

// setCartItemRequest represents a cart line write. A quantity of zero or
// below removes the line.
type setCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"`
}

// Validate validates the set cart item request.
func (r *setCartItemRequest) Validate() error {
	return validator.New().Struct(r)
}

func SetCartItem(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	req := setCartItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for set cart item", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for set cart item", "error", err)

		return
	}

	if err := service.SetQuantity(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		httperr.Respond(w, err)
		slog.Error("Error setting cart item", "error", err, "user_id", userID)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
