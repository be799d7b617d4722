package clearcart

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/1241007/shop-spark-45/internal/transport/http/httperr"
)

type service interface {
	Clear(ctx context.Context, userID string) error
}

func ClearCart(w http.ResponseWriter, r *http.Request, service service) {
	userID, ok := httperr.UserID(w, r)
	if !ok {
		return
	}

	if err := service.Clear(r.Context(), userID); err != nil {
		httperr.Respond(w, err)
		slog.Error("Error clearing cart", "error", err, "user_id", userID)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
