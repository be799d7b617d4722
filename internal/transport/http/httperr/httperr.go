package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/1241007/shop-spark-45/internal/service/errs"
)

// UserIDHeader carries the authenticated principal, set by the edge proxy.
const UserIDHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
}

// Respond maps a service error onto an HTTP status and writes a JSON body.
func Respond(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrAuthenticity):
		status = http.StatusPaymentRequired
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrDependency):
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorResponse{Error: err.Error()}); encErr != nil {
		slog.Error("Error writing error response", "error", encErr)
	}
}

// UserID extracts the principal from the request. An empty value means the
// request never passed the edge and is unauthorized.
func UserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(UserIDHeader)
	if userID == "" {
		http.Error(w, "missing "+UserIDHeader+" header", http.StatusUnauthorized)

		return "", false
	}

	return userID, true
}
