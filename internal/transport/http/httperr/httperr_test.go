package httperr

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1241007/shop-spark-45/internal/service/errs"
)

func TestRespond_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("bad pincode: %w", errs.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("signature mismatch: %w", errs.ErrAuthenticity), http.StatusPaymentRequired},
		{fmt.Errorf("order gone: %w", errs.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("already delivered: %w", errs.ErrConflict), http.StatusConflict},
		{fmt.Errorf("broker down: %w", errs.ErrDependency), http.StatusServiceUnavailable},
		{fmt.Errorf("something else entirely"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			Respond(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set(UserIDHeader, "user-1")

	userID, ok := UserID(httptest.NewRecorder(), req)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
}

func TestUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	_, ok := UserID(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
