package wire

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"resort-booking/internal/usecase"
	"resort-booking/pkg/middleware"
	"resort-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestRouter_AdminRoutesAreGuarded(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("staff"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	config := &utils.Config{Admin: utils.AdminConfig{TokenHash: string(hash)}}
	app := Wiring(&usecase.Service{}, config, zap.NewNop())

	guarded := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/availability"},
		{http.MethodGet, "/api/admin/occupancy"},
		{http.MethodGet, "/api/admin/blocks"},
		{http.MethodPost, "/api/admin/blocks"},
		{http.MethodDelete, "/api/admin/blocks/b1"},
		{http.MethodGet, "/api/admin/reservations/r1"},
		{http.MethodPut, "/api/admin/reservations/r1/confirm"},
		{http.MethodPut, "/api/admin/reservations/r1/no-show"},
		{http.MethodPost, "/api/admin/payments/chrg_1/reconcile"},
	}

	for _, route := range guarded {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set(middleware.AdminTokenHeader, "not-staff")
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_Health(t *testing.T) {
	app := Wiring(&usecase.Service{}, &utils.Config{}, zap.NewNop())

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
