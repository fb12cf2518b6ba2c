package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/otaviopl/jn-restaurant/internal/inventory"
	"github.com/otaviopl/jn-restaurant/internal/orders"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia os erros tipados dos serviços para o status HTTP.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrItemNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orders.ErrEmptyCustomer),
		errors.Is(err, orders.ErrNoItems),
		errors.Is(err, orders.ErrInvalidItem),
		errors.Is(err, orders.ErrLastItem),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrUnknownFlavor):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
