package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otaviopl/jn-restaurant/internal/syncx"
)

type SyncHandler struct {
	Sync *syncx.Coordinator
	Log  *slog.Logger
}

func (h *SyncHandler) Register(r *chi.Mux) {
	r.Post("/api/revalidate", h.revalidate)
}

// revalidate força o espelhamento completo: derruba o cache dos fetches e
// sobrescreve catálogo, estoque e pedidos com o que a planilha tem agora.
func (h *SyncHandler) revalidate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.Sync.Revalidate(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"synced":    true,
		"timestamp": time.Now().UTC(),
	})
}
