package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otaviopl/jn-restaurant/internal/orders"
	"github.com/otaviopl/jn-restaurant/internal/syncx"
)

type CreateOrderReq struct {
	CustomerName string             `json:"customerName"`
	Items        []orders.ItemInput `json:"items"`
}

type OrdersHandler struct {
	Service *orders.Service
	Sync    *syncx.Coordinator
	Log     *slog.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/all", h.listSynced)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Patch("/", h.patchStatus)
			r.Delete("/", h.delete)
			r.Patch("/items/{itemId}", h.updateItem)
			r.Delete("/items/{itemId}", h.deleteItem)
		})
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.List(r.Context()))
}

// listSynced puxa a planilha antes de listar. X-Data-Source diz de onde veio
// a resposta: external (pull ok) ou local (planilha indisponível).
func (h *OrdersHandler) listSynced(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	fresh, err := h.Sync.PullOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	source := "local"
	if fresh {
		source = "external"
	}
	w.Header().Set("X-Data-Source", source)
	writeJSON(w, http.StatusOK, h.Service.List(ctx))
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	o, err := h.Service.Create(r.Context(), req.CustomerName, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var in orders.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	o, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// patchStatus só aceita troca de situação (arrasto no kanban).
func (h *OrdersHandler) patchStatus(w http.ResponseWriter, r *http.Request) {
	var in orders.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if in.Status == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "situação é obrigatória"})
		return
	}

	o, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), orders.UpdateInput{Status: in.Status})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var in orders.ItemUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	o, err := h.Service.UpdateItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.DeleteItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
