package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otaviopl/jn-restaurant/internal/inventory"
	"github.com/otaviopl/jn-restaurant/internal/notify"
	"github.com/otaviopl/jn-restaurant/internal/store"
	"github.com/otaviopl/jn-restaurant/internal/syncx"
)

type InventoryHandler struct {
	Ledger   *inventory.Ledger
	Sync     *syncx.Coordinator
	Notifier *notify.Notifier
	Store    *store.Store
	Log      *slog.Logger
}

type inventoryPatchReq struct {
	Updates map[string]int `json:"updates"`
}

func (h *InventoryHandler) Register(r *chi.Mux) {
	r.Get("/api/inventory", h.snapshot)
	r.Patch("/api/inventory", h.patch)
	r.Get("/api/inventory/realtime", h.realtime)
	r.Get("/api/products", h.products)
}

func (h *InventoryHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Ledger.GetAll())
}

// realtime puxa o saldo fresco da planilha antes de responder.
func (h *InventoryHandler) realtime(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	fresh, err := h.Sync.PullInventory(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	source := "local"
	if fresh {
		source = "external"
	}
	w.Header().Set("X-Data-Source", source)
	writeJSON(w, http.StatusOK, h.Ledger.GetAll())
}

// patch grava saldos absolutos por sabor e propaga: evento inventory.updated
// e push do estoque inteiro para a planilha.
func (h *InventoryHandler) patch(w http.ResponseWriter, r *http.Request) {
	var req inventoryPatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if len(req.Updates) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nenhuma atualização informada"})
		return
	}

	if err := h.Ledger.SetAll(r.Context(), req.Updates); err != nil {
		writeError(w, err)
		return
	}

	if h.Notifier != nil {
		h.Notifier.InventoryEvent(req.Updates)
	}
	if h.Sync != nil {
		h.Sync.PushInventory(h.Ledger.GetAll())
	}
	writeJSON(w, http.StatusOK, h.Ledger.GetAll())
}

func (h *InventoryHandler) products(w http.ResponseWriter, r *http.Request) {
	var products store.Products
	h.Store.View(func(doc *store.Document) {
		products = store.Products{
			Flavors:   append([]string(nil), doc.Products.Flavors...),
			Beverages: append([]string(nil), doc.Products.Beverages...),
		}
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"skewerFlavors": products.Flavors,
		"beverages":     products.Beverages,
		"lastSync":      h.Store.LastSync(),
	})
}
