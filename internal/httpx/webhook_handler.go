package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otaviopl/jn-restaurant/internal/notify"
)

type WebhookHandler struct {
	Webhook *notify.Webhook // nil = webhook desligado
	Log     *slog.Logger
}

type webhookTestReq struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Get("/api/webhook/test", h.status)
	r.Post("/api/webhook/test", h.send)
}

// status informa se há webhook configurado, sem vazar URL ou segredo.
func (h *WebhookHandler) status(w http.ResponseWriter, r *http.Request) {
	configured := h.Webhook != nil
	resp := map[string]any{"configured": configured}
	if configured {
		resp["timeout"] = h.Webhook.Timeout.String()
		resp["signed"] = h.Webhook.Secret != ""
	}
	writeJSON(w, http.StatusOK, resp)
}

// send dispara um evento de teste de forma síncrona para o operador ver o
// resultado na hora.
func (h *WebhookHandler) send(w http.ResponseWriter, r *http.Request) {
	if h.Webhook == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "webhook não configurado"})
		return
	}

	req := webhookTestReq{Event: "webhook.test"}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Event == "" {
		req.Event = "webhook.test"
	}

	p := notify.TestPayload(req.Event, req.Data)
	if err := h.Webhook.Send(r.Context(), p); err != nil {
		h.Log.Warn("webhook de teste falhou", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"delivered": true, "event": req.Event})
}
