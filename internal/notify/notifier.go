package notify

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/otaviopl/jn-restaurant/internal/kafka"
	"github.com/otaviopl/jn-restaurant/internal/store"
)

type Notifier struct {
	Webhook  *Webhook         // nil desliga o sink HTTP
	Producer *kafkax.Producer // nil desliga o sink Kafka
	Log      *slog.Logger
}

func New(webhook *Webhook, producer *kafkax.Producer, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{Webhook: webhook, Producer: producer, Log: log}
}

// orderData enriquece o pedido com os totais que o painel consome.
func orderData(o store.Order) map[string]any {
	return map[string]any{
		"order": map[string]any{
			"id":             o.ID,
			"customerName":   o.CustomerName,
			"items":          o.Items,
			"status":         o.Status,
			"createdAt":      o.CreatedAt,
			"source":         o.Source,
			"totalItems":     o.TotalItems(),
			"deliveredItems": o.DeliveredItems(),
		},
	}
}

// OrderEvent dispara os sinks em background; falha é logada e esquecida.
func (n *Notifier) OrderEvent(event string, o store.Order) {
	n.dispatch(newPayload(event, orderData(o)), o.ID)
}

// InventoryEvent publica os saldos alterados (inventory.updated).
func (n *Notifier) InventoryEvent(updates map[string]int) {
	flavors := make([]string, 0, len(updates))
	total := 0
	for f, q := range updates {
		flavors = append(flavors, f)
		total += q
	}
	n.dispatch(newPayload(EventInventoryUpdated, map[string]any{
		"inventory":      updates,
		"updatedFlavors": flavors,
		"totalStock":     total,
	}), "inventory")
}

func (n *Notifier) dispatch(p Payload, key string) {
	if n.Webhook != nil {
		go func() {
			if err := n.Webhook.Send(context.Background(), p); err != nil {
				n.Log.Warn("webhook falhou", "event", p.Event, "err", err)
			}
		}()
	}
	if n.Producer != nil {
		n.Producer.Publish([]byte(key), kafkax.MustMarshal(p),
			kafkago.Header{Key: "x-event-type", Value: []byte(p.Event)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}

// TestPayload monta o evento do endpoint de teste do webhook.
func TestPayload(event string, data any) Payload {
	p := newPayload(event, data)
	p.Metadata.IsTest = true
	return p
}
