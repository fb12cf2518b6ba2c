// Package notify publica eventos estruturados após mutações locais
// bem-sucedidas, independente do push para a planilha. Sinks: webhook HTTP
// (assinado) e, opcionalmente, um tópico Kafka com o mesmo payload.
package notify

import "time"

const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderDeleted     = "order.deleted"
	EventInventoryUpdated = "inventory.updated"
)

type Metadata struct {
	Source  string `json:"source"`
	Version string `json:"version"`
	IsTest  bool   `json:"isTest,omitempty"`
}

type Payload struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Metadata  Metadata  `json:"metadata"`
}

const (
	payloadSource  = "jn-restaurant-backoffice"
	payloadVersion = "1.0.0"
)

func newPayload(event string, data any) Payload {
	return Payload{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Metadata:  Metadata{Source: payloadSource, Version: payloadVersion},
	}
}
