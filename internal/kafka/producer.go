// Package kafka embrulha um writer assíncrono para o sink opcional de eventos
// do backoffice. Publicação é fire-and-forget: erro vira log, nunca bloqueia a
// mutação que gerou o evento.
package kafka

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				// Close é o único que fecha o inbox; aqui só drena e sai.
				p.Close()
				for m := range p.inbox {
					_ = p.w.WriteMessages(context.Background(), m)
				}
				_ = p.w.Close()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("kafka publish: %v", err)
				}
			}
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
	default:
		log.Printf("kafka inbox cheio, evento descartado")
	}
}

// Fecha o inbox para a goroutine drenar o resto e sair limpa.
// Idempotente: cancelamento de contexto e shutdown podem correr juntos.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.inbox) }) }

// Espera a goroutine terminar o flush.
func (p *Producer) WaitClosed() { <-p.closeCh }
