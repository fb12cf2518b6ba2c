// Package inventory implementa o livro de estoque por sabor sobre o documento
// persistido. Reserva é decremento definitivo, sem hold temporário.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/otaviopl/jn-restaurant/internal/store"
)

var (
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrUnknownFlavor     = errors.New("sabor desconhecido")
)

func insufficientStock(flavor string, available, requested int) error {
	return fmt.Errorf("%w para %s. Disponível: %d, Solicitado: %d",
		ErrInsufficientStock, flavor, available, requested)
}

// Apply aplica um lote de deltas (positivo = reservar, negativo = devolver)
// com semântica tudo-ou-nada: valida todos antes de mexer em qualquer saldo.
func Apply(doc *store.Document, deltas map[string]int) error {
	// ordem estável só para mensagens determinísticas
	flavors := make([]string, 0, len(deltas))
	for f := range deltas {
		flavors = append(flavors, f)
	}
	sort.Strings(flavors)

	for _, f := range flavors {
		delta := deltas[f]
		if delta == 0 {
			continue
		}
		rec := doc.FindStock(f)
		if rec == nil {
			return fmt.Errorf("%w: %s", ErrUnknownFlavor, f)
		}
		if rec.Quantity-delta < 0 {
			return insufficientStock(f, rec.Quantity, delta)
		}
	}
	for _, f := range flavors {
		if rec := doc.FindStock(f); rec != nil {
			rec.Quantity -= deltas[f]
		}
	}
	return nil
}

// Adjust decrementa um único sabor (delta negativo devolve estoque).
func Adjust(doc *store.Document, flavor string, delta int) error {
	return Apply(doc, map[string]int{flavor: delta})
}

// Set grava o saldo absoluto de um sabor, nunca abaixo de zero.
// Sabor desconhecido é ignorado, como no painel original.
func Set(doc *store.Document, flavor string, qty int) {
	rec := doc.FindStock(flavor)
	if rec == nil {
		return
	}
	if qty < 0 {
		qty = 0
	}
	rec.Quantity = qty
}

// Replace troca o estoque inteiro (usado só pelo sync) e recalcula o catálogo
// de sabores derivado dos registros recebidos.
func Replace(doc *store.Document, records []store.InventoryRecord) {
	doc.Inventory = append([]store.InventoryRecord(nil), records...)
	flavors := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if !seen[r.Flavor] {
			seen[r.Flavor] = true
			flavors = append(flavors, r.Flavor)
		}
	}
	doc.Products.Flavors = flavors
}

// Ledger expõe as operações de estoque sobre o Store para os handlers e o sync.
type Ledger struct {
	Store *store.Store
	Log   *slog.Logger
}

// GetAll devolve uma cópia do estoque atual.
func (l *Ledger) GetAll() []store.InventoryRecord {
	var out []store.InventoryRecord
	l.Store.View(func(doc *store.Document) {
		out = append(out, doc.Inventory...)
	})
	return out
}

// SetAll grava saldos absolutos por sabor (PATCH /api/inventory).
func (l *Ledger) SetAll(ctx context.Context, updates map[string]int) error {
	return l.Store.Update(ctx, func(doc *store.Document) error {
		for flavor, qty := range updates {
			Set(doc, flavor, qty)
		}
		return nil
	})
}
