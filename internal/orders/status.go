package orders

import "github.com/otaviopl/jn-restaurant/internal/store"

// Precedência de situação: explícita > todo/canceled fixados > derivada da
// entrega. Mudança explícita (arrastar no kanban) é livre entre quaisquer
// estados; sem pedido explícito, in_progress/done são sempre recalculados.

func kanban(s store.Status) bool {
	switch s {
	case store.StatusTodo, store.StatusInProgress, store.StatusDone, store.StatusCanceled:
		return true
	}
	return false
}

// derive calcula a situação a partir das entregas: tudo entregue vira done.
func derive(items []store.OrderItem) store.Status {
	for _, it := range items {
		if it.DeliveredQty < it.Qty {
			return store.StatusInProgress
		}
	}
	return store.StatusDone
}

// NormalizeRead mapeia situações legadas na leitura sem tocar nas quatro
// colunas do kanban: em_preparo deriva da entrega, entregue vira done.
func NormalizeRead(o store.Order) store.Status {
	switch {
	case kanban(o.Status):
		return o.Status
	case o.Status == store.StatusLegacyDelivered:
		return store.StatusDone
	default:
		// em_preparo e qualquer texto desconhecido
		return derive(o.Items)
	}
}

// Resolve decide a nova situação de um pedido após uma mutação.
// explicit nil = chamador não pediu situação; todo e canceled ficam fixados,
// o resto é derivado. Com explicit, o valor (normalizado) vale sempre.
func Resolve(current store.Status, items []store.OrderItem, explicit *store.Status) store.Status {
	if explicit != nil {
		switch *explicit {
		case store.StatusLegacyDelivered:
			return store.StatusDone
		case store.StatusLegacyPreparing:
			return derive(items)
		default:
			return *explicit
		}
	}
	switch current {
	case store.StatusTodo, store.StatusCanceled:
		return current
	default:
		return derive(items)
	}
}
