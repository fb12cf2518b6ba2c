package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/otaviopl/jn-restaurant/internal/inventory"
	"github.com/otaviopl/jn-restaurant/internal/store"
)

var (
	ErrOrderNotFound = errors.New("pedido não encontrado")
	ErrItemNotFound  = errors.New("item não encontrado")
	ErrLastItem      = errors.New("pedido deve ter pelo menos um item")
	ErrEmptyCustomer = errors.New("nome do cliente é obrigatório")
	ErrNoItems       = errors.New("pelo menos um item deve ser adicionado ao pedido")
	ErrInvalidItem   = errors.New("item inválido")
)

// Notifier publica eventos estruturados após mutações locais bem-sucedidas
// (webhook/kafka). Implementado em internal/notify; nil desliga.
type Notifier interface {
	OrderEvent(event string, o store.Order)
}

// Pusher propaga a mutação para o sistema remoto, best-effort.
// Implementado em internal/syncx; nil desliga.
type Pusher interface {
	PushOrder(o store.Order)
	PushOrderDelete(o store.Order)
}

type ItemInput struct {
	Type     store.ItemType `json:"type"`
	Flavor   string         `json:"flavor,omitempty"`
	Beverage string         `json:"beverage,omitempty"`
	Qty      int            `json:"qty"`
}

type UpdateInput struct {
	CustomerName *string       `json:"customerName,omitempty"`
	Items        []ItemInput   `json:"items,omitempty"`
	Status       *store.Status `json:"status,omitempty"`
}

type ItemUpdateInput struct {
	Qty          *int `json:"qty,omitempty"`
	DeliveredQty *int `json:"deliveredQty,omitempty"`
}

type Service struct {
	Store    *store.Store
	Notifier Notifier
	Pusher   Pusher
	Log      *slog.Logger
}

func NewService(st *store.Store, n Notifier, p Pusher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Store: st, Notifier: n, Pusher: p, Log: log}
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, it := range items {
		if it.Type != store.ItemSkewer && it.Type != store.ItemBeverage {
			return fmt.Errorf("%w: tipo de item inválido", ErrInvalidItem)
		}
		if it.Qty < 1 {
			return fmt.Errorf("%w: quantidade deve ser maior que zero", ErrInvalidItem)
		}
		if it.Type == store.ItemSkewer && strings.TrimSpace(it.Flavor) == "" {
			return fmt.Errorf("%w: sabor do espetinho é obrigatório", ErrInvalidItem)
		}
		if it.Type == store.ItemBeverage && strings.TrimSpace(it.Beverage) == "" {
			return fmt.Errorf("%w: tipo de bebida é obrigatório", ErrInvalidItem)
		}
	}
	return nil
}

// skewerDeltas acumula, por sabor, quanto o lote de itens reserva de estoque.
func skewerDeltas(items []ItemInput) map[string]int {
	deltas := map[string]int{}
	for _, it := range items {
		if it.Type == store.ItemSkewer {
			deltas[it.Flavor] += it.Qty
		}
	}
	return deltas
}

// Create valida, reserva estoque em lote (tudo-ou-nada) e grava o pedido.
// Nenhum estoque fica decrementado se qualquer sabor não tiver saldo.
func (s *Service) Create(ctx context.Context, customerName string, items []ItemInput) (store.Order, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return store.Order{}, ErrEmptyCustomer
	}
	if err := validateItems(items); err != nil {
		return store.Order{}, err
	}

	order := store.Order{
		ID:           uuid.NewString(),
		CustomerName: customerName,
		Status:       store.StatusTodo,
		CreatedAt:    time.Now().UTC(),
		Source:       store.SourceLocal,
	}
	for _, it := range items {
		order.Items = append(order.Items, store.OrderItem{
			ID:       uuid.NewString(),
			Type:     it.Type,
			Flavor:   it.Flavor,
			Beverage: it.Beverage,
			Qty:      it.Qty,
		})
	}

	err := s.Store.Update(ctx, func(doc *store.Document) error {
		if err := inventory.Apply(doc, skewerDeltas(items)); err != nil {
			return err
		}
		doc.Orders = append(doc.Orders, order.Clone())
		return nil
	})
	if err != nil {
		return store.Order{}, err
	}

	s.notifyOrder("order.created", order)
	s.pushOrder(order)
	return order, nil
}

// Update aplica edições parciais de um pedido. Troca de itens recalcula o
// delta líquido por sabor e aplica em lote; identidade dos itens é preservada
// pelo primeiro casamento de (type, flavor, beverage).
func (s *Service) Update(ctx context.Context, orderID string, in UpdateInput) (store.Order, error) {
	if in.CustomerName != nil && strings.TrimSpace(*in.CustomerName) == "" {
		return store.Order{}, ErrEmptyCustomer
	}
	if in.Items != nil {
		if err := validateItems(in.Items); err != nil {
			return store.Order{}, err
		}
	}

	var updated store.Order
	err := s.Store.Update(ctx, func(doc *store.Document) error {
		o := doc.FindOrder(orderID)
		if o == nil {
			return ErrOrderNotFound
		}

		if in.Items != nil {
			// delta líquido: -qty dos itens antigos, +qty dos novos
			deltas := skewerDeltas(in.Items)
			for _, old := range o.Items {
				if old.Type == store.ItemSkewer {
					deltas[old.Flavor] -= old.Qty
				}
			}
			if err := inventory.Apply(doc, deltas); err != nil {
				return err
			}
			o.Items = rebuildItems(o.Items, in.Items)
		}
		if in.CustomerName != nil {
			o.CustomerName = strings.TrimSpace(*in.CustomerName)
		}
		o.Status = Resolve(o.Status, o.Items, in.Status)
		if o.Source == store.SourceExternal {
			o.Modified = true
		}
		updated = o.Clone()
		return nil
	})
	if err != nil {
		return store.Order{}, err
	}

	s.notifyOrder("order.updated", updated)
	s.pushOrder(updated)
	return updated, nil
}

// rebuildItems monta a nova lista preservando id e deliveredQty dos itens
// antigos com a mesma tripla (type, flavor, beverage); o primeiro casamento
// vence e não olha quantidade. Itens sem par ganham id novo e entrega zero.
func rebuildItems(old []store.OrderItem, in []ItemInput) []store.OrderItem {
	used := make([]bool, len(old))
	out := make([]store.OrderItem, 0, len(in))
	for _, it := range in {
		item := store.OrderItem{
			ID:       uuid.NewString(),
			Type:     it.Type,
			Flavor:   it.Flavor,
			Beverage: it.Beverage,
			Qty:      it.Qty,
		}
		for i, prev := range old {
			if used[i] || prev.Type != it.Type || prev.Flavor != it.Flavor || prev.Beverage != it.Beverage {
				continue
			}
			used[i] = true
			item.ID = prev.ID
			item.DeliveredQty = prev.DeliveredQty
			if item.DeliveredQty > item.Qty {
				item.DeliveredQty = item.Qty
			}
			break
		}
		out = append(out, item)
	}
	return out
}

// UpdateItem altera qty e/ou deliveredQty de um item. Aumento de quantidade
// reserva a diferença no estoque; entrega nunca passa da quantidade pedida.
func (s *Service) UpdateItem(ctx context.Context, orderID, itemID string, in ItemUpdateInput) (store.Order, error) {
	var updated store.Order
	err := s.Store.Update(ctx, func(doc *store.Document) error {
		o := doc.FindOrder(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		var item *store.OrderItem
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				item = &o.Items[i]
				break
			}
		}
		if item == nil {
			return ErrItemNotFound
		}

		if in.Qty != nil {
			if *in.Qty < 1 {
				return fmt.Errorf("%w: quantidade deve ser maior que zero", ErrInvalidItem)
			}
			if item.Type == store.ItemSkewer {
				if err := inventory.Adjust(doc, item.Flavor, *in.Qty-item.Qty); err != nil {
					return err
				}
			}
			item.Qty = *in.Qty
			if item.DeliveredQty > item.Qty {
				item.DeliveredQty = item.Qty
			}
		}
		if in.DeliveredQty != nil {
			if *in.DeliveredQty < 0 || *in.DeliveredQty > item.Qty {
				return fmt.Errorf("%w: quantidade entregue deve estar entre 0 e %d", ErrInvalidItem, item.Qty)
			}
			item.DeliveredQty = *in.DeliveredQty
		}

		o.Status = Resolve(o.Status, o.Items, nil)
		if o.Source == store.SourceExternal {
			o.Modified = true
		}
		updated = o.Clone()
		return nil
	})
	if err != nil {
		return store.Order{}, err
	}

	s.notifyOrder("order.updated", updated)
	s.pushOrder(updated)
	return updated, nil
}

// DeleteItem remove um item; o último item de um pedido não pode ser removido.
// Estoque de espetinho volta ao livro; falha na devolução não bloqueia.
func (s *Service) DeleteItem(ctx context.Context, orderID, itemID string) (store.Order, error) {
	var updated store.Order
	err := s.Store.Update(ctx, func(doc *store.Document) error {
		o := doc.FindOrder(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		idx := -1
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrItemNotFound
		}
		if len(o.Items) == 1 {
			return ErrLastItem
		}

		removed := o.Items[idx]
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
		if removed.Type == store.ItemSkewer {
			if err := inventory.Adjust(doc, removed.Flavor, -removed.Qty); err != nil {
				s.Log.Warn("falha ao devolver estoque do item removido",
					"flavor", removed.Flavor, "qty", removed.Qty, "err", err)
			}
		}
		o.Status = Resolve(o.Status, o.Items, nil)
		if o.Source == store.SourceExternal {
			o.Modified = true
		}
		updated = o.Clone()
		return nil
	})
	if err != nil {
		return store.Order{}, err
	}

	s.notifyOrder("order.updated", updated)
	s.pushOrder(updated)
	return updated, nil
}

// Delete remove o pedido inteiro. O estoque reservado pelos itens NÃO volta ao
// livro: a planilha remota é quem manda no saldo após uma exclusão.
func (s *Service) Delete(ctx context.Context, orderID string) (store.Order, error) {
	var removed store.Order
	err := s.Store.Update(ctx, func(doc *store.Document) error {
		for i := range doc.Orders {
			if doc.Orders[i].ID == orderID {
				removed = doc.Orders[i].Clone()
				doc.Orders = append(doc.Orders[:i], doc.Orders[i+1:]...)
				return nil
			}
		}
		return ErrOrderNotFound
	})
	if err != nil {
		return store.Order{}, err
	}

	s.notifyOrder("order.deleted", removed)
	if s.Pusher != nil {
		s.Pusher.PushOrderDelete(removed)
	}
	return removed, nil
}

// List devolve cópias dos pedidos com a situação normalizada na leitura.
func (s *Service) List(ctx context.Context) []store.Order {
	var out []store.Order
	s.Store.View(func(doc *store.Document) {
		out = make([]store.Order, 0, len(doc.Orders))
		for _, o := range doc.Orders {
			c := o.Clone()
			c.Status = NormalizeRead(c)
			out = append(out, c)
		}
	})
	return out
}

func (s *Service) Get(ctx context.Context, orderID string) (store.Order, error) {
	var (
		found bool
		out   store.Order
	)
	s.Store.View(func(doc *store.Document) {
		if o := doc.FindOrder(orderID); o != nil {
			out = o.Clone()
			out.Status = NormalizeRead(out)
			found = true
		}
	})
	if !found {
		return store.Order{}, ErrOrderNotFound
	}
	return out, nil
}

func (s *Service) notifyOrder(event string, o store.Order) {
	if s.Notifier != nil {
		s.Notifier.OrderEvent(event, o)
	}
}

func (s *Service) pushOrder(o store.Order) {
	if s.Pusher != nil {
		s.Pusher.PushOrder(o)
	}
}
