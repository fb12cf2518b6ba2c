package orders

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otaviopl/jn-restaurant/internal/inventory"
	"github.com/otaviopl/jn-restaurant/internal/store"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) OrderEvent(event string, o store.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type fakePusher struct {
	mu      sync.Mutex
	pushed  []store.Order
	deleted []store.Order
}

func (f *fakePusher) PushOrder(o store.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, o)
}

func (f *fakePusher) PushOrderDelete(o store.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, o)
}

func newTestService(t *testing.T) (*Service, *fakeNotifier, *fakePusher) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "db.json"), nil)
	require.NoError(t, st.Load(context.Background(), nil))
	n := &fakeNotifier{}
	p := &fakePusher{}
	return NewService(st, n, p, nil), n, p
}

func stockOf(t *testing.T, s *Service, flavor string) int {
	t.Helper()
	var qty int
	s.Store.View(func(doc *store.Document) {
		rec := doc.FindStock(flavor)
		require.NotNil(t, rec)
		qty = rec.Quantity
	})
	return qty
}

func skewer(flavor string, qty int) ItemInput {
	return ItemInput{Type: store.ItemSkewer, Flavor: flavor, Qty: qty}
}

func beverage(name string, qty int) ItemInput {
	return ItemInput{Type: store.ItemBeverage, Beverage: name, Qty: qty}
}

func TestCreate_ReservaEstoque(t *testing.T) {
	svc, n, p := newTestService(t)

	o, err := svc.Create(context.Background(), "  Maria  ", []ItemInput{
		skewer("Carne", 3),
		beverage("Coca-Cola", 2),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "Maria", o.CustomerName)
	assert.Equal(t, store.StatusTodo, o.Status)
	assert.Equal(t, store.SourceLocal, o.Source)
	require.Len(t, o.Items, 2)
	assert.NotEmpty(t, o.Items[0].ID)
	assert.Equal(t, 0, o.Items[0].DeliveredQty)

	// espetinho decrementa, bebida não
	assert.Equal(t, 17, stockOf(t, svc, "Carne"))

	assert.Equal(t, []string{"order.created"}, n.events)
	require.Len(t, p.pushed, 1)
	assert.Equal(t, o.ID, p.pushed[0].ID)
}

func TestCreate_EstoqueInsuficienteNadaMuda(t *testing.T) {
	svc, n, _ := newTestService(t)

	// Frango só tem 20: o lote inteiro falha e Carne fica intacto
	_, err := svc.Create(context.Background(), "Maria", []ItemInput{
		skewer("Carne", 5),
		skewer("Frango", 21),
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Frango")

	assert.Equal(t, 20, stockOf(t, svc, "Carne"))
	assert.Equal(t, 20, stockOf(t, svc, "Frango"))
	assert.Empty(t, svc.List(context.Background()))
	assert.Empty(t, n.events)
}

func TestCreate_Validacao(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		customer string
		items    []ItemInput
		wantErr  error
	}{
		{"nome vazio", "   ", []ItemInput{skewer("Carne", 1)}, ErrEmptyCustomer},
		{"sem itens", "Maria", nil, ErrNoItems},
		{"tipo inválido", "Maria", []ItemInput{{Type: "pizza", Qty: 1}}, ErrInvalidItem},
		{"quantidade zero", "Maria", []ItemInput{skewer("Carne", 0)}, ErrInvalidItem},
		{"espetinho sem sabor", "Maria", []ItemInput{{Type: store.ItemSkewer, Qty: 1}}, ErrInvalidItem},
		{"bebida sem nome", "Maria", []ItemInput{{Type: store.ItemBeverage, Qty: 1}}, ErrInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.customer, tt.items)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 20, stockOf(t, svc, "Carne"))
}

func TestUpdate_DeltaLiquidoDeItens(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 5)})
	require.NoError(t, err)
	assert.Equal(t, 15, stockOf(t, svc, "Carne"))

	// reduzir de 5 para 2 devolve 3
	o2, err := svc.Update(ctx, o.ID, UpdateInput{Items: []ItemInput{skewer("Carne", 2)}})
	require.NoError(t, err)
	assert.Equal(t, 18, stockOf(t, svc, "Carne"))

	// identidade preservada pela tripla (type, flavor, beverage)
	assert.Equal(t, o.Items[0].ID, o2.Items[0].ID)

	// subir além do saldo falha sem tocar nada
	_, err = svc.Update(ctx, o.ID, UpdateInput{Items: []ItemInput{skewer("Carne", 25)}})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 18, stockOf(t, svc, "Carne"))

	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Qty)
}

func TestUpdate_TrocaDeSaborReservaNova(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 4)})
	require.NoError(t, err)

	o2, err := svc.Update(ctx, o.ID, UpdateInput{Items: []ItemInput{skewer("Frango", 4)}})
	require.NoError(t, err)

	assert.Equal(t, 20, stockOf(t, svc, "Carne"))
	assert.Equal(t, 16, stockOf(t, svc, "Frango"))
	// sabor diferente não casa com o item antigo: id novo, entrega zerada
	assert.NotEqual(t, o.Items[0].ID, o2.Items[0].ID)
	assert.Equal(t, 0, o2.Items[0].DeliveredQty)
}

func TestUpdate_EntregaClampadaNaReducao(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 5)})
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, o.ID, o.Items[0].ID, ItemUpdateInput{DeliveredQty: intPtr(4)})
	require.NoError(t, err)

	o2, err := svc.Update(ctx, o.ID, UpdateInput{Items: []ItemInput{skewer("Carne", 2)}})
	require.NoError(t, err)
	assert.Equal(t, 2, o2.Items[0].DeliveredQty)
}

func TestUpdate_SituacaoExplicita(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 2)})
	require.NoError(t, err)
	assert.Equal(t, store.StatusTodo, o.Status)

	done := store.StatusDone
	o2, err := svc.Update(ctx, o.ID, UpdateInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, store.StatusDone, o2.Status)

	// sem explícito, done com entrega parcial reabre
	o3, err := svc.UpdateItem(ctx, o.ID, o.Items[0].ID, ItemUpdateInput{DeliveredQty: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, store.StatusInProgress, o3.Status)

	// entregar tudo deriva done
	o4, err := svc.UpdateItem(ctx, o.ID, o.Items[0].ID, ItemUpdateInput{DeliveredQty: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, store.StatusDone, o4.Status)
}

func TestUpdate_PedidoExternoMarcaModified(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Store.Update(ctx, func(doc *store.Document) error {
		doc.Orders = append(doc.Orders, store.Order{
			ID:           "row-2",
			RowNumber:    2,
			CustomerName: "Ana",
			Items:        []store.OrderItem{{ID: "i1", Type: store.ItemSkewer, Flavor: "Carne", Qty: 1}},
			Status:       store.StatusInProgress,
			Source:       store.SourceExternal,
		})
		return nil
	}))

	name := "Ana Paula"
	o, err := svc.Update(ctx, "row-2", UpdateInput{CustomerName: &name})
	require.NoError(t, err)
	assert.True(t, o.Modified)
	assert.Equal(t, "Ana Paula", o.CustomerName)
}

func TestUpdateItem_Limites(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 3)})
	require.NoError(t, err)
	itemID := o.Items[0].ID

	_, err = svc.UpdateItem(ctx, o.ID, itemID, ItemUpdateInput{Qty: intPtr(0)})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = svc.UpdateItem(ctx, o.ID, itemID, ItemUpdateInput{DeliveredQty: intPtr(4)})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = svc.UpdateItem(ctx, o.ID, itemID, ItemUpdateInput{DeliveredQty: intPtr(-1)})
	require.ErrorIs(t, err, ErrInvalidItem)

	// aumentar quantidade reserva a diferença
	o2, err := svc.UpdateItem(ctx, o.ID, itemID, ItemUpdateInput{Qty: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, o2.Items[0].Qty)
	assert.Equal(t, 15, stockOf(t, svc, "Carne"))

	// reduzir devolve e clampa a entrega
	_, err = svc.UpdateItem(ctx, o.ID, itemID, ItemUpdateInput{DeliveredQty: intPtr(5)})
	require.NoError(t, err)
	o3, err := svc.UpdateItem(ctx, o.ID, itemID, ItemUpdateInput{Qty: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, o3.Items[0].DeliveredQty)
	assert.Equal(t, 18, stockOf(t, svc, "Carne"))

	_, err = svc.UpdateItem(ctx, o.ID, "nope", ItemUpdateInput{Qty: intPtr(1)})
	require.ErrorIs(t, err, ErrItemNotFound)
	_, err = svc.UpdateItem(ctx, "nope", itemID, ItemUpdateInput{Qty: intPtr(1)})
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 3), beverage("Suco", 1)})
	require.NoError(t, err)

	o2, err := svc.DeleteItem(ctx, o.ID, o.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, o2.Items, 1)
	// estoque do espetinho removido volta ao livro
	assert.Equal(t, 20, stockOf(t, svc, "Carne"))

	// último item não sai
	_, err = svc.DeleteItem(ctx, o.ID, o2.Items[0].ID)
	require.ErrorIs(t, err, ErrLastItem)
}

func TestDelete_NaoDevolveEstoque(t *testing.T) {
	svc, n, p := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, "Maria", []ItemInput{skewer("Carne", 3)})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, removed.ID)
	assert.Empty(t, svc.List(ctx))

	// a planilha manda no saldo após exclusão: nada volta
	assert.Equal(t, 17, stockOf(t, svc, "Carne"))

	assert.Equal(t, []string{"order.created", "order.deleted"}, n.events)
	require.Len(t, p.deleted, 1)

	_, err = svc.Delete(ctx, o.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestList_NormalizaLegado(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Store.Update(ctx, func(doc *store.Document) error {
		doc.Orders = append(doc.Orders,
			store.Order{ID: "a", Status: store.StatusLegacyDelivered,
				Items: []store.OrderItem{{Qty: 1}}},
			store.Order{ID: "b", Status: store.StatusLegacyPreparing,
				Items: []store.OrderItem{{Qty: 1, DeliveredQty: 1}}},
		)
		return nil
	}))

	got := svc.List(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, store.StatusDone, got[0].Status)
	assert.Equal(t, store.StatusDone, got[1].Status)
}

// Criações concorrentes nunca reservam além do saldo.
func TestCreate_ConcorrenteSemReservaDupla(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const n = 30
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, "Cliente", []ItemInput{skewer("Carne", 1)})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, ok)
	assert.Equal(t, 0, stockOf(t, svc, "Carne"))
}

func intPtr(v int) *int { return &v }
