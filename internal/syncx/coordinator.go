// Package syncx reconcilia o documento local com a planilha remota: pulls
// sobrescrevem (nunca mesclam) e pushes são best-effort em background. A
// planilha é a fonte da verdade; quando ela não responde, o estado local segue
// valendo até o próximo pull bem-sucedido.
package syncx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/otaviopl/jn-restaurant/internal/external"
	"github.com/otaviopl/jn-restaurant/internal/inventory"
	"github.com/otaviopl/jn-restaurant/internal/store"
)

const userAgent = "JN-Restaurant-Backoffice/1.0.0"

type Coordinator struct {
	Store  *store.Store
	Client *external.Client

	OrderUpdateURL     string
	OrderDeleteURL     string
	InventoryUpdateURL string
	APIKey             string

	HTTP    *http.Client
	Timeout time.Duration
	Log     *slog.Logger
}

func NewCoordinator(st *store.Store, cl *external.Client, orderUpdateURL, orderDeleteURL, inventoryUpdateURL, apiKey string, timeout time.Duration, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Coordinator{
		Store:              st,
		Client:             cl,
		OrderUpdateURL:     orderUpdateURL,
		OrderDeleteURL:     orderDeleteURL,
		InventoryUpdateURL: inventoryUpdateURL,
		APIKey:             apiKey,
		HTTP:               &http.Client{},
		Timeout:            timeout,
		Log:                log,
	}
}

// BootstrapDocument monta o documento inicial a partir da planilha.
// nil = fonte indisponível, o Store cai no seed padrão.
func (c *Coordinator) BootstrapDocument(ctx context.Context) *store.Document {
	records := c.Client.FetchInventory(ctx)
	if records == nil {
		return nil
	}
	doc := &store.Document{Orders: []store.Order{}}
	inventory.Replace(doc, records)

	if p := c.Client.FetchProducts(ctx); p != nil {
		doc.Products = *p
	} else if len(doc.Products.Beverages) == 0 {
		doc.Products.Beverages = append([]string(nil), store.DefaultBeverages...)
	}
	if orders := c.Client.FetchOrders(ctx, doc.Products.Flavors); orders != nil {
		doc.Orders = orders
	}
	return doc
}

// PullInventory sobrescreve o estoque local com a leitura em tempo real da
// planilha. Devolve true quando a planilha respondeu; false mantém o local.
func (c *Coordinator) PullInventory(ctx context.Context) (bool, error) {
	records := c.Client.FetchInventoryRealtime(ctx)
	if records == nil {
		return false, nil
	}
	err := c.Store.Update(ctx, func(doc *store.Document) error {
		inventory.Replace(doc, records)
		return nil
	})
	return err == nil, err
}

// PullOrders sobrescreve a lista de pedidos com as linhas da planilha,
// parseadas contra o catálogo corrente. Edições locais não enviadas se perdem:
// quem manda é a planilha.
func (c *Coordinator) PullOrders(ctx context.Context) (bool, error) {
	var flavors []string
	c.Store.View(func(doc *store.Document) {
		flavors = append(flavors, doc.Products.Flavors...)
	})

	orders := c.Client.FetchOrders(ctx, flavors)
	if orders == nil {
		return false, nil
	}
	err := c.Store.Update(ctx, func(doc *store.Document) error {
		doc.Orders = orders
		return nil
	})
	return err == nil, err
}

// PullProducts atualiza o catálogo (sabores e bebidas) a partir da planilha.
func (c *Coordinator) PullProducts(ctx context.Context) (bool, error) {
	p := c.Client.FetchProducts(ctx)
	if p == nil {
		return false, nil
	}
	err := c.Store.Update(ctx, func(doc *store.Document) error {
		doc.Products = *p
		return nil
	})
	return err == nil, err
}

// Revalidate derruba o cache dos fetches e roda o ciclo completo de pulls,
// espelhando o documento local na planilha (POST /api/revalidate).
func (c *Coordinator) Revalidate(ctx context.Context) error {
	c.Client.FlushCache(ctx)
	return c.PullAll(ctx)
}

// PullAll roda os três pulls em sequência; qualquer fonte indisponível é
// pulada sem derrubar as demais.
func (c *Coordinator) PullAll(ctx context.Context) error {
	if _, err := c.PullProducts(ctx); err != nil {
		return err
	}
	if _, err := c.PullInventory(ctx); err != nil {
		return err
	}
	_, err := c.PullOrders(ctx)
	return err
}

// Formato das linhas empurradas de volta para a planilha.
type pushOrderRow struct {
	RowNumber int    `json:"row_number"`
	Itens     string `json:"itens"`
	Cliente   string `json:"cliente"`
	Situacao  string `json:"situacao"`
}

type pushItem struct {
	Nome       string `json:"nome"`
	Quantidade int    `json:"quantidade"`
}

type pushInventoryRow struct {
	Espetinhos string `json:"Espetinhos"`
	Estoque    int    `json:"Estoque"`
}

// situacaoText traduz a situação do kanban para o vocabulário da planilha.
// "Na fila" volta como todo no próximo pull; o resto segue o texto legado.
func situacaoText(s store.Status) string {
	switch s {
	case store.StatusDone, store.StatusLegacyDelivered:
		return "Entregue"
	case store.StatusCanceled:
		return "Cancelado"
	case store.StatusTodo:
		return "Na fila"
	default:
		return "Em preparo"
	}
}

// itensText serializa os itens no JSON compacto que a planilha guarda na
// coluna de texto livre.
func itensText(items []store.OrderItem) string {
	rows := make([]pushItem, 0, len(items))
	for _, it := range items {
		name := it.Flavor
		if it.Type == store.ItemBeverage {
			name = it.Beverage
		}
		rows = append(rows, pushItem{Nome: name, Quantidade: it.Qty})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// PushOrder propaga criação/edição de pedido em background; falha só loga.
func (c *Coordinator) PushOrder(o store.Order) {
	if c.OrderUpdateURL == "" {
		return
	}
	row := pushOrderRow{
		RowNumber: o.RowNumber,
		Itens:     itensText(o.Items),
		Cliente:   o.CustomerName,
		Situacao:  situacaoText(o.Status),
	}
	go func() {
		if err := c.send(http.MethodPut, c.OrderUpdateURL, []pushOrderRow{row}); err != nil {
			c.Log.Warn("push de pedido falhou", "order", o.ID, "err", err)
		}
	}()
}

// PushOrderDelete avisa a planilha da exclusão. Pedido que nunca foi
// sincronizado (sem número de linha) não tem o que apagar lá.
func (c *Coordinator) PushOrderDelete(o store.Order) {
	if c.OrderDeleteURL == "" || o.RowNumber == 0 {
		return
	}
	go func() {
		body := map[string]int{"row_number": o.RowNumber}
		if err := c.send(http.MethodPost, c.OrderDeleteURL, body); err != nil {
			c.Log.Warn("push de exclusão falhou", "order", o.ID, "row", o.RowNumber, "err", err)
		}
	}()
}

// PushInventory propaga os saldos correntes para a planilha.
func (c *Coordinator) PushInventory(records []store.InventoryRecord) {
	if c.InventoryUpdateURL == "" {
		return
	}
	rows := make([]pushInventoryRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, pushInventoryRow{Espetinhos: r.Flavor, Estoque: r.Quantity})
	}
	go func() {
		if err := c.send(http.MethodPut, c.InventoryUpdateURL, rows); err != nil {
			c.Log.Warn("push de estoque falhou", "err", err)
		}
	}()
}

func (c *Coordinator) send(method, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar push: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("planilha respondeu %d", resp.StatusCode)
	}
	return nil
}
