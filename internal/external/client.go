// Package external fala com a planilha remota (fonte da verdade) e normaliza
// o que vem de lá: nomes de sabor, texto livre de itens e vocabulário solto de
// situação. Toda falha de rede/parse é absorvida e vira "sem dados, segue o
// estado local": nenhuma função daqui devolve erro para o chamador.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/otaviopl/jn-restaurant/internal/redisx"
	"github.com/otaviopl/jn-restaurant/internal/store"
)

const userAgent = "JN-Restaurant-Backoffice/1.0.0"

// Formato das linhas da planilha de estoque.
type inventoryRow struct {
	RowNumber    int    `json:"row_number"`
	Espetinhos   string `json:"Espetinhos"`
	InitialStock int    `json:"Quantidade Inicial"`
	Stock        int    `json:"Estoque"`
}

type productsResponse struct {
	SkewerFlavors []string `json:"skewerFlavors"`
	Beverages     []string `json:"beverages"`
	LastUpdated   string   `json:"lastUpdated"`
	Source        string   `json:"source"`
}

type orderRow struct {
	RowNumber int    `json:"row_number"`
	Cliente   string `json:"cliente"`
	Itens     string `json:"itens"`
	Situacao  string `json:"situacao"`
}

type Client struct {
	InventoryURL string
	ProductsURL  string
	OrdersURL    string
	APIKey       string

	HTTP  *http.Client
	Redis *redis.Client // opcional; cache TTL das respostas
	Log   *slog.Logger
}

func NewClient(inventoryURL, productsURL, ordersURL, apiKey string, timeout time.Duration, rdb *redis.Client, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		InventoryURL: inventoryURL,
		ProductsURL:  productsURL,
		OrdersURL:    ordersURL,
		APIKey:       apiKey,
		HTTP:         &http.Client{Timeout: timeout},
		Redis:        rdb,
		Log:          log,
	}
}

// fetchBody busca a URL com cache TTL opcional na frente. Qualquer falha
// (sem config, rede, não-2xx) devolve nil; erros do Redis são ignorados.
func (c *Client) fetchBody(ctx context.Context, name, url, cacheKey string, ttl time.Duration) []byte {
	if url == "" {
		c.Log.Debug("fonte externa não configurada", "endpoint", name)
		return nil
	}

	key := fmt.Sprintf(cacheKey, name)
	if c.Redis != nil {
		if b, err := c.Redis.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			return b
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("montar request externo", "endpoint", name, "err", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("fonte externa indisponível", "endpoint", name, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Log.Warn("fonte externa respondeu erro", "endpoint", name, "status", resp.StatusCode)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return nil
	}

	if c.Redis != nil {
		_ = c.Redis.Set(ctx, key, body, ttl).Err()
	}
	return body
}

// FlushCache derruba o cache TTL dos fetches para a próxima leitura vir
// fresca da planilha. Sem Redis não há o que derrubar.
func (c *Client) FlushCache(ctx context.Context) {
	if c.Redis == nil {
		return
	}
	var keys []string
	for _, name := range []string{"inventory", "products", "orders"} {
		keys = append(keys,
			fmt.Sprintf(redisx.KeyExternalFetch, name),
			fmt.Sprintf(redisx.KeyExternalRealtime, name))
	}
	_ = c.Redis.Del(ctx, keys...).Err()
}

func (c *Client) fetchInventoryRows(ctx context.Context, cacheKey string, ttl time.Duration) []inventoryRow {
	body := c.fetchBody(ctx, "inventory", c.InventoryURL, cacheKey, ttl)
	if body == nil {
		return nil
	}
	var rows []inventoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		c.Log.Warn("estoque externo em formato inesperado", "err", err)
		return nil
	}
	return rows
}

// groupInventory agrupa linhas por sabor normalizado somando duplicatas;
// saldos negativos da planilha entram como zero.
func groupInventory(rows []inventoryRow, log *slog.Logger) []store.InventoryRecord {
	var out []store.InventoryRecord
	index := map[string]int{}
	for _, row := range rows {
		flavor := NormalizeFlavor(row.Espetinhos)
		if flavor == "" {
			if log != nil {
				log.Warn("linha de estoque sem sabor, ignorada", "row", row.RowNumber)
			}
			continue
		}
		qty := max(0, row.Stock)
		initial := max(0, row.InitialStock)
		if i, ok := index[flavor]; ok {
			out[i].Quantity += qty
			out[i].InitialQuantity += initial
			continue
		}
		index[flavor] = len(out)
		out = append(out, store.InventoryRecord{
			Flavor:          flavor,
			Quantity:        qty,
			InitialQuantity: initial,
		})
	}
	return out
}

// FetchInventory devolve o estoque canônico da planilha ou nil quando a fonte
// está indisponível (sinal de "mantém o estado local").
func (c *Client) FetchInventory(ctx context.Context) []store.InventoryRecord {
	rows := c.fetchInventoryRows(ctx, redisx.KeyExternalFetch, redisx.TTLExternalCache)
	if rows == nil {
		return nil
	}
	return groupInventory(rows, c.Log)
}

// FetchInventoryRealtime é o mesmo fetch com janela de frescor curta.
func (c *Client) FetchInventoryRealtime(ctx context.Context) []store.InventoryRecord {
	rows := c.fetchInventoryRows(ctx, redisx.KeyExternalRealtime, redisx.TTLRealtime)
	if rows == nil {
		return nil
	}
	return groupInventory(rows, c.Log)
}

// FetchProducts devolve o catálogo explícito quando há fonte de produtos
// configurada; senão deriva os sabores do estoque com a lista padrão de
// bebidas. nil = fonte indisponível.
func (c *Client) FetchProducts(ctx context.Context) *store.Products {
	if c.ProductsURL == "" {
		return c.deriveProducts(ctx)
	}

	body := c.fetchBody(ctx, "products", c.ProductsURL, redisx.KeyExternalFetch, redisx.TTLExternalCache)
	if body == nil {
		return nil
	}
	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.Log.Warn("produtos externos em formato inesperado", "err", err)
		return nil
	}

	out := &store.Products{}
	for _, f := range resp.SkewerFlavors {
		if f = NormalizeFlavor(f); f != "" {
			out.Flavors = append(out.Flavors, f)
		}
	}
	for _, b := range resp.Beverages {
		if b = strings.TrimSpace(b); b != "" {
			out.Beverages = append(out.Beverages, b)
		}
	}
	if len(out.Flavors) == 0 {
		out.Flavors = append([]string(nil), store.DefaultFlavors...)
	}
	if len(out.Beverages) == 0 {
		out.Beverages = append([]string(nil), store.DefaultBeverages...)
	}
	return out
}

func (c *Client) deriveProducts(ctx context.Context) *store.Products {
	rows := c.fetchInventoryRows(ctx, redisx.KeyExternalFetch, redisx.TTLExternalCache)
	if rows == nil {
		return nil
	}
	out := &store.Products{Beverages: append([]string(nil), store.DefaultBeverages...)}
	seen := map[string]bool{}
	for _, row := range rows {
		if f := NormalizeFlavor(row.Espetinhos); f != "" && !seen[f] {
			seen[f] = true
			out.Flavors = append(out.Flavors, f)
		}
	}
	return out
}

// FetchOrders converte cada linha remota num pedido canônico, parseando o
// texto livre de itens contra o catálogo conhecido. Linhas sem item
// aproveitável são puladas; a função nunca devolve erro.
func (c *Client) FetchOrders(ctx context.Context, flavors []string) []store.Order {
	body := c.fetchBody(ctx, "orders", c.OrdersURL, redisx.KeyExternalFetch, redisx.TTLExternalCache)
	if body == nil {
		return nil
	}
	var rows []orderRow
	if err := json.Unmarshal(body, &rows); err != nil {
		c.Log.Warn("pedidos externos em formato inesperado", "err", err)
		return nil
	}

	var out []store.Order
	for _, row := range rows {
		items := ParseItems(row.Itens, flavors)
		if len(items) == 0 {
			c.Log.Warn("linha de pedido sem itens reconhecíveis, ignorada", "row", row.RowNumber)
			continue
		}
		out = append(out, store.Order{
			ID:           fmt.Sprintf("row-%d", row.RowNumber),
			RowNumber:    row.RowNumber,
			CustomerName: strings.TrimSpace(row.Cliente),
			Items:        items,
			Status:       ClassifyStatus(row.Situacao),
			CreatedAt:    time.Now().UTC(),
			Source:       store.SourceExternal,
		})
	}
	return out
}
