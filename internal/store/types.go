package store

import "time"

type ItemType string

const (
	ItemSkewer   ItemType = "skewer"
	ItemBeverage ItemType = "beverage"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCanceled   Status = "canceled"

	// Situações legadas da planilha, aceitas na entrada e normalizadas na leitura.
	StatusLegacyPreparing Status = "em_preparo"
	StatusLegacyDelivered Status = "entregue"
)

type Source string

const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
)

type OrderItem struct {
	ID           string   `json:"id"`
	Type         ItemType `json:"type"`
	Flavor       string   `json:"flavor,omitempty"`   // presente sse skewer
	Beverage     string   `json:"beverage,omitempty"` // presente sse beverage
	Qty          int      `json:"qty"`
	DeliveredQty int      `json:"deliveredQty"`
	Status       string   `json:"status,omitempty"`
}

type Order struct {
	ID           string      `json:"id"`
	RowNumber    int         `json:"row_number,omitempty"` // linha na planilha remota, 0 = ainda não sincronizado
	CustomerName string      `json:"customerName"`
	Items        []OrderItem `json:"items"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	Source       Source      `json:"source"`
	Modified     bool        `json:"modified,omitempty"` // pedido externo editado localmente
}

type InventoryRecord struct {
	Flavor          string `json:"flavor"`
	Quantity        int    `json:"quantity"`
	InitialQuantity int    `json:"initialQuantity,omitempty"`
}

type Products struct {
	Flavors   []string `json:"flavors"`
	Beverages []string `json:"beverages"`
}

// Document é o documento único persistido em disco (db.json).
type Document struct {
	Orders    []Order           `json:"orders"`
	Inventory []InventoryRecord `json:"inventory"`
	Products  Products          `json:"products"`
	LastSync  time.Time         `json:"lastSync"`
}

// Catálogo padrão usado quando a fonte externa está indisponível no bootstrap.
var (
	DefaultFlavors   = []string{"Carne", "Frango", "Queijo", "Calabresa"}
	DefaultBeverages = []string{"Coca-Cola", "Guaraná", "Água", "Suco"}

	defaultInitialStock = 20
)

func SeedDocument() *Document {
	doc := &Document{
		Orders: []Order{},
		Products: Products{
			Flavors:   append([]string(nil), DefaultFlavors...),
			Beverages: append([]string(nil), DefaultBeverages...),
		},
	}
	for _, f := range DefaultFlavors {
		doc.Inventory = append(doc.Inventory, InventoryRecord{
			Flavor:          f,
			Quantity:        defaultInitialStock,
			InitialQuantity: defaultInitialStock,
		})
	}
	return doc
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Orders:    make([]Order, len(d.Orders)),
		Inventory: append([]InventoryRecord(nil), d.Inventory...),
		Products: Products{
			Flavors:   append([]string(nil), d.Products.Flavors...),
			Beverages: append([]string(nil), d.Products.Beverages...),
		},
		LastSync: d.LastSync,
	}
	for i, o := range d.Orders {
		out.Orders[i] = o.Clone()
	}
	return out
}

func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

func (d *Document) FindOrder(id string) *Order {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return &d.Orders[i]
		}
	}
	return nil
}

func (d *Document) FindStock(flavor string) *InventoryRecord {
	for i := range d.Inventory {
		if d.Inventory[i].Flavor == flavor {
			return &d.Inventory[i]
		}
	}
	return nil
}

// TotalItems soma as quantidades pedidas; usado no payload do webhook.
func (o Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Qty
	}
	return n
}

func (o Order) DeliveredItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.DeliveredQty
	}
	return n
}
