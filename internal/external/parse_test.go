package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otaviopl/jn-restaurant/internal/store"
)

var catalog = []string{"Carne", "Frango", "Queijo", "Calabresa"}

type wantItem struct {
	typ      store.ItemType
	flavor   string
	beverage string
	qty      int
}

func checkItems(t *testing.T, got []store.OrderItem, want []wantItem) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.typ, got[i].Type, "item %d", i)
		assert.Equal(t, w.flavor, got[i].Flavor, "item %d", i)
		assert.Equal(t, w.beverage, got[i].Beverage, "item %d", i)
		assert.Equal(t, w.qty, got[i].Qty, "item %d", i)
		assert.NotEmpty(t, got[i].ID, "item %d", i)
	}
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"barra com espaços tem precedência", "Carne x 2 / Coca x 1", []string{"Carne x 2", "Coca x 1"}},
		{"barra seca", "Carne/Frango", []string{"Carne", "Frango"}},
		{"quebra de linha", "Carne\nFrango", []string{"Carne", "Frango"}},
		{"vírgula por último", "Carne, Frango", []string{"Carne", "Frango"}},
		{"só o primeiro separador vale", "Carne / Frango, Queijo", []string{"Carne", "Frango, Queijo"}},
		{"sem separador", "Carne x 2", []string{"Carne x 2"}},
		{"vazio", "   ", nil},
		{"pedaço vazio descartado", "Carne,,Frango", []string{"Carne", "Frango"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSegments(tt.in))
		})
	}
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []wantItem
	}{
		{
			"padrão nome x quantidade",
			"Carne x 2 / Coca-Cola x 1",
			[]wantItem{
				{store.ItemSkewer, "Carne", "", 2},
				{store.ItemBeverage, "", "Coca-Cola", 1},
			},
		},
		{
			"quantidade antes do sabor",
			"2 Carne, 3 Frango",
			[]wantItem{
				{store.ItemSkewer, "Carne", "", 2},
				{store.ItemSkewer, "Frango", "", 3},
			},
		},
		{
			"sabor embutido em frase com x",
			"Espetinho de carne x 3",
			[]wantItem{{store.ItemSkewer, "Carne", "", 3}},
		},
		{
			"varredura multi-sabor sem separador",
			"Carne x 2 e Frango",
			[]wantItem{
				{store.ItemSkewer, "Carne", "", 2},
				{store.ItemSkewer, "Frango", "", 1},
			},
		},
		{
			"sabor sozinho vale um",
			"Queijo",
			[]wantItem{{store.ItemSkewer, "Queijo", "", 1}},
		},
		{
			"bebida por palavra-chave",
			"guaraná x 2",
			[]wantItem{{store.ItemBeverage, "", "guaraná", 2}},
		},
		{
			"sabor fora do catálogo vira ad hoc",
			"Pastel x 2",
			[]wantItem{{store.ItemSkewer, "Pastel", "", 2}},
		},
		{
			"nada reconhecível vira um espetinho",
			"xyz",
			[]wantItem{{store.ItemSkewer, "xyz", "", 1}},
		},
		{
			"typo corrigido pelo apelido",
			"quejio x 2",
			[]wantItem{{store.ItemSkewer, "Queijo", "", 2}},
		},
		{
			"quantidade zero vira um",
			"Carne x 0",
			[]wantItem{{store.ItemSkewer, "Carne", "", 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkItems(t, ParseItems(tt.in, catalog), tt.want)
		})
	}

	assert.Nil(t, ParseItems("", catalog))
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		in   string
		want store.Status
	}{
		{"Na fila", store.StatusTodo},
		{"A FAZER", store.StatusTodo},
		{"Aguardando", store.StatusTodo},
		{"Pendente", store.StatusTodo},
		{"Entregue", store.StatusDone},
		{"Concluído", store.StatusDone},
		{"Pronto", store.StatusDone},
		{"Cancelado", store.StatusCanceled},
		{"Em preparo", store.StatusInProgress},
		{"", store.StatusInProgress},
		{"qualquer coisa", store.StatusInProgress},
		// prioridade: fila ganha de entregue, entregue ganha de cancelado
		{"entregue mas na fila", store.StatusTodo},
		{"cancelado depois de entregue", store.StatusDone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.in))
		})
	}
}

func TestNormalizeFlavor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  carne ", "Carne"},
		{"quejio", "Queijo"},
		{"QEIJO", "Queijo"},
		{"calabreza", "Calabresa"},
		{"Picanha  Premium", "Picanha Premium"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFlavor(tt.in))
	}
}
