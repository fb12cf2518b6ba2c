package external

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/otaviopl/jn-restaurant/internal/store"
)

// Parser do texto livre da coluna de itens da planilha. Nunca falha: entrada
// sem forma reconhecível degrada para o melhor palpite em vez de descartar a
// linha. A cadeia de fallback, na ordem:
//
//	1. segmento "<nome> x <qtd>"  -> bebida por palavra-chave, senão catálogo
//	   de sabores (exato, depois substring nos dois sentidos), senão sabor
//	   ad hoc com o nome normalizado
//	2. sem "x <qtd>"              -> varredura do segmento contra cada sabor
//	   conhecido, removendo os trechos casados progressivamente
//	3. nada casou                  -> segmento inteiro vira um espetinho, qtd 1

var segmentSeparators = []string{" / ", "/", "\n", ","}

var beverageKeywords = []string{
	"coca", "guaraná", "guarana", "água", "agua", "suco",
	"refrigerante", "refri", "cerveja", "bebida",
}

var qtyPattern = regexp.MustCompile(`^(.+?)\s*[xX]\s*(\d+)$`)

// SplitSegments quebra o texto pelo primeiro separador encontrado, na ordem de
// precedência " / ", "/", quebra de linha, vírgula. Sem separador, o texto
// inteiro é um segmento só.
func SplitSegments(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := []string{text}
	for _, sep := range segmentSeparators {
		if strings.Contains(text, sep) {
			parts = strings.Split(text, sep)
			break
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseItems converte o texto livre de itens em OrderItems canônicos.
// flavors é o catálogo conhecido no momento do parse.
func ParseItems(text string, flavors []string) []store.OrderItem {
	var out []store.OrderItem
	for _, seg := range SplitSegments(text) {
		out = append(out, parseSegment(seg, flavors)...)
	}
	return out
}

func parseSegment(seg string, flavors []string) []store.OrderItem {
	if m := qtyPattern.FindStringSubmatch(seg); m != nil {
		name := strings.TrimSpace(m[1])
		qty, _ := strconv.Atoi(m[2])
		if qty < 1 {
			qty = 1
		}
		return []store.OrderItem{classify(name, qty, flavors)}
	}

	if items := scanFlavors(seg, flavors); len(items) > 0 {
		return items
	}

	// último recurso: segmento inteiro, um espetinho
	return []store.OrderItem{newSkewer(NormalizeFlavor(seg), 1)}
}

func classify(name string, qty int, flavors []string) store.OrderItem {
	if isBeverage(name) {
		return store.OrderItem{
			ID:       uuid.NewString(),
			Type:     store.ItemBeverage,
			Beverage: strings.Join(strings.Fields(name), " "),
			Qty:      qty,
		}
	}
	if flavor, ok := matchFlavor(name, flavors); ok {
		return newSkewer(flavor, qty)
	}
	return newSkewer(NormalizeFlavor(name), qty)
}

func isBeverage(name string) bool {
	folded := foldFlavor(name)
	for _, kw := range beverageKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// matchFlavor procura o nome no catálogo: igualdade normalizada primeiro,
// depois substring em qualquer direção. O primeiro sabor do catálogo vence.
func matchFlavor(name string, flavors []string) (string, bool) {
	folded := foldFlavor(NormalizeFlavor(name))
	for _, f := range flavors {
		if foldFlavor(f) == folded {
			return f, true
		}
	}
	for _, f := range flavors {
		ff := foldFlavor(f)
		if strings.Contains(folded, ff) || strings.Contains(ff, folded) {
			return f, true
		}
	}
	return "", false
}

// scanFlavors extrai zero ou mais ocorrências (sabor, qtd) do segmento,
// removendo cada trecho casado antes de procurar o próximo. A quantidade pode
// vir antes ("2 Carne") ou depois ("Carne 2", "Carne x 2"); ausente vale 1.
func scanFlavors(seg string, flavors []string) []store.OrderItem {
	var out []store.OrderItem
	rest := seg
	for _, f := range flavors {
		re := regexp.MustCompile(`(?i)(?:(\d+)\s*[xX]?\s*)?` + regexp.QuoteMeta(f) + `(?:\s*[xX]?\s*(\d+))?`)
		for {
			m := re.FindStringSubmatchIndex(rest)
			if m == nil {
				break
			}
			qty := 1
			if n := submatch(rest, m, 1); n != "" {
				qty, _ = strconv.Atoi(n)
			} else if n := submatch(rest, m, 2); n != "" {
				qty, _ = strconv.Atoi(n)
			}
			if qty < 1 {
				qty = 1
			}
			out = append(out, newSkewer(f, qty))
			rest = rest[:m[0]] + rest[m[1]:]
		}
	}
	return out
}

func submatch(s string, idx []int, n int) string {
	if idx[2*n] < 0 {
		return ""
	}
	return s[idx[2*n]:idx[2*n+1]]
}

func newSkewer(flavor string, qty int) store.OrderItem {
	return store.OrderItem{
		ID:     uuid.NewString(),
		Type:   store.ItemSkewer,
		Flavor: flavor,
		Qty:    qty,
	}
}

// Vocabulário de situação da planilha, em ordem de prioridade de checagem.
var (
	todoKeywords     = []string{"a fazer", "fila", "pendente", "aguard", "todo"}
	doneKeywords     = []string{"entregue", "conclu", "finaliz", "pronto", "done"}
	canceledKeywords = []string{"cancel"}
)

// ClassifyStatus mapeia o texto livre de situação para um estado do kanban por
// contenção de palavra-chave, com em_preparo/in_progress como padrão.
func ClassifyStatus(raw string) store.Status {
	folded := strings.ToLower(strings.TrimSpace(raw))
	for _, kw := range todoKeywords {
		if strings.Contains(folded, kw) {
			return store.StatusTodo
		}
	}
	for _, kw := range doneKeywords {
		if strings.Contains(folded, kw) {
			return store.StatusDone
		}
	}
	for _, kw := range canceledKeywords {
		if strings.Contains(folded, kw) {
			return store.StatusCanceled
		}
	}
	return store.StatusInProgress
}
