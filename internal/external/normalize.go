package external

import "strings"

// Tabela fixa de typos/apelidos vindos da planilha. A chave é o nome em
// minúsculas já sem espaços extras.
var flavorAliases = map[string]string{
	"quejio":    "Queijo",
	"qeijo":     "Queijo",
	"queijo":    "Queijo",
	"carne":     "Carne",
	"frango":    "Frango",
	"calabresa": "Calabresa",
	"calabreza": "Calabresa",
}

// NormalizeFlavor limpa o nome de sabor vindo da fonte externa: trim, colapso
// de espaços e correção pela tabela de apelidos. Nome fora da tabela volta
// como veio (identidade de sabor é texto livre).
func NormalizeFlavor(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return ""
	}
	if canonical, ok := flavorAliases[strings.ToLower(s)]; ok {
		return canonical
	}
	return s
}

// foldFlavor é a chave de comparação usada no casamento com o catálogo.
func foldFlavor(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
