package redisx

import "time"

const (
	// Cache do corpo das respostas da fonte externa: cache:external:{endpoint}
	KeyExternalFetch = "cache:external:%s"

	// Variante de frescor curto usada pelo reload em tempo real
	KeyExternalRealtime = "cache:external:rt:%s"
)

var (
	// Janela padrão de frescor dos pulls (a planilha muda devagar).
	TTLExternalCache = 5 * time.Minute

	// Janela curta do endpoint de estoque em tempo real.
	TTLRealtime = 30 * time.Second
)
