package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// New abre um cliente best-effort: o cache é opcional e falhas dele nunca
// derrubam um fetch. addr vazio devolve nil (cache desligado).
func New(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	r := redis.NewClient(&redis.Options{Addr: addr})
	return r.WithTimeout(2 * time.Second)
}
