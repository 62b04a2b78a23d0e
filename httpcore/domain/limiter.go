package domain

import "time"

type Key string

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// Observação: a implementação pode ser janela deslizante, token-bucket, etc.
// A camada de infra pode usar libs como golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP do cliente).
// A implementação pode manter cache, TTL, etc.
type LimiterStore interface {
	Get(Key) Limiter
}

// SlotPool representa um recurso com capacidade finita (conexões ativas).
//
// TryAcquire nunca bloqueia: ou devolve uma vaga imediatamente, ou falha.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente
// uma vez, inclusive em caminhos de erro.
type SlotPool interface {
	TryAcquire() (release func(), ok bool)
}

// Decision é o resultado de uma decisão de admissão.
type Decision struct {
	Allowed bool
	// RetryAfter é o valor sugerido para o header Retry-After ao bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
