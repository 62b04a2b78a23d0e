package infra

import (
	"sync"
	"sync/atomic"
)

// CounterPool implementa domain.SlotPool com um contador atômico.
//
// Diferente de um semáforo com espera, TryAcquire nunca bloqueia: conexão
// sem vaga é recusada na hora, antes de ler um único byte do socket.
// Invariante: 0 <= Active() <= max.
type CounterPool struct {
	max   int64
	count atomic.Int64
}

// NewCounterPool cria um pool com `max` vagas. max <= 0 desativa o limite.
func NewCounterPool(max int) *CounterPool {
	return &CounterPool{max: int64(max)}
}

func (p *CounterPool) TryAcquire() (func(), bool) {
	if p.max <= 0 {
		return func() {}, true
	}
	if p.count.Add(1) > p.max {
		p.count.Add(-1)
		return nil, false
	}
	// release idempotente: o supervisor chama via defer, mas um caminho de
	// erro pode já ter liberado explicitamente.
	var once sync.Once
	return func() {
		once.Do(func() { p.count.Add(-1) })
	}, true
}

// Active devolve o número de vagas ocupadas no momento (para logs/estatísticas).
func (p *CounterPool) Active() int64 {
	return p.count.Load()
}
