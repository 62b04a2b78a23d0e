package infra

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"servidor-core/httpcore/domain"
)

// WindowStore é um LimiterStore de janela deslizante: no máximo `max`
// requisições por chave dentro de qualquer janela de duração `window`.
//
// O mapa por cliente usa xsync.MapOf porque a cardinalidade de chaves (IPs)
// é alta e o acesso é quase todo de leitura; o estado de cada cliente fica
// atrás de um mutex próprio. Clientes ociosos são removidos pelo janitor —
// sem isso o mapa cresce sem limite, já que o espaço de IPs é aberto.
type WindowStore struct {
	clients *xsync.MapOf[string, *clientWindow]

	max    int
	window time.Duration

	idleTTL      time.Duration
	cleanupEvery time.Duration

	// now é injetável para testes determinísticos.
	now func() time.Time
}

type clientWindow struct {
	mu sync.Mutex
	// stamps mantém só timestamps dentro de [now-window, now].
	stamps   []time.Time
	lastSeen time.Time
}

type WindowOption func(*WindowStore)

func WithWindowIdleTTL(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.idleTTL = d }
}

func WithWindowCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

// WithClock troca a fonte de tempo (testes).
func WithClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func NewWindowStore(max int, window time.Duration, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		clients:      xsync.NewMapOf[string, *clientWindow](),
		max:          max,
		window:       window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) MaxRequests() int            { return s.max }
func (s *WindowStore) Window() time.Duration       { return s.window }
func (s *WindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Get implementa domain.LimiterStore. Chaves distintas são independentes.
func (s *WindowStore) Get(key domain.Key) domain.Limiter {
	cw, _ := s.clients.LoadOrCompute(string(key), func() *clientWindow {
		return &clientWindow{}
	})
	return windowLimiter{store: s, cw: cw}
}

type windowLimiter struct {
	store *WindowStore
	cw    *clientWindow
}

// Allow poda os timestamps fora da janela e, se ainda houver cota, registra
// o instante atual. Negar não consome cota.
func (l windowLimiter) Allow() bool {
	now := l.store.now()
	cutoff := now.Add(-l.store.window)

	l.cw.mu.Lock()
	defer l.cw.mu.Unlock()

	l.cw.lastSeen = now

	stamps := l.cw.stamps
	keep := 0
	for _, ts := range stamps {
		if ts.After(cutoff) {
			stamps[keep] = ts
			keep++
		}
	}
	l.cw.stamps = stamps[:keep]

	if len(l.cw.stamps) >= l.store.max {
		return false
	}
	l.cw.stamps = append(l.cw.stamps, now)
	return true
}

// Cleanup remove clientes sem atividade há mais que o idleTTL.
func (s *WindowStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)
	s.clients.Range(func(key string, cw *clientWindow) bool {
		cw.mu.Lock()
		idle := cw.lastSeen.Before(cutoff)
		cw.mu.Unlock()
		if idle {
			s.clients.Delete(key)
		}
		return true
	})
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
