package infra

import (
	"sync"
	"testing"
)

func TestCounterPool_RoundTripInvariant(t *testing.T) {
	p := NewCounterPool(8)

	for i := 0; i < 100; i++ {
		release, ok := p.TryAcquire()
		if !ok {
			t.Fatalf("expected acquire %d to succeed", i)
		}
		release()
	}
	if got := p.Active(); got != 0 {
		t.Fatalf("expected count back to 0, got %d", got)
	}
}

func TestCounterPool_RejectsAtMax(t *testing.T) {
	p := NewCounterPool(2)

	r1, ok := p.TryAcquire()
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	r2, ok := p.TryAcquire()
	if !ok {
		t.Fatalf("expected second acquire to succeed")
	}

	if _, ok := p.TryAcquire(); ok {
		t.Fatalf("expected acquire beyond max to fail")
	}
	// a tentativa recusada não pode vazar contagem
	if got := p.Active(); got != 2 {
		t.Fatalf("expected count 2 after rejected acquire, got %d", got)
	}

	r1()
	if _, ok := p.TryAcquire(); !ok {
		t.Fatalf("expected acquire to succeed after release")
	}
	r2()
}

func TestCounterPool_ReleaseIsIdempotent(t *testing.T) {
	p := NewCounterPool(1)

	release, ok := p.TryAcquire()
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}
	release()
	release() // segunda chamada não pode deixar a contagem negativa

	if got := p.Active(); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
	if _, ok := p.TryAcquire(); !ok {
		t.Fatalf("expected acquire to succeed after double release")
	}
}

func TestCounterPool_UnlimitedWhenMaxIsZero(t *testing.T) {
	p := NewCounterPool(0)
	for i := 0; i < 50; i++ {
		if _, ok := p.TryAcquire(); !ok {
			t.Fatalf("expected unlimited pool to always acquire")
		}
	}
}

func TestCounterPool_ConcurrentPairsReturnToZero(t *testing.T) {
	p := NewCounterPool(16)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				release, ok := p.TryAcquire()
				if !ok {
					continue
				}
				if got := p.Active(); got < 1 || got > 16 {
					t.Errorf("count out of bounds: %d", got)
				}
				release()
			}
		}()
	}
	wg.Wait()

	if got := p.Active(); got != 0 {
		t.Fatalf("expected count back to 0, got %d", got)
	}
}
