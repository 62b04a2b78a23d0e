package application

import (
	"time"

	"servidor-core/httpcore/domain"
)

// AdmissionService concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada de sockets nem headers, apenas retorna uma decisão.
type AdmissionService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s AdmissionService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}
	if lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}
