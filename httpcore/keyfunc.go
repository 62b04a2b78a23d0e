package httpcore

import (
	"net"
	"strings"

	"servidor-core/httpcore/domain"
)

// KeyFunc extrai a identidade do cliente usada no rate limit.
type KeyFunc func(r *domain.Request) string

// DefaultKeyFunc monta a estratégia padrão de extração de chave:
// header dedicado (se configurado), depois X-Forwarded-For (se confiável,
// ex: atrás de um LB), e por fim o IP do RemoteAddr.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *domain.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if len(parts) > 0 {
					ip := strings.TrimSpace(parts[0])
					if ip != "" {
						return ip
					}
				}
			}
		}

		// fallback: RemoteAddr sem a porta
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}
