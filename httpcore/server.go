package httpcore

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"servidor-core/httpcore/application"
	"servidor-core/httpcore/domain"
	"servidor-core/httpcore/infra"
)

// ErrServerClosed é retornado por Serve/ListenAndServe depois de Shutdown.
var ErrServerClosed = errors.New("servidor: server closed")

// Options são as dependências injetadas no servidor.
//
// Router é obrigatório na prática (sem ele tudo vira 404). RateStore e Stats
// são opcionais: nil desativa o rate limit / a coleta de estatísticas.
type Options struct {
	Router     domain.Router
	RateStore  domain.LimiterStore
	Stats      domain.StatsStore
	RetryAfter time.Duration
	KeyFn      KeyFunc
}

// Server é a raiz de composição: accept loop + um supervisor por conexão.
type Server struct {
	cfg        Config
	keyFn      KeyFunc
	admission  application.AdmissionService
	dispatcher application.Dispatcher
	conns      domain.SlotPool
	stats      domain.StatsStore
	parser     infra.Parser

	mu         sync.Mutex
	ln         net.Listener
	inShutdown atomic.Bool
	wg         sync.WaitGroup
}

func NewServer(cfg Config, opts Options) *Server {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc("", false)
	}
	return &Server{
		cfg:        cfg,
		keyFn:      opts.KeyFn,
		admission:  application.AdmissionService{Store: opts.RateStore, RetryAfter: opts.RetryAfter},
		dispatcher: application.Dispatcher{Router: opts.Router},
		conns:      infra.NewCounterPool(cfg.MaxConnections),
		stats:      opts.Stats,
		parser:     infra.Parser{MaxHeaderBytes: cfg.MaxHeaderBytes, MaxBodyBytes: cfg.MaxBodyBytes},
	}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.listenAddr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve roda o accept loop até o listener fechar. Uma goroutine por conexão;
// o loop nunca bloqueia no ciclo de vida de uma conexão individual.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	defer ln.Close()

	for {
		c, err := ln.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		// admissão de conexão: sem vaga, fecha sem ler um único byte.
		release, ok := s.conns.TryAcquire()
		if !ok {
			_ = c.Close()
			continue
		}

		s.wg.Add(1)
		go s.serveConn(c, release)
	}
}

// Addr devolve o endereço real do listener (útil com porta 0 em testes).
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown fecha o listener e espera as conexões ativas terminarem,
// até o limite do contexto.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.mu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serveConn é o supervisor de uma conexão: parse -> admissão -> rota ->
// resposta -> decisão de keep-alive, em loop. A vaga no pool é devolvida em
// qualquer caminho de saída, inclusive pânico.
func (s *Server) serveConn(c net.Conn, release func()) {
	defer s.wg.Done()
	defer release()
	defer c.Close()

	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	remote := c.RemoteAddr().String()
	served := 0

	for {
		if s.cfg.KeepAliveTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.cfg.KeepAliveTimeout))
		}

		req, err := s.parser.ReadRequest(br, remote)
		if err != nil {
			if infra.IsClientGone(err) {
				return
			}
			// melhor esforço: responde 400 e fecha
			resp := domain.TextResponse(400, "bad request\n")
			_ = infra.WriteResponse(bw, resp, false, false)
			_ = bw.Flush()
			return
		}
		served++

		keep := wantKeepAlive(req)
		if s.cfg.MaxRequestsPerConn > 0 && served >= s.cfg.MaxRequestsPerConn {
			keep = false
		}

		key := domain.Key(s.keyFn(req))
		dec := s.admission.Decide(key)

		var resp domain.Response
		if dec.Allowed {
			resp = s.dispatcher.Dispatch(req)
		} else {
			// rate limit barra a requisição, não a conexão: keep-alive segue valendo.
			resp = domain.TextResponse(429, "too many requests\n")
			resp.Header.Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
		}

		if s.stats != nil {
			_ = s.stats.Record(context.Background(), domain.StatsEvent{
				Key:     key,
				Allowed: dec.Allowed,
				Method:  string(req.Method),
				Path:    req.Path,
				At:      time.Now(),
			})
		}

		if strings.EqualFold(resp.Header.Get("Connection"), "close") {
			keep = false
		}

		if s.cfg.WriteTimeout > 0 {
			_ = c.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		}
		if err := infra.WriteResponse(bw, resp, keep, req.Method == domain.MethodHead); err != nil {
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
		if !keep {
			return
		}
	}
}

// wantKeepAlive aplica a negociação padrão: HTTP/1.1 mantém a conexão salvo
// "Connection: close"; HTTP/1.0 só mantém com "Connection: keep-alive".
func wantKeepAlive(req *domain.Request) bool {
	v := strings.ToLower(strings.TrimSpace(req.Header.Get("Connection")))
	if req.Proto == "HTTP/1.1" {
		return v != "close"
	}
	return v == "keep-alive"
}

// MustAdd registra uma rota e aborta o processo em erro de registro.
// Rota duplicada é erro de programação; melhor falhar antes do listener abrir.
func MustAdd(r domain.Router, m domain.Method, pattern string, h domain.Handler) {
	if err := r.Add(m, pattern, h); err != nil {
		log.Fatalf("route registration: %v", err)
	}
}
