package infra

import (
	"errors"
	"testing"

	"servidor-core/httpcore/domain"
)

// handler de teste que só marca qual rota respondeu.
func tagged(tag string) domain.Handler {
	return func(_ *domain.Request, _ domain.Params) domain.Response {
		return domain.TextResponse(200, tag)
	}
}

func body(t *testing.T, res domain.Resolution) string {
	t.Helper()
	if res.Outcome != domain.RouteFound {
		t.Fatalf("expected RouteFound, got %v", res.Outcome)
	}
	return string(res.Handler(nil, res.Params).Body)
}

func TestTrie_LiteralBeatsParam(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/users/me", tagged("literal")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Add(domain.MethodGet, "/users/:id", tagged("param")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := body(t, tr.Resolve(domain.MethodGet, "/users/me")); got != "literal" {
		t.Fatalf("expected literal handler for /users/me, got %q", got)
	}

	res := tr.Resolve(domain.MethodGet, "/users/42")
	if got := body(t, res); got != "param" {
		t.Fatalf("expected param handler for /users/42, got %q", got)
	}
	if res.Params["id"] != "42" {
		t.Fatalf("expected id=42, got %q", res.Params["id"])
	}
}

func TestTrie_ParamBeatsWildcard(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/files/:name", tagged("param")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Add(domain.MethodGet, "/files/*rest", tagged("wild")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := body(t, tr.Resolve(domain.MethodGet, "/files/a")); got != "param" {
		t.Fatalf("expected param handler for one segment, got %q", got)
	}

	res := tr.Resolve(domain.MethodGet, "/files/a/b/c")
	if got := body(t, res); got != "wild" {
		t.Fatalf("expected wildcard handler for deep path, got %q", got)
	}
	if res.Params["rest"] != "a/b/c" {
		t.Fatalf("expected rest=a/b/c, got %q", res.Params["rest"])
	}
}

func TestTrie_BacktracksWhenLiteralDeadEnds(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/a/b/c", tagged("literal")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Add(domain.MethodGet, "/a/:x/d", tagged("param")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "/a/b/d": o ramo literal "b" existe mas não tem "d"; precisa voltar
	// e casar :x=b sem deixar captura órfã.
	res := tr.Resolve(domain.MethodGet, "/a/b/d")
	if got := body(t, res); got != "param" {
		t.Fatalf("expected param handler after backtrack, got %q", got)
	}
	if res.Params["x"] != "b" {
		t.Fatalf("expected x=b, got %q", res.Params["x"])
	}
	if len(res.Params) != 1 {
		t.Fatalf("expected exactly one param, got %v", res.Params)
	}
}

func TestTrie_DuplicateRouteFails(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/users/:id", tagged("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := tr.Add(domain.MethodGet, "/users/:id", tagged("b"))
	if !errors.Is(err, domain.ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute, got %v", err)
	}

	// mesmo nível com nome de parâmetro diferente também conflita
	err = tr.Add(domain.MethodGet, "/users/:uid/posts", tagged("c"))
	if !errors.Is(err, domain.ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute for conflicting param name, got %v", err)
	}
}

func TestTrie_MethodNotAllowedCarriesAllowSet(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodPost, "/things", tagged("post")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Add(domain.MethodGet, "/things", tagged("get")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := tr.Resolve(domain.MethodPut, "/things")
	if res.Outcome != domain.RouteMethodNotAllowed {
		t.Fatalf("expected RouteMethodNotAllowed, got %v", res.Outcome)
	}
	// ordenado para o header Allow ser estável
	if len(res.Allow) != 2 || res.Allow[0] != domain.MethodGet || res.Allow[1] != domain.MethodPost {
		t.Fatalf("expected allow set [GET POST], got %v", res.Allow)
	}
}

func TestTrie_NotFound(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/users/:id", tagged("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res := tr.Resolve(domain.MethodGet, "/missing"); res.Outcome != domain.RouteNotFound {
		t.Fatalf("expected RouteNotFound, got %v", res.Outcome)
	}
	// prefixo de rota registrada sem handler próprio também é 404
	if res := tr.Resolve(domain.MethodGet, "/users"); res.Outcome != domain.RouteNotFound {
		t.Fatalf("expected RouteNotFound for bare prefix, got %v", res.Outcome)
	}
}

func TestTrie_RootRoute(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/", tagged("root")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := body(t, tr.Resolve(domain.MethodGet, "/")); got != "root" {
		t.Fatalf("expected root handler, got %q", got)
	}
}

func TestTrie_TrailingSlashIsIgnored(t *testing.T) {
	tr := NewTrie()
	if err := tr.Add(domain.MethodGet, "/users/me", tagged("literal")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := body(t, tr.Resolve(domain.MethodGet, "/users/me/")); got != "literal" {
		t.Fatalf("expected match with trailing slash, got %q", got)
	}
}
