package application

import (
	"log"
	"strings"

	"servidor-core/httpcore/domain"
)

// Dispatcher resolve a rota e executa o handler correspondente.
//
// Toda saída é uma Response bem formada: rota inexistente vira 404, método
// não registrado vira 405 com header Allow, e pânico de handler vira 500 —
// um handler nunca pode derrubar o loop da conexão.
type Dispatcher struct {
	Router domain.Router
}

func (d Dispatcher) Dispatch(req *domain.Request) domain.Response {
	if d.Router == nil {
		return domain.TextResponse(404, "not found\n")
	}
	res := d.Router.Resolve(req.Method, req.Path)
	switch res.Outcome {
	case domain.RouteNotFound:
		return domain.TextResponse(404, "not found\n")
	case domain.RouteMethodNotAllowed:
		resp := domain.TextResponse(405, "method not allowed\n")
		resp.Header.Set("Allow", joinMethods(res.Allow))
		return resp
	}
	return d.invoke(res.Handler, req, res.Params)
}

func (d Dispatcher) invoke(h domain.Handler, req *domain.Request, ps domain.Params) (resp domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("handler panic on %s %s: %v", req.Method, req.Path, r)
			resp = domain.TextResponse(500, "internal server error\n")
		}
	}()
	return h(req, ps)
}

func joinMethods(ms []domain.Method) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}
