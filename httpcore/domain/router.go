package domain

// Params são os parâmetros de path extraídos na resolução da rota
// (ex: rota "/greet/:name" com path "/greet/Alice" => {"name": "Alice"}).
type Params map[string]string

// Handler é a capability registrada por rota: recebe a requisição e os
// parâmetros de path e devolve a resposta. O roteador a guarda de forma
// opaca; qualquer função com esta assinatura serve.
type Handler func(*Request, Params) Response

// RouteOutcome classifica o resultado de Resolve.
type RouteOutcome int

const (
	RouteFound RouteOutcome = iota
	RouteNotFound
	RouteMethodNotAllowed
)

// Resolution é o resultado de Resolve.
//
// Handler/Params só são válidos quando Outcome == RouteFound.
// Allow só é preenchido quando Outcome == RouteMethodNotAllowed, com o
// conjunto de métodos registrados para o path (para o header Allow do 405).
type Resolution struct {
	Outcome RouteOutcome
	Handler Handler
	Params  Params
	Allow   []Method
}

// Router registra rotas e resolve (método, path) em um handler.
//
// Contrato de concorrência: Add só é chamado antes do servidor começar a
// aceitar conexões; Resolve é somente-leitura e pode ser chamado de várias
// goroutines sem sincronização extra.
type Router interface {
	Add(m Method, pattern string, h Handler) error
	Resolve(m Method, path string) Resolution
}
