// Package application contém os casos de uso do núcleo: decisão de admissão
// (allow/deny + retry-after) e despacho de requisições para handlers.
//
// Ele depende apenas do pacote domain e não conhece sockets nem o framing
// HTTP. Ex.: AdmissionService.Decide(key) retorna uma Decision;
// Dispatcher.Dispatch(req) retorna a Response final, inclusive nos caminhos
// 404/405/500.
package application
