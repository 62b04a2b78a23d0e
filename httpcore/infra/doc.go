// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - Parser/WriteResponse: framing HTTP/1.1 direto no socket (sem net/http)
//   - Trie: roteador por segmentos com parâmetros nomeados e curinga
//   - WindowStore: janela deslizante por cliente
//   - BucketStore: token bucket por chave usando golang.org/x/time/rate
//   - CounterPool: limite de conexões ativas com contador atômico
package infra
