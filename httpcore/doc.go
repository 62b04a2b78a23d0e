// Package httpcore implementa um servidor HTTP/1.1 mínimo direto sobre TCP,
// com controle de admissão (limite de conexões e rate limit por cliente).
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (Request, Router, Limiter...)
//   - application: casos de uso (decisão allow/deny, despacho com recover) sem sockets
//   - infra: implementações concretas (parser de wire, trie, janela deslizante,
//     token bucket, contador atômico), detalhes de infraestrutura
//   - httpcore (este pacote): accept loop + supervisor de conexão + wiring/extração
//     de chave + tradução para status/headers
//
// Fluxo por conexão:
//
//  1. Accept; sem vaga no pool de conexões, fecha na hora sem ler um byte
//  2. Lê e estrutura uma requisição (parser)
//  3. Extrai a chave do cliente (IP/header/XFF) e consulta a admissão; bloqueado => 429
//  4. Resolve a rota na trie e executa o handler (404/405/500 nos desvios)
//  5. Escreve a resposta e decide keep-alive; repete ou fecha
//
// Variáveis de ambiente do binário (cmd/servidor) controlam o comportamento,
// como HOST, PORT, MAX_CONNECTIONS, RATE_MAX_REQUESTS e RATE_WINDOW.
package httpcore
