// Package domain define contratos e tipos de domínio do núcleo HTTP:
// requisição/resposta, roteamento e admissão (rate limit e concorrência).
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar as regras
// do protocolo de detalhes de infraestrutura.
package domain
