package infra

import (
	"fmt"
	"sort"
	"strings"

	"servidor-core/httpcore/domain"
)

// Trie é um roteador em árvore: cada segmento do path corresponde a um
// nível. A resolução custa O(número de segmentos), independente da
// quantidade de rotas registradas.
//
// Padrões aceitos: segmentos literais, ":nome" (parâmetro) e um "*" ou
// "*nome" final (curinga, captura o resto do path). Precedência na mesma
// profundidade: literal > parâmetro > curinga, com backtracking.
//
// Contrato de concorrência: Add acontece todo no startup; depois disso a
// árvore é somente-leitura e Resolve dispensa locks.
type Trie struct {
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	param    *trieNode
	wildcard *trieNode
	// name é o nome de captura quando o nó é parâmetro ou curinga.
	name     string
	handlers map[domain.Method]domain.Handler
}

func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

func newTrieNode() *trieNode {
	return &trieNode{children: map[string]*trieNode{}}
}

// Add registra um handler para método+padrão.
// Registrar o mesmo par duas vezes é erro fatal de programação
// (ErrDuplicateRoute); conflito de nome de parâmetro no mesmo nível também.
func (t *Trie) Add(m domain.Method, pattern string, h domain.Handler) error {
	if h == nil {
		return fmt.Errorf("route %s %s: nil handler", m, pattern)
	}
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("route %s %s: pattern must start with \"/\"", m, pattern)
	}
	segs := splitPath(pattern)
	n := t.root
	for i, seg := range segs {
		switch {
		case strings.HasPrefix(seg, "*"):
			if i != len(segs)-1 {
				return fmt.Errorf("route %s %s: wildcard must be the last segment", m, pattern)
			}
			name := seg[1:]
			if name == "" {
				name = "*"
			}
			if n.wildcard == nil {
				n.wildcard = newTrieNode()
				n.wildcard.name = name
			} else if n.wildcard.name != name {
				return fmt.Errorf("%w: wildcard *%s conflicts with *%s", domain.ErrDuplicateRoute, name, n.wildcard.name)
			}
			n = n.wildcard
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return fmt.Errorf("route %s %s: parameter segment needs a name", m, pattern)
			}
			if n.param == nil {
				n.param = newTrieNode()
				n.param.name = name
			} else if n.param.name != name {
				return fmt.Errorf("%w: parameter :%s conflicts with :%s", domain.ErrDuplicateRoute, name, n.param.name)
			}
			n = n.param
		default:
			c, ok := n.children[seg]
			if !ok {
				c = newTrieNode()
				n.children[seg] = c
			}
			n = c
		}
	}
	if n.handlers == nil {
		n.handlers = map[domain.Method]domain.Handler{}
	}
	if _, exists := n.handlers[m]; exists {
		return fmt.Errorf("%w: %s %s", domain.ErrDuplicateRoute, m, pattern)
	}
	n.handlers[m] = h
	return nil
}

// Resolve percorre a árvore segmento a segmento.
//
// Path que casa com um padrão mas sob método não registrado devolve
// RouteMethodNotAllowed com o conjunto Allow ordenado — nunca um 404 genérico.
func (t *Trie) Resolve(m domain.Method, path string) domain.Resolution {
	params := domain.Params{}
	n := t.root.match(splitPath(path), params)
	if n == nil {
		return domain.Resolution{Outcome: domain.RouteNotFound}
	}
	h, ok := n.handlers[m]
	if !ok {
		return domain.Resolution{Outcome: domain.RouteMethodNotAllowed, Allow: allowedMethods(n.handlers)}
	}
	return domain.Resolution{Outcome: domain.RouteFound, Handler: h, Params: params}
}

// match devolve o nó terminal com handlers, ou nil. Os parâmetros são
// gravados só no caminho vencedor (no desempilhamento), então um ramo
// literal que falhou não deixa captura órfã.
func (n *trieNode) match(segs []string, params domain.Params) *trieNode {
	if len(segs) == 0 {
		if len(n.handlers) > 0 {
			return n
		}
		return nil
	}
	seg := segs[0]
	if c, ok := n.children[seg]; ok {
		if found := c.match(segs[1:], params); found != nil {
			return found
		}
	}
	if n.param != nil {
		if found := n.param.match(segs[1:], params); found != nil {
			params[n.param.name] = seg
			return found
		}
	}
	if n.wildcard != nil && len(n.wildcard.handlers) > 0 {
		params[n.wildcard.name] = strings.Join(segs, "/")
		return n.wildcard
	}
	return nil
}

func allowedMethods(handlers map[domain.Method]domain.Handler) []domain.Method {
	out := make([]domain.Method, 0, len(handlers))
	for m := range handlers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// splitPath quebra em segmentos, ignorando barras no começo/fim
// ("/users/me/" => ["users", "me"]; "/" => []).
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
