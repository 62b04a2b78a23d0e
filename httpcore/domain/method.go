package domain

// Method é um método HTTP reconhecido pelo núcleo.
//
// O parser rejeita qualquer método fora deste conjunto; isso mantém o
// roteador e os handlers trabalhando sobre um enum fechado.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Methods lista os métodos suportados, em ordem estável.
func Methods() []Method {
	return []Method{
		MethodGet, MethodPost, MethodPut, MethodDelete,
		MethodPatch, MethodHead, MethodOptions,
	}
}

// ParseMethod valida o token do request line.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodGet, MethodPost, MethodPut, MethodDelete,
		MethodPatch, MethodHead, MethodOptions:
		return Method(s), true
	}
	return "", false
}

func (m Method) String() string { return string(m) }
