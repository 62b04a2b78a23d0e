package domain

import "encoding/json"

// Response é a resposta produzida por um handler (ou pelo próprio núcleo,
// nos caminhos de erro). Imutável depois de retornada.
type Response struct {
	StatusCode int
	Header     Header
	Body       []byte
}

// NewResponse cria uma resposta vazia com o status informado.
func NewResponse(status int) Response {
	return Response{StatusCode: status, Header: Header{}}
}

// TextResponse cria uma resposta text/plain.
func TextResponse(status int, body string) Response {
	r := NewResponse(status)
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	r.Body = []byte(body)
	return r
}

// JSONResponse serializa v como corpo application/json.
// Erro de marshal vira 500 (não deve acontecer com tipos bem comportados).
func JSONResponse(status int, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		return TextResponse(500, "internal server error\n")
	}
	r := NewResponse(status)
	r.Header.Set("Content-Type", "application/json")
	r.Body = b
	return r
}
