package domain

import "errors"

// Erros do parser e do registro de rotas. Todos os erros por requisição são
// recuperados no supervisor de conexão e viram uma resposta HTTP;
// ErrDuplicateRoute é o único fatal, detectado no startup.
var (
	ErrMalformedRequest    = errors.New("servidor: malformed request")
	ErrHeaderTooLarge      = errors.New("servidor: header too large")
	ErrBodyTooLarge        = errors.New("servidor: body too large")
	ErrIncompleteRequest   = errors.New("servidor: incomplete request")
	ErrUnsupportedEncoding = errors.New("servidor: unsupported transfer encoding")
	ErrDuplicateRoute      = errors.New("servidor: duplicate route")
)
