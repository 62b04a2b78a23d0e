package domain

// Request é uma requisição HTTP já estruturada.
//
// É construída pelo parser e tratada como imutável dali em diante:
// roteador e handlers apenas leem.
type Request struct {
	Method Method

	// Path é o caminho normalizado (sempre começa com "/", já
	// percent-decodificado e sem a query string).
	Path string

	// Query são os parâmetros da query string. Chave duplicada: vale a última.
	Query map[string]string

	Header Header

	// Body é o corpo completo, possivelmente vazio. O parser já consumiu
	// exatamente os bytes de Content-Length do stream.
	Body []byte

	// Proto é "HTTP/1.0" ou "HTTP/1.1".
	Proto string

	// RemoteAddr é o endereço do cliente no formato "ip:porta".
	RemoteAddr string
}
