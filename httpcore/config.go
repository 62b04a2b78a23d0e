package httpcore

import (
	"net"
	"strconv"
	"time"
)

// Config são os parâmetros de execução do servidor. Vem pronta da camada de
// configuração (env/arquivo); o núcleo só consome.
type Config struct {
	Host string
	Port int

	// MaxConnections limita conexões simultaneamente ativas. <= 0 desativa.
	MaxConnections int

	// KeepAliveTimeout é quanto tempo uma conexão ociosa pode esperar pela
	// próxima requisição antes de ser fechada. Também funciona como timeout
	// de leitura de uma requisição em andamento.
	KeepAliveTimeout time.Duration

	// WriteTimeout limita a escrita de uma resposta. Zero desativa.
	WriteTimeout time.Duration

	// MaxRequestsPerConn fecha a conexão depois de N requisições atendidas
	// (reuso limitado). <= 0 desativa.
	MaxRequestsPerConn int

	// Limites do parser; zero usa os padrões da infra.
	MaxHeaderBytes int
	MaxBodyBytes   int64
}

func (c Config) listenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
