package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
)

// Dispara uma rajada de requisições na mesma conexão para validar na mão o
// rate limit e o keep-alive do servidor (espera-se 200 virando 429).
func main() {
	addr := "127.0.0.1:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}
	n := 10

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Printf("Erro ao conectar em %s: %s\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	br := bufio.NewReader(conn)
	for i := 1; i <= n; i++ {
		req := "GET /healthz HTTP/1.1\r\nHost: " + addr + "\r\n\r\n"
		if _, err := conn.Write([]byte(req)); err != nil {
			fmt.Printf("Erro ao enviar a requisição %d: %s\n", i, err)
			return
		}
		status, err := br.ReadString('\n')
		if err != nil {
			fmt.Printf("Erro ao ler a resposta %d: %s\n", i, err)
			return
		}
		fmt.Printf("%2d: %s\n", i, strings.TrimSpace(status))

		// pula headers e corpo (Content-Length)
		var length int
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
				fmt.Sscanf(v, "%d", &length)
			}
		}
		if length > 0 {
			if _, err := br.Discard(length); err != nil {
				return
			}
		}
	}
}
