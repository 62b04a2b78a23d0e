package infra

import (
	"bufio"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"servidor-core/httpcore/domain"
)

const (
	defaultMaxHeaderBytes = 8 << 10
	defaultMaxBodyBytes   = 1 << 20
)

// Parser lê uma requisição HTTP/1.x por vez de um stream bufferizado.
//
// Contrato: consome exatamente os bytes de uma requisição, deixando o
// reader posicionado para a próxima (keep-alive). Transfer-Encoding:
// chunked não é suportado e resulta em ErrUnsupportedEncoding.
type Parser struct {
	// MaxHeaderBytes limita o tamanho acumulado do request line + headers.
	// Zero usa o padrão de 8 KiB.
	MaxHeaderBytes int
	// MaxBodyBytes limita o Content-Length aceito. Zero usa o padrão de 1 MiB.
	MaxBodyBytes int64
}

// ReadRequest lê e estrutura a próxima requisição do stream.
//
// Retorna io.EOF quando o cliente fecha (ou fica ocioso até o deadline)
// antes do primeiro byte de uma requisição — fechamento limpo, sem resposta.
// Qualquer interrupção depois disso vira ErrIncompleteRequest.
func (p Parser) ReadRequest(br *bufio.Reader, remoteAddr string) (*domain.Request, error) {
	// nenhum byte ainda? então EOF/timeout aqui é só o cliente indo embora.
	if _, err := br.Peek(1); err != nil {
		return nil, io.EOF
	}

	remaining := p.MaxHeaderBytes
	if remaining <= 0 {
		remaining = defaultMaxHeaderBytes
	}

	line, err := readLine(br, &remaining)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || parts[1] == "" {
		return nil, domain.ErrMalformedRequest
	}
	method, ok := domain.ParseMethod(parts[0])
	if !ok {
		return nil, domain.ErrMalformedRequest
	}
	proto := parts[2]
	if proto != "HTTP/1.0" && proto != "HTTP/1.1" {
		return nil, domain.ErrMalformedRequest
	}
	path, query, err := parseTarget(parts[1])
	if err != nil {
		return nil, err
	}

	hdr, err := readHeaders(br, &remaining)
	if err != nil {
		return nil, err
	}

	if strings.Contains(strings.ToLower(hdr.Get("Transfer-Encoding")), "chunked") {
		return nil, domain.ErrUnsupportedEncoding
	}

	body, err := p.readBody(br, hdr)
	if err != nil {
		return nil, err
	}

	return &domain.Request{
		Method:     method,
		Path:       path,
		Query:      query,
		Header:     hdr,
		Body:       body,
		Proto:      proto,
		RemoteAddr: remoteAddr,
	}, nil
}

func (p Parser) readBody(br *bufio.Reader, hdr domain.Header) ([]byte, error) {
	v := strings.TrimSpace(hdr.Get("Content-Length"))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, domain.ErrMalformedRequest
	}
	max := p.MaxBodyBytes
	if max <= 0 {
		max = defaultMaxBodyBytes
	}
	if n > max {
		return nil, domain.ErrBodyTooLarge
	}
	if n == 0 {
		return nil, nil
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, domain.ErrIncompleteRequest
	}
	return body, nil
}

func readHeaders(br *bufio.Reader, remaining *int) (domain.Header, error) {
	h := domain.Header{}
	for {
		line, err := readLine(br, remaining)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return h, nil
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, domain.ErrMalformedRequest
		}
		k := strings.TrimSpace(line[:i])
		v := strings.TrimSpace(line[i+1:])
		if k == "" {
			return nil, domain.ErrMalformedRequest
		}
		h.Add(k, v)
	}
}

// readLine lê até "\n", descartando "\r", debitando do orçamento de header.
func readLine(br *bufio.Reader, remaining *int) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", domain.ErrIncompleteRequest
		}
		*remaining--
		if *remaining < 0 {
			return "", domain.ErrHeaderTooLarge
		}
		if b == '\n' {
			return sb.String(), nil
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
	}
}

// parseTarget separa path e query no primeiro "?" e decodifica ambos.
// Chave de query duplicada: vale a última.
func parseTarget(target string) (string, map[string]string, error) {
	rawPath := target
	rawQuery := ""
	if i := strings.IndexByte(target, '?'); i >= 0 {
		rawPath, rawQuery = target[:i], target[i+1:]
	}
	if !strings.HasPrefix(rawPath, "/") {
		return "", nil, domain.ErrMalformedRequest
	}
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", nil, domain.ErrMalformedRequest
	}

	query := map[string]string{}
	if rawQuery != "" {
		for _, pair := range strings.Split(rawQuery, "&") {
			if pair == "" {
				continue
			}
			k, v, _ := strings.Cut(pair, "=")
			k, err := url.QueryUnescape(k)
			if err != nil {
				return "", nil, domain.ErrMalformedRequest
			}
			v, err = url.QueryUnescape(v)
			if err != nil {
				return "", nil, domain.ErrMalformedRequest
			}
			query[k] = v
		}
	}
	return path, query, nil
}

// WriteRequest serializa uma requisição no formato de wire, o inverso de
// ReadRequest. Usado pelos testes de round-trip e por clientes simples.
func WriteRequest(w io.Writer, r *domain.Request) error {
	u := url.URL{Path: r.Path}
	target := u.EscapedPath()
	if len(r.Query) > 0 {
		vals := url.Values{}
		for k, v := range r.Query {
			vals.Set(k, v)
		}
		target += "?" + vals.Encode()
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(string(r.Method) + " " + target + " " + r.Proto + "\r\n"); err != nil {
		return err
	}
	for k, vv := range r.Header {
		if k == "Content-Length" {
			continue
		}
		for _, v := range vv {
			if _, err := bw.WriteString(k + ": " + v + "\r\n"); err != nil {
				return err
			}
		}
	}
	if len(r.Body) > 0 {
		if _, err := bw.WriteString("Content-Length: " + strconv.Itoa(len(r.Body)) + "\r\n"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if _, err := bw.Write(r.Body); err != nil {
		return err
	}
	return bw.Flush()
}

// IsClientGone informa se o erro indica que não há requisição para responder
// (cliente fechou ou ficou ocioso). Nestes casos o supervisor fecha em
// silêncio, sem tentar um 400.
func IsClientGone(err error) bool {
	return errors.Is(err, io.EOF)
}
