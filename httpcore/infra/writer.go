package infra

import (
	"bufio"
	"strconv"
	"strings"

	"servidor-core/httpcore/domain"
)

// WriteResponse serializa uma resposta HTTP/1.1 completa no writer.
//
// Content-Length é sempre definido (não há chunked), e o header Connection
// reflete a decisão de keep-alive do supervisor. Para HEAD e para status sem
// corpo (204/304) só os headers são escritos.
func WriteResponse(bw *bufio.Writer, resp domain.Response, keepAlive, headOnly bool) error {
	status := resp.StatusCode
	if status == 0 {
		status = 200
	}
	if _, err := bw.WriteString("HTTP/1.1 " + strconv.Itoa(status) + " " + reasonPhrase(status) + "\r\n"); err != nil {
		return err
	}
	body := resp.Body
	if headOnly || status == 204 || status == 304 {
		body = nil
	}
	if _, err := bw.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n"); err != nil {
		return err
	}
	for k, vv := range resp.Header {
		if k == "Connection" || k == "Content-Length" {
			continue
		}
		for _, v := range vv {
			if _, err := bw.WriteString(k + ": " + sanitizeHeaderValue(v) + "\r\n"); err != nil {
				return err
			}
		}
	}
	conn := "close"
	if keepAlive {
		conn = "keep-alive"
	}
	if _, err := bw.WriteString("Connection: " + conn + "\r\n\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := bw.Write(body); err != nil {
			return err
		}
	}
	return nil
}

func reasonPhrase(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 429:
		return "Too Many Requests"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	default:
		return "Status"
	}
}

// sanitizeHeaderValue remove CR/LF e controles de um valor de header
// (valores vêm de handlers; não podem quebrar o framing).
func sanitizeHeaderValue(v string) string {
	clean := true
	for i := 0; i < len(v); i++ {
		if c := v[i]; c == '\r' || c == '\n' || c == 0x7f || (c < 0x20 && c != '\t') {
			clean = false
			break
		}
	}
	if clean {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
