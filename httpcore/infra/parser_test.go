package infra

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"servidor-core/httpcore/domain"
)

func newReader(raw string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(raw))
}

func TestParser_ReadRequest_Basic(t *testing.T) {
	raw := "GET /users/me?x=1&x=2&y=a%20b HTTP/1.1\r\nHost: example\r\nx-test: v\r\n\r\n"

	req, err := Parser{}.ReadRequest(newReader(raw), "10.0.0.1:1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != domain.MethodGet {
		t.Fatalf("expected GET, got %s", req.Method)
	}
	if req.Path != "/users/me" {
		t.Fatalf("expected path /users/me, got %q", req.Path)
	}
	// chave duplicada: vale a última
	if req.Query["x"] != "2" {
		t.Fatalf("expected x=2 (last wins), got %q", req.Query["x"])
	}
	if req.Query["y"] != "a b" {
		t.Fatalf("expected y=%q, got %q", "a b", req.Query["y"])
	}
	// headers são case-insensitive
	if req.Header.Get("X-Test") != "v" {
		t.Fatalf("expected X-Test=v, got %q", req.Header.Get("X-Test"))
	}
	if len(req.Body) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(req.Body))
	}
	if req.Proto != "HTTP/1.1" {
		t.Fatalf("expected HTTP/1.1, got %q", req.Proto)
	}
	if req.RemoteAddr != "10.0.0.1:1234" {
		t.Fatalf("expected remote addr, got %q", req.RemoteAddr)
	}
}

func TestParser_ReadRequest_PercentDecodesPath(t *testing.T) {
	raw := "GET /greet/Jo%C3%A3o HTTP/1.1\r\nHost: example\r\n\r\n"

	req, err := Parser{}.ReadRequest(newReader(raw), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Path != "/greet/João" {
		t.Fatalf("expected decoded path, got %q", req.Path)
	}
}

func TestParser_ReadRequest_BodyAndStreamPosition(t *testing.T) {
	// duas requisições no mesmo stream: o parser deve consumir exatamente
	// os bytes da primeira e deixar o reader pronto para a segunda.
	raw := "POST /echo HTTP/1.1\r\nHost: example\r\nContent-Length: 5\r\n\r\nhello" +
		"GET /next HTTP/1.1\r\nHost: example\r\n\r\n"
	br := newReader(raw)

	first, err := Parser{}.ReadRequest(br, "")
	if err != nil {
		t.Fatalf("unexpected error on first request: %v", err)
	}
	if string(first.Body) != "hello" {
		t.Fatalf("expected body %q, got %q", "hello", first.Body)
	}

	second, err := Parser{}.ReadRequest(br, "")
	if err != nil {
		t.Fatalf("unexpected error on second request: %v", err)
	}
	if second.Path != "/next" {
		t.Fatalf("expected /next, got %q", second.Path)
	}
}

func TestParser_ReadRequest_RejectsChunked(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nHost: example\r\nTransfer-Encoding: chunked\r\n\r\n"

	_, err := Parser{}.ReadRequest(newReader(raw), "")
	if !errors.Is(err, domain.ErrUnsupportedEncoding) {
		t.Fatalf("expected ErrUnsupportedEncoding, got %v", err)
	}
}

func TestParser_ReadRequest_HeaderTooLarge(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 256) + "\r\n\r\n"

	_, err := Parser{MaxHeaderBytes: 64}.ReadRequest(newReader(raw), "")
	if !errors.Is(err, domain.ErrHeaderTooLarge) {
		t.Fatalf("expected ErrHeaderTooLarge, got %v", err)
	}
}

func TestParser_ReadRequest_BodyTooLarge(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789"

	_, err := Parser{MaxBodyBytes: 4}.ReadRequest(newReader(raw), "")
	if !errors.Is(err, domain.ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestParser_ReadRequest_MalformedInputs(t *testing.T) {
	cases := map[string]string{
		"garbage line":            "GARBAGE\r\n\r\n",
		"unknown method":          "BREW / HTTP/1.1\r\n\r\n",
		"bad proto":               "GET / SMTP/1.0\r\n\r\n",
		"relative target":         "GET users HTTP/1.1\r\n\r\n",
		"bad escape in path":      "GET /a%zz HTTP/1.1\r\n\r\n",
		"header sem dois pontos":  "GET / HTTP/1.1\r\nnope\r\n\r\n",
		"negative content length": "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
	}
	for name, raw := range cases {
		if _, err := (Parser{}).ReadRequest(newReader(raw), ""); !errors.Is(err, domain.ErrMalformedRequest) {
			t.Fatalf("%s: expected ErrMalformedRequest, got %v", name, err)
		}
	}
}

func TestParser_ReadRequest_CleanCloseIsEOF(t *testing.T) {
	_, err := Parser{}.ReadRequest(newReader(""), "")
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}
	if !IsClientGone(err) {
		t.Fatalf("expected IsClientGone for clean close")
	}
}

func TestParser_ReadRequest_TruncatedIsIncomplete(t *testing.T) {
	// stream acabou no meio dos headers
	_, err := Parser{}.ReadRequest(newReader("GET / HTTP/1.1\r\nHost: x"), "")
	if !errors.Is(err, domain.ErrIncompleteRequest) {
		t.Fatalf("expected ErrIncompleteRequest, got %v", err)
	}

	// corpo menor que o Content-Length anunciado
	_, err = Parser{}.ReadRequest(newReader("POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc"), "")
	if !errors.Is(err, domain.ErrIncompleteRequest) {
		t.Fatalf("expected ErrIncompleteRequest on short body, got %v", err)
	}
}

func TestWriteRequest_RoundTrip(t *testing.T) {
	orig := &domain.Request{
		Method: domain.MethodPost,
		Path:   "/greet/João",
		Query:  map[string]string{"verbose": "1", "tag": "a b"},
		Header: domain.Header{},
		Body:   []byte("payload"),
		Proto:  "HTTP/1.1",
	}
	orig.Header.Set("Host", "example")
	orig.Header.Set("X-Trace", "abc123")

	var buf bytes.Buffer
	if err := WriteRequest(&buf, orig); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	got, err := Parser{}.ReadRequest(bufio.NewReader(&buf), "")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got.Method != orig.Method {
		t.Fatalf("method mismatch: %s vs %s", got.Method, orig.Method)
	}
	if got.Path != orig.Path {
		t.Fatalf("path mismatch: %q vs %q", got.Path, orig.Path)
	}
	if got.Query["verbose"] != "1" || got.Query["tag"] != "a b" {
		t.Fatalf("query mismatch: %v", got.Query)
	}
	if got.Header.Get("Host") != "example" || got.Header.Get("X-Trace") != "abc123" {
		t.Fatalf("header mismatch: %v", got.Header)
	}
	if !bytes.Equal(got.Body, orig.Body) {
		t.Fatalf("body mismatch: %q vs %q", got.Body, orig.Body)
	}
}
