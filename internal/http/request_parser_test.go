package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func parserFor(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(body))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func TestParseJSONBody(t *testing.T) {
	p := parserFor(t, `{"amount": "12.50", "category": " Food ", "type": "expense"}`)

	if got := p.Get("amount"); got != "12.50" {
		t.Fatalf("amount=%q", got)
	}
	if got := p.Get("category"); got != "Food" {
		t.Fatalf("category should be trimmed, got %q", got)
	}
	if p.Get("missing") != "" {
		t.Fatal("missing key should be empty")
	}
	if p.Has("missing") {
		t.Fatal("missing key should not be present")
	}
	if !p.Has("amount") {
		t.Fatal("amount should be present")
	}
}

func TestParseJSONNumbers(t *testing.T) {
	p := parserFor(t, `{"amount": 150, "ratio": 0.5}`)

	if got := p.Get("amount"); got != "150" {
		t.Fatalf("amount=%q", got)
	}
	if got := p.Get("ratio"); got != "0.5" {
		t.Fatalf("ratio=%q", got)
	}
}

func TestParseFormBody(t *testing.T) {
	p := parserFor(t, "amount=9.99&category=Food")

	if got := p.Get("amount"); got != "9.99" {
		t.Fatalf("amount=%q", got)
	}
	if got := p.Get("category"); got != "Food" {
		t.Fatalf("category=%q", got)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(`{"amount": `))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b  "); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestEmptyBody(t *testing.T) {
	p := parserFor(t, "")
	if p.Get("anything") != "" {
		t.Fatal("empty body should yield empty values")
	}
}
