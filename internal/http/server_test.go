package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bilancio/internal/ledger/memory"
	"bilancio/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := services.NewLedgerService(memory.New(), nil)
	srv := NewServer(":0", svc)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func fieldMessages(t *testing.T, rr *httptest.ResponseRecorder, field string) []string {
	t.Helper()
	body := decodeBody(t, rr)
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("missing errors object in %q", rr.Body.String())
	}
	raw, ok := errs[field].([]any)
	if !ok {
		t.Fatalf("missing errors for field %q in %q", field, rr.Body.String())
	}
	var msgs []string
	for _, m := range raw {
		msgs = append(msgs, m.(string))
	}
	return msgs
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount": "150.00", "category": "Food", "description": "groceries", "type": "expense", "date": "2024-01-15"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["amount"] != "150.00" || body["category"] != "Food" || body["type"] != "expense" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["date"] != "2024-01-15" {
		t.Fatalf("expected date 2024-01-15, got %v", body["date"])
	}
	if body["id"].(float64) == 0 {
		t.Fatalf("expected assigned id, got %v", body["id"])
	}
}

func TestCreateTransactionNumericAmount(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount": 150.5, "category": "Food", "type": "expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["amount"] != "150.50" {
		t.Fatalf("expected amount 150.50, got %v", body["amount"])
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		payload string
		field   string
		message string
	}{
		{"missing amount", `{"category": "Food", "type": "expense"}`, "amount", "can't be blank"},
		{"bad amount", `{"amount": "abc", "category": "Food", "type": "expense"}`, "amount", "is not a number"},
		{"negative amount", `{"amount": "-5", "category": "Food", "type": "expense"}`, "amount", "is not a number"},
		{"missing category", `{"amount": "10", "type": "expense"}`, "category", "can't be blank"},
		{"missing type", `{"amount": "10", "category": "Food"}`, "type", "can't be blank"},
		{"unknown type", `{"amount": "10", "category": "Food", "type": "transfer"}`, "type", "is not included in the list"},
		{"bad date", `{"amount": "10", "category": "Food", "type": "expense", "date": "15/01/2024"}`, "date", "is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/transactions", tt.payload)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			msgs := fieldMessages(t, rr, tt.field)
			if len(msgs) == 0 || msgs[0] != tt.message {
				t.Fatalf("expected %q for %s, got %v", tt.message, tt.field, msgs)
			}
		})
	}
}

func TestCreateTransactionMalformedJSON(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/transactions", `{"amount": `)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateTransactionDefaultsDateToToday(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount": "10", "category": "Food", "type": "expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["date"] == "" {
		t.Fatal("expected a defaulted date")
	}
}

func TestListTransactionsInsertionOrder(t *testing.T) {
	srv := newTestServer(t)

	for _, cat := range []string{"A", "B", "C"} {
		rr := doJSON(t, srv, http.MethodPost, "/transactions",
			`{"amount": "1", "category": "`+cat+`", "type": "expense"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed %s: status=%d", cat, rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(list))
	}
	for i, cat := range []string{"A", "B", "C"} {
		if list[i]["category"] != cat {
			t.Fatalf("position %d: expected %s, got %v", i, cat, list[i]["category"])
		}
	}
}

func TestBudgetLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/budgets", `{"category": "Food", "amount": "1000.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["spent"] != "0.00" || body["remaining"] != "1000.00" || body["percentage_used"] != "0.00" {
		t.Fatalf("unexpected new budget: %v", body)
	}

	// An expense in the category moves spent and the derived fields.
	rr = doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount": "150.00", "category": "Food", "type": "expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expense status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/budgets", "")
	var budgets []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &budgets); err != nil {
		t.Fatalf("decode budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(budgets))
	}
	b := budgets[0]
	if b["spent"] != "150.00" || b["remaining"] != "850.00" || b["percentage_used"] != "15.00" {
		t.Fatalf("unexpected budget after expense: %v", b)
	}
}

func TestBudgetCategoryUniqueness(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/budgets", `{"category": "Food", "amount": "1000"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/budgets", `{"category": "Food", "amount": "500"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate status=%d body=%s", rr.Code, rr.Body.String())
	}
	msgs := fieldMessages(t, rr, "category")
	if len(msgs) == 0 || msgs[0] != "has already been taken" {
		t.Fatalf("expected uniqueness error, got %v", msgs)
	}
}

func TestBudgetZeroLimitPercentage(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/budgets", `{"category": "Misc", "amount": "0"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["percentage_used"] != "0.00" {
		t.Fatalf("zero limit must report 0.00, got %v", body["percentage_used"])
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/goals",
		`{"name": "Vacation", "target_amount": "5000.00", "deadline": "2030-06-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["progress_percentage"] != "0.00" || body["current_amount"] != "0.00" {
		t.Fatalf("unexpected new goal: %v", body)
	}
	id := int64(body["id"].(float64))

	rr = doJSON(t, srv, http.MethodPost, "/goals/1/progress", `{"amount": "500.00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("progress status=%d body=%s id=%d", rr.Code, rr.Body.String(), id)
	}
	body = decodeBody(t, rr)
	if body["current_amount"] != "500.00" || body["progress_percentage"] != "10.00" {
		t.Fatalf("unexpected goal after progress: %v", body)
	}
}

func TestGoalValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/goals", `{}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	for _, field := range []string{"name", "target_amount", "deadline"} {
		if msgs := fieldMessages(t, rr, field); len(msgs) == 0 {
			t.Fatalf("expected error for %s", field)
		}
	}
}

func TestGoalProgressNotFound(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/goals/99/progress", `{"amount": "10"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGoalProgressBadID(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/goals/abc/progress", `{"amount": "10"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSummaryReport(t *testing.T) {
	srv := newTestServer(t)

	seed := []string{
		`{"amount": "3000.00", "category": "Salary", "type": "income", "date": "2024-01-05"}`,
		`{"amount": "150.00", "category": "Food", "type": "expense", "date": "2024-01-10"}`,
		`{"amount": "50.00", "category": "Transport", "type": "expense", "date": "2024-02-01"}`,
		`{"amount": "25.00", "category": "Food", "type": "expense", "date": "2024-03-01"}`,
	}
	for _, payload := range seed {
		if rr := doJSON(t, srv, http.MethodPost, "/transactions", payload); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/reports/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["total_income"] != "3000.00" || body["total_expenses"] != "225.00" || body["balance"] != "2775.00" {
		t.Fatalf("unexpected totals: %v", body)
	}

	// Inclusive bounds: both endpoints count, the later expense does not.
	rr = doJSON(t, srv, http.MethodGet, "/reports/summary?from=2024-01-10&to=2024-02-01", "")
	body = decodeBody(t, rr)
	if body["total_expenses"] != "200.00" || body["total_income"] != "0.00" {
		t.Fatalf("unexpected bounded totals: %v", body)
	}

	byCat := body["expenses_by_category"].([]any)
	if len(byCat) != 2 {
		t.Fatalf("expected 2 categories, got %v", byCat)
	}
	first := byCat[0].(map[string]any)
	if first["category"] != "Food" || first["amount"] != "150.00" {
		t.Fatalf("unexpected first category: %v", first)
	}
}

func TestSummaryBadDates(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/reports/summary?from=notadate", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options=%q", got)
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv := newTestServer(t)

	var last int
	for i := 0; i < 61; i++ {
		rr := doJSON(t, srv, http.MethodPost, "/budgets", `{}`)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 60 posts, got %d", last)
	}
}
