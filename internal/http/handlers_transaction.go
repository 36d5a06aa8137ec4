package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
)

type transactionView struct {
	ID          int64     `json:"id"`
	Date        core.Date `json:"date"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Kind        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Description: t.Description,
		Kind:        string(t.Kind),
		CreatedAt:   t.CreatedAt,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}

	errs := core.FieldErrors{}

	t := core.Transaction{
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Kind:        core.Kind(p.Get("type")),
	}

	if amountStr := p.Get("amount"); amountStr == "" {
		errs.Add("amount", core.MsgBlank)
	} else if cents, err := core.ParseDecimalToCents(amountStr); err != nil {
		errs.Add("amount", core.MsgNotANumber)
	} else {
		t.Amount = core.Money{Cents: cents}
	}

	// Missing date means today. A present but unparseable one is an
	// error, not a silent default.
	if dateStr := p.Get("date"); dateStr == "" {
		t.Date = core.Today()
	} else if d, err := core.ParseDate(dateStr); err != nil {
		errs.Add("date", core.MsgInvalid)
	} else {
		t.Date = d
	}

	for field, msgs := range t.Validate() {
		errs[field] = append(errs[field], msgs...)
	}
	if errs.Any() {
		writeError(w, r, errs)
		return
	}

	res, err := s.service.CreateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toTransactionView(res.Transaction))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, toTransactionView(t))
	}
	writeJSON(w, r, http.StatusOK, views)
}
