package http

import (
	"net/http"

	"bilancio/internal/core"
)

type budgetView struct {
	ID             int64  `json:"id"`
	Category       string `json:"category"`
	Amount         string `json:"amount"`
	Spent          string `json:"spent"`
	Remaining      string `json:"remaining"`
	PercentageUsed string `json:"percentage_used"`
}

func toBudgetView(b core.Budget) budgetView {
	return budgetView{
		ID:             b.ID,
		Category:       b.Category,
		Amount:         b.Limit.String(),
		Spent:          b.Spent.String(),
		Remaining:      b.Remaining().String(),
		PercentageUsed: b.PercentUsed().StringFixed(2),
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}

	errs := core.FieldErrors{}

	b := core.Budget{Category: p.Get("category")}

	if amountStr := p.Get("amount"); amountStr == "" {
		errs.Add("amount", core.MsgBlank)
	} else if cents, err := core.ParseDecimalToCents(amountStr); err != nil {
		errs.Add("amount", core.MsgNotANumber)
	} else {
		b.Limit = core.Money{Cents: cents}
	}

	for field, msgs := range b.Validate() {
		errs[field] = append(errs[field], msgs...)
	}
	if errs.Any() {
		writeError(w, r, errs)
		return
	}

	created, err := s.service.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toBudgetView(created))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.service.ListBudgets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	writeJSON(w, r, http.StatusOK, views)
}
