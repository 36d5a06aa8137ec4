package http

import (
	"net/http"
	"strings"

	"bilancio/internal/core"
)

type categoryAmountView struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type summaryView struct {
	From          *core.Date           `json:"from,omitempty"`
	To            *core.Date           `json:"to,omitempty"`
	TotalIncome   string               `json:"total_income"`
	TotalExpenses string               `json:"total_expenses"`
	Balance       string               `json:"balance"`
	ByCategory    []categoryAmountView `json:"expenses_by_category"`
}

// handleSummary aggregates transactions within the optional inclusive
// from/to bounds given as YYYY-MM-DD query parameters.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var from, to core.Date

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeBadRequest(w, r, "invalid from date, expected YYYY-MM-DD")
			return
		}
		from = d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeBadRequest(w, r, "invalid to date, expected YYYY-MM-DD")
			return
		}
		to = d
	}

	sum, err := s.service.BuildSummary(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := summaryView{
		TotalIncome:   sum.Income.String(),
		TotalExpenses: sum.Expenses.String(),
		Balance:       core.Money{Cents: sum.Income.Cents - sum.Expenses.Cents}.String(),
		ByCategory:    make([]categoryAmountView, 0, len(sum.ByCategory)),
	}
	if !sum.From.IsEmpty() {
		view.From = &sum.From
	}
	if !sum.To.IsEmpty() {
		view.To = &sum.To
	}
	for _, ca := range sum.ByCategory {
		view.ByCategory = append(view.ByCategory, categoryAmountView{
			Category: ca.Name,
			Amount:   ca.Amount.String(),
		})
	}

	writeJSON(w, r, http.StatusOK, view)
}
