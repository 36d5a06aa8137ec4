package http

import (
	"net/http"
	"strconv"

	"bilancio/internal/core"
)

type goalView struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	TargetAmount       string    `json:"target_amount"`
	CurrentAmount      string    `json:"current_amount"`
	Deadline           core.Date `json:"deadline"`
	ProgressPercentage string    `json:"progress_percentage"`
	DaysRemaining      int       `json:"days_remaining"`
}

func toGoalView(g core.Goal) goalView {
	return goalView{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmount:       g.Target.String(),
		CurrentAmount:      g.Current.String(),
		Deadline:           g.Deadline,
		ProgressPercentage: g.ProgressPercent().StringFixed(2),
		DaysRemaining:      g.DaysRemaining(core.Today()),
	}
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}

	errs := core.FieldErrors{}

	g := core.Goal{Name: p.Get("name")}

	if amountStr := p.Get("target_amount"); amountStr == "" {
		errs.Add("target_amount", core.MsgBlank)
	} else if cents, err := core.ParseDecimalToCents(amountStr); err != nil {
		errs.Add("target_amount", core.MsgNotANumber)
	} else {
		g.Target = core.Money{Cents: cents}
	}

	if deadlineStr := p.Get("deadline"); deadlineStr != "" {
		d, err := core.ParseDate(deadlineStr)
		if err != nil {
			errs.Add("deadline", core.MsgInvalid)
		} else {
			g.Deadline = d
		}
	}

	for field, msgs := range g.Validate() {
		errs[field] = append(errs[field], msgs...)
	}
	if errs.Any() {
		writeError(w, r, errs)
		return
	}

	created, err := s.service.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toGoalView(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.service.ListGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, r, "invalid goal id")
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}

	errs := core.FieldErrors{}
	var amount core.Money

	if amountStr := p.Get("amount"); amountStr == "" {
		errs.Add("amount", core.MsgBlank)
	} else if cents, parseErr := core.ParseDecimalToCents(amountStr); parseErr != nil {
		errs.Add("amount", core.MsgNotANumber)
	} else {
		amount = core.Money{Cents: cents}
	}
	if errs.Any() {
		writeError(w, r, errs)
		return
	}

	updated, err := s.service.AddGoalProgress(r.Context(), id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toGoalView(updated))
}
