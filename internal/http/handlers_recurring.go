package http

import (
	"net/http"

	"centavo/internal/core"
	"centavo/internal/services"
)

type createRecurringRequest struct {
	Name       string               `json:"name" validate:"required,max=100"`
	Amount     core.Money           `json:"amount"`
	Currency   string               `json:"currency" validate:"omitempty,len=3"`
	CategoryID *string              `json:"category_id"`
	Type       core.TransactionType `json:"type" validate:"required,oneof=expense income"`
	Frequency  core.Frequency       `json:"frequency" validate:"omitempty,oneof=daily weekly monthly yearly"`
	DayOfMonth int                  `json:"day_of_month" validate:"required,gte=1,lte=31"`
	StartDate  core.Date            `json:"start_date"`
	AutoPost   bool                 `json:"auto_post"`
}

type updateRecurringRequest struct {
	Name       *string               `json:"name" validate:"omitempty,max=100"`
	Amount     *core.Money           `json:"amount"`
	Currency   *string               `json:"currency" validate:"omitempty,len=3"`
	CategoryID Optional[string]      `json:"category_id"`
	Type       *core.TransactionType `json:"type" validate:"omitempty,oneof=expense income"`
	Frequency  *core.Frequency       `json:"frequency" validate:"omitempty,oneof=daily weekly monthly yearly"`
	DayOfMonth *int                  `json:"day_of_month" validate:"omitempty,gte=1,lte=31"`
	StartDate  *core.Date            `json:"start_date"`
	IsActive   *bool                 `json:"is_active"`
	AutoPost   *bool                 `json:"auto_post"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Recurring.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := s.svc.Recurring.Create(r.Context(), currentUser(r).ID, services.CreateRecurringInput{
		Name:       req.Name,
		Amount:     req.Amount,
		Currency:   req.Currency,
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Frequency:  req.Frequency,
		DayOfMonth: req.DayOfMonth,
		StartDate:  req.StartDate,
		AutoPost:   req.AutoPost,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	rt, err := s.svc.Recurring.Get(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req updateRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := s.svc.Recurring.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), services.UpdateRecurringInput{
		Name:          req.Name,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CategoryID:    req.CategoryID.Value,
		ClearCategory: req.CategoryID.Set && req.CategoryID.Value == nil,
		Type:          req.Type,
		Frequency:     req.Frequency,
		DayOfMonth:    req.DayOfMonth,
		StartDate:     req.StartDate,
		IsActive:      req.IsActive,
		AutoPost:      req.AutoPost,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Recurring.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePayRecurring(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Recurring.Pay(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
