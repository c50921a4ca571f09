package http

import (
	"net/http"

	"centavo/internal/core"
	"centavo/internal/services"
)

type createTransactionRequest struct {
	Type        core.TransactionType `json:"type" validate:"required,oneof=expense income"`
	Amount      core.Money           `json:"amount"`
	Currency    string               `json:"currency" validate:"omitempty,len=3"`
	Description string               `json:"description" validate:"required,max=500"`
	CategoryID  *string              `json:"category_id"`
	Date        core.Date            `json:"transaction_date"`
}

type updateTransactionRequest struct {
	Type        *core.TransactionType `json:"type" validate:"omitempty,oneof=expense income"`
	Amount      *core.Money           `json:"amount"`
	Currency    *string               `json:"currency" validate:"omitempty,len=3"`
	Description *string               `json:"description" validate:"omitempty,max=500"`
	CategoryID  Optional[string]      `json:"category_id"`
	Date        *core.Date            `json:"transaction_date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, page, pageSize, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.svc.Transactions.List(r.Context(), currentUser(r).ID, f, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Create(r.Context(), services.CreateTransactionInput{
		UserID:      currentUser(r).ID,
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
		Source:      services.SourceAPI,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Transactions.Get(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), services.UpdateTransactionInput{
		Type:          req.Type,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		CategoryID:    req.CategoryID.Value,
		ClearCategory: req.CategoryID.Set && req.CategoryID.Value == nil,
		Date:          req.Date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
