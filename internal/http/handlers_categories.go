package http

import (
	"net/http"

	"centavo/internal/core"
	"centavo/internal/services"
)

type createCategoryRequest struct {
	Name         string               `json:"name" validate:"required,max=50"`
	Icon         string               `json:"icon" validate:"omitempty,max=50"`
	Color        string               `json:"color" validate:"omitempty,hexcolor"`
	Type         core.TransactionType `json:"type" validate:"required,oneof=expense income"`
	MonthlyLimit *core.Money          `json:"monthly_limit"`
}

type updateCategoryRequest struct {
	Name         *string              `json:"name" validate:"omitempty,max=50"`
	Icon         *string              `json:"icon" validate:"omitempty,max=50"`
	Color        *string              `json:"color" validate:"omitempty,hexcolor"`
	MonthlyLimit Optional[core.Money] `json:"monthly_limit"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ, err := queryType(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := s.svc.Categories.List(r.Context(), currentUser(r).ID, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), currentUser(r).ID, services.CreateCategoryInput{
		Name:         req.Name,
		Icon:         req.Icon,
		Color:        req.Color,
		Type:         req.Type,
		MonthlyLimit: req.MonthlyLimit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Categories.Get(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), services.UpdateCategoryInput{
		Name:         req.Name,
		Icon:         req.Icon,
		Color:        req.Color,
		MonthlyLimit: req.MonthlyLimit.Value,
		ClearLimit:   req.MonthlyLimit.Set && req.MonthlyLimit.Value == nil,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
