package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createCategoryRequest struct {
	Name  string               `json:"name"`
	Type  core.TransactionType `json:"type"`
	Color *string              `json:"color"`
	Icon  *string              `json:"icon"`
}

type updateCategoryRequest struct {
	Name  *string               `json:"name"`
	Type  *core.TransactionType `json:"type"`
	Color nullable[string]      `json:"color"`
	Icon  nullable[string]      `json:"icon"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var typ *core.TransactionType
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			writeDomainError(w, core.ErrInvalidType)
			return
		}
		typ = &t
	}

	categories, err := s.categories.List(r.Context(), s.user.ID, typ)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeList(w, categories, len(categories))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.categories.Get(r.Context(), s.user.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, category)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	category, err := s.categories.Create(r.Context(), s.user.ID, services.CreateCategoryInput{
		Name:  req.Name,
		Type:  req.Type,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	category, err := s.categories.Update(r.Context(), s.user.ID, r.PathValue("id"), services.UpdateCategoryInput{
		Name:  req.Name,
		Type:  req.Type,
		Color: req.Color.Optional,
		Icon:  req.Icon.Optional,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), s.user.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
