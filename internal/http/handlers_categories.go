package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

func (s *Server) handleCategoriesList(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	cats, err := s.store.ListCategories(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

type createCategoryRequest struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Color string  `json:"color"`
	Icon  *string `json:"icon"`
}

func (s *Server) handleCategoriesCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := core.ValidateCategoryName(req.Name); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	kind := core.TransactionKind(req.Type)
	if !core.ValidKind(kind) {
		writeError(w, r, s.logger, core.NewValidationError("type", "type must be income or expense"))
		return
	}
	if err := core.ValidateHexColor(req.Color); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	// User-created rows are never part of the seeded default set.
	cat, err := s.ledger.CreateCategory(r.Context(), storage.CreateCategoryParams{
		UserID:    user.ID,
		Name:      req.Name,
		Kind:      kind,
		Color:     req.Color,
		Icon:      req.Icon,
		IsDefault: false,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// updateCategoryRequest has no type field: kind is immutable, and an
// unknown "type" key in the body is ignored rather than rejected.
type updateCategoryRequest struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

func (s *Server) handleCategoriesUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	var req updateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	id, err := requireID(req.ID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if req.Name != nil {
		if err := core.ValidateCategoryName(*req.Name); err != nil {
			writeError(w, r, s.logger, err)
			return
		}
	}
	if req.Color != nil {
		if err := core.ValidateHexColor(*req.Color); err != nil {
			writeError(w, r, s.logger, err)
			return
		}
	}

	if err := s.ledger.UpdateCategory(r.Context(), id, user.ID, core.CategoryPatch{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	}); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeSuccess(w)
}

type deleteRequest struct {
	ID *int64 `json:"id"`
}

func (s *Server) handleCategoriesDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	var req deleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	id, err := requireID(req.ID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), id, user.ID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeSuccess(w)
}
