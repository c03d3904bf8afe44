package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

// handleTransactionsList returns the user's transactions, newest event
// first. Amounts stay in cents; only the stats endpoints convert.
func (s *Server) handleTransactionsList(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())
	q := r.URL.Query()

	var filter core.TransactionFilter
	var err error
	if filter.CategoryID, err = queryInt64(q, "categoryId"); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if filter.Kind, err = queryKind(q, "type"); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if filter.StartDate, err = queryTime(q, "startDate"); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if filter.EndDate, err = queryTime(q, "endDate"); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if filter.Limit, err = queryInt(q, "limit"); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if filter.Offset, err = queryInt(q, "offset"); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransactionsGetByID(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	id, err := queryInt64(r.URL.Query(), "id")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	checked, err := requireID(id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	tx, err := s.store.GetTransactionByID(r.Context(), checked, user.ID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	// Absent and foreign-owned both come back nil and serialize as null.
	writeJSON(w, http.StatusOK, tx)
}

type createTransactionRequest struct {
	CategoryID      *int64      `json:"categoryId"`
	Amount          json.Number `json:"amount"`
	Type            string      `json:"type"`
	Description     *string     `json:"description"`
	TransactionDate *time.Time  `json:"transactionDate"`
}

func (s *Server) handleTransactionsCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if req.CategoryID == nil || *req.CategoryID <= 0 {
		writeError(w, r, s.logger, core.NewValidationError("categoryId", "categoryId is required"))
		return
	}
	cents, err := amountToCents(req.Amount)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	kind := core.TransactionKind(req.Type)
	if !core.ValidKind(kind) {
		writeError(w, r, s.logger, core.NewValidationError("type", "type must be income or expense"))
		return
	}
	if req.TransactionDate == nil {
		writeError(w, r, s.logger, core.NewValidationError("transactionDate", "transactionDate is required"))
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), storage.CreateTransactionParams{
		UserID:          user.ID,
		CategoryID:      *req.CategoryID,
		AmountCents:     cents,
		Kind:            kind,
		Description:     req.Description,
		TransactionDate: *req.TransactionDate,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type updateTransactionRequest struct {
	ID              *int64      `json:"id"`
	CategoryID      *int64      `json:"categoryId"`
	Amount          json.Number `json:"amount"`
	Type            *string     `json:"type"`
	Description     *string     `json:"description"`
	TransactionDate *time.Time  `json:"transactionDate"`
}

func (s *Server) handleTransactionsUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	var req updateTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	id, err := requireID(req.ID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var patch core.TransactionPatch
	patch.CategoryID = req.CategoryID
	patch.Description = req.Description
	patch.TransactionDate = req.TransactionDate

	// A supplied amount is independently re-rounded to cents.
	if req.Amount != "" {
		cents, err := amountToCents(req.Amount)
		if err != nil {
			writeError(w, r, s.logger, err)
			return
		}
		patch.AmountCents = &cents
	}
	if req.Type != nil {
		kind := core.TransactionKind(*req.Type)
		if !core.ValidKind(kind) {
			writeError(w, r, s.logger, core.NewValidationError("type", "type must be income or expense"))
			return
		}
		patch.Kind = &kind
	}

	if err := s.ledger.UpdateTransaction(r.Context(), id, user.ID, patch); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleTransactionsDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := s.ledger.DeleteTransaction(r.Context(), id, user.ID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeSuccess(w)
}
