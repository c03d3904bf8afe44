package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

// Stats responses carry major units. The aggregation layer works in
// cents; division by 100 happens here and nowhere else.
type summaryResponse struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}

type categoryStatResponse struct {
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	window, err := dateWindow(r.URL.Query())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	summary, err := s.stats.Summary(r.Context(), user.ID, window)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:  core.MajorFromCents(summary.TotalIncomeCents),
		TotalExpense: core.MajorFromCents(summary.TotalExpenseCents),
		Balance:      core.MajorFromCents(summary.BalanceCents),
	})
}

func (s *Server) handleStatsByCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())
	q := r.URL.Query()

	kind, err := requireKind(q, "type")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	window, err := dateWindow(q)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	stats, err := s.stats.CategoryBreakdown(r.Context(), user.ID, kind, window)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	out := make([]categoryStatResponse, 0, len(stats))
	for _, st := range stats {
		out = append(out, categoryStatResponse{
			CategoryID:   st.CategoryID,
			CategoryName: st.CategoryName,
			Total:        core.MajorFromCents(st.TotalCents),
			Count:        st.Count,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
