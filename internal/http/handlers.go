package http

import (
	"net/http"
	"strings"
	"time"

	"saldo/internal/analytics"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

type ledgerView struct {
	ledger.Snapshot
	Totals    core.Totals       `json:"totals"`
	Formatted map[string]string `json:"formatted,omitempty"`
}

type analyticsView struct {
	analytics.Report
	Currency  string            `json:"currency,omitempty"`
	Formatted map[string]string `json:"formatted,omitempty"`
}

type categoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil || s.engine == nil || s.identity == nil {
		NewJSONResponse().Status(http.StatusServiceUnavailable).
			Data(map[string]string{"status": "not_ready"}).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{
		"status":          "ready",
		"open_sessions":   len(s.sessions.Owners()),
		"analytics_cache": s.engine.Cache().Stats(),
		"rate_limit":      s.limiter.GetMetrics(),
		"security":        s.detector.GetMetrics(),
		"requests":        s.tracer.GetMetrics(),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	catalog := s.sessions.Catalog()
	labeler := s.engine.Labeler()
	out := map[core.TransactionType][]categoryView{}
	for _, t := range []core.TransactionType{core.Expense, core.Income} {
		views := []categoryView{}
		for _, c := range catalog.ByType(t) {
			views = append(views, categoryView{ID: c.ID, Name: labeler.CategoryName(c), Color: c.Color})
		}
		out[t] = views
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	st, r, ok := s.session(w, r, log.OpLoad)
	if !ok {
		return
	}
	NewJSONResponse().Data(s.ledgerView(st.Snapshot())).Write(w)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	st, r, ok := s.session(w, r, log.OpLoad)
	if !ok {
		return
	}
	if err := st.Load(r.Context()); err != nil {
		writeError(w, r, log.OpLoad, err)
		return
	}
	NewJSONResponse().Data(s.ledgerView(st.Snapshot())).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		writeError(w, r, log.OpSetBudget, err)
		return
	}

	st, r, ok := s.session(w, r, log.OpSetBudget)
	if !ok {
		return
	}
	if err := st.SetBudget(r.Context(), amount); err != nil {
		writeError(w, r, log.OpSetBudget, err)
		return
	}
	NewJSONResponse().Data(s.ledgerView(st.Snapshot())).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		writeError(w, r, log.OpAdd, err)
		return
	}

	st, r, ok := s.session(w, r, log.OpAdd)
	if !ok {
		return
	}
	tx, err := st.AddTransaction(r.Context(), draft)
	if err != nil {
		writeError(w, r, log.OpAdd, err)
		return
	}

	snap := st.Snapshot()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Data(map[string]any{
			"transaction": tx,
			"totals":      analytics.ComputeTotals(snap.Transactions, snap.Budget),
			"version":     snap.Version,
		}).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	st, r, ok := s.session(w, r, log.OpDelete)
	if !ok {
		return
	}
	if err := st.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	st, r, ok := s.session(w, r, log.OpReport)
	if !ok {
		return
	}
	snap := st.Snapshot()
	report := s.engine.Report(snap.Transactions, snap.Budget)

	view := analyticsView{Report: report}
	if s.formatter != nil {
		view.Currency = s.formatter.Code()
		view.Formatted = s.formatTotals(report.Totals)
	}
	NewJSONResponse().Data(view).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	owner, err := s.identity.OwnerID(r)
	if err != nil {
		writeError(w, r, log.OpLogout, err)
		return
	}
	if st, ok := s.sessions.Get(owner); ok {
		version := st.Snapshot().Version
		if s.sessions.Close(owner) {
			log.FromContext(r.Context()).InfoContext(r.Context(), "Session closed",
				log.FieldOwnerID, owner,
				"version", version)
		}
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// session resolves the caller's identity and returns its loaded ledger,
// along with r carrying an owner-scoped logger. On failure the error
// response has been written.
func (s *Server) session(w http.ResponseWriter, r *http.Request, op string) (*ledger.Store, *http.Request, bool) {
	owner, err := s.identity.OwnerID(r)
	if err != nil {
		writeError(w, r, op, err)
		return nil, r, false
	}
	ctx := log.WithContext(r.Context(), log.FromContext(r.Context()).ForOwner(owner))
	r = r.WithContext(ctx)

	st, err := s.sessions.Open(ctx, owner)
	if err != nil {
		writeError(w, r, op, err)
		return nil, r, false
	}
	return st, r, true
}

func (s *Server) ledgerView(snap ledger.Snapshot) ledgerView {
	totals := analytics.ComputeTotals(snap.Transactions, snap.Budget)
	v := ledgerView{Snapshot: snap, Totals: totals}
	if s.formatter != nil {
		v.Formatted = s.formatTotals(totals)
	}
	return v
}

func (s *Server) formatTotals(t core.Totals) map[string]string {
	f := s.formatter
	return map[string]string{
		"base_income":       f.FormatAmount(t.BaseIncome),
		"additional_income": f.FormatAmount(t.AdditionalIncome),
		"total_income":      f.FormatAmount(t.TotalIncome),
		"total_expenses":    f.FormatAmount(t.TotalExpenses),
		"balance":           f.FormatAmount(t.Balance),
		"budget_remaining":  f.FormatAmount(t.BudgetRemaining),
	}
}
