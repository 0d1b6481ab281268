package http

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createTransactionRequest struct {
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description"`
	Type        core.TransactionType `json:"type"`
	Date        apiDate              `json:"date"`
	Notes       *string              `json:"notes"`
	CategoryID  string               `json:"categoryId"`
}

type updateTransactionRequest struct {
	Amount      *core.Money           `json:"amount"`
	Description *string               `json:"description"`
	Type        *core.TransactionType `json:"type"`
	Date        *apiDate              `json:"date"`
	Notes       nullable[string]      `json:"notes"`
	CategoryID  *string               `json:"categoryId"`
}

type transactionTotals struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Net      core.Money `json:"net"`
}

// transactionListResponse extends the list envelope with income/expense
// totals over the same filter, so the client renders a filtered ledger and
// its summary from one round trip.
type transactionListResponse struct {
	Data   []core.Transaction `json:"data"`
	Total  int                `json:"total"`
	Totals transactionTotals  `json:"totals"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var (
		txs              []core.Transaction
		income, expenses core.Money
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		txs, err = s.transactions.List(ctx, s.user.ID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		income, expenses, err = s.transactions.Totals(ctx, s.user.ID, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		writeDomainError(w, err)
		return
	}

	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionListResponse{
		Data:  txs,
		Total: len(txs),
		Totals: transactionTotals{
			Income:   income,
			Expenses: expenses,
			Net:      core.Money{Cents: income.Cents - expenses.Cents},
		},
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), s.user.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), s.user.ID, services.CreateTransactionInput{
		Amount:      req.Amount,
		Description: req.Description,
		Type:        req.Type,
		Date:        req.Date.Time,
		Notes:       req.Notes,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	var date *time.Time
	if req.Date != nil {
		date = &req.Date.Time
	}
	tx, err := s.transactions.Update(r.Context(), s.user.ID, r.PathValue("id"), services.UpdateTransactionInput{
		Amount:      req.Amount,
		Description: req.Description,
		Type:        req.Type,
		Date:        date,
		Notes:       req.Notes.Optional,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), s.user.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
