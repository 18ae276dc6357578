package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	AddTransaction(ctx context.Context, input usecase.TransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, input usecase.TransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	DeleteTransactionWithCounter(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
	AddAccountTransfer(ctx context.Context, input usecase.AccountTransferInput) (*domain.Transaction, error)
	AddCategoryTransfer(ctx context.Context, input usecase.CategoryTransferInput) (*domain.Transaction, error)
	Reconcile(ctx context.Context, accountID string, statedBalance decimal.Decimal, date time.Time) (*domain.Transaction, error)
	BulkDeleteTransactions(ctx context.Context, ids []string) usecase.BulkResult
	ImportTransactions(ctx context.Context, inputs []usecase.TransactionInput) usecase.BulkResult
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	txUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC}
}

// Create books a new income or expense transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.txUC.AddTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.txUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Update rewrites a transaction and keeps its linked legs in sync.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.txUC.UpdateTransaction(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Delete removes a transaction. With with_counter=true, all linked legs go
// with it.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var err error
	if parseBoolQuery(r, "with_counter", false) {
		err = h.txUC.DeleteTransactionWithCounter(r.Context(), id)
	} else {
		err = h.txUC.DeleteTransaction(r.Context(), id)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to delete transaction", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByAccount lists all transactions of an account in booking order.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	txs, err := h.txUC.ListByAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// List lists transactions in a date range (from/to query parameters).
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}
	end, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	txs, err := h.txUC.ListByDateRange(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// CreateAccountTransfer books a linked transfer pair between two accounts.
func (h *TransactionHandler) CreateAccountTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.txUC.AddAccountTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// CreateCategoryTransfer books a linked budget move between two categories.
func (h *TransactionHandler) CreateCategoryTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.txUC.AddCategoryTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create category transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Reconcile books an adjustment so the account matches a stated balance and
// flags preceding transactions as reconciled.
func (h *TransactionHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.txUC.Reconcile(r.Context(), accountID, req.StatedBalance, req.Date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	// No adjustment was needed.
	if tx == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "balanced"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// BulkDelete removes a set of transactions.
func (h *TransactionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.txUC.BulkDeleteTransactions(r.Context(), req.IDs)
	writeJSON(w, http.StatusOK, dto.BulkResultFromUseCase(result))
}

// Import books a batch of transactions, reporting per-row failures.
func (h *TransactionHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result := h.txUC.ImportTransactions(r.Context(), req.ToUseCaseInputs())
	writeJSON(w, http.StatusOK, dto.BulkResultFromUseCase(result))
}
