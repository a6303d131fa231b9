package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerly/ledgerly/internal/handler/dto"
	"github.com/ledgerly/ledgerly/internal/service"
)

// AccountHandler handles HTTP requests for account operations.
type AccountHandler struct {
	svc      *service.AccountService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create handles POST /accounts/.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
		return
	}

	account, err := h.svc.Create(r.Context(), service.AccountInput{
		AccName: req.AccName,
		Balance: req.Balance,
		UserID:  req.UserID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("account_created", "account_id", account.ID, "user_id", account.UserID)

	writeJSON(w, http.StatusCreated, dto.ToAccountResponse(account))
}

// List handles GET /accounts/.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parseListParams(r)

	accounts, err := h.svc.List(r.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountListResponse(accounts))
}

// Get handles GET /accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Account ID must be a positive integer")
		return
	}

	account, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// Update handles PUT /accounts/{id}.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Account ID must be a positive integer")
		return
	}

	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
		return
	}

	account, err := h.svc.Update(r.Context(), id, service.AccountInput{
		AccName: req.AccName,
		Balance: req.Balance,
		UserID:  req.UserID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("account_updated", "account_id", account.ID)

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// Delete handles DELETE /accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Account ID must be a positive integer")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("account_deleted", "account_id", id)

	writeJSON(w, http.StatusOK, dto.DetailResponse{
		Detail: fmt.Sprintf("Account with id %d deleted", id),
	})
}

// DeleteAll handles DELETE /accounts/.
func (h *AccountHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("all_accounts_deleted")

	writeJSON(w, http.StatusOK, dto.DetailResponse{
		Detail: "All accounts have been deleted",
	})
}

// handleServiceError maps service errors to HTTP responses.
// The not-found branch covers both a missing account and a missing owner.
func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrAccountCreationDisabled):
		writeError(w, http.StatusForbidden, "ACCOUNT_CREATION_DISABLED", "Account creation is currently disabled by administrator")
	case errors.Is(err, service.ErrAccountLimitReached):
		writeError(w, http.StatusBadRequest, "ACCOUNT_LIMIT_REACHED", err.Error())
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
