package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"monetization-service/internal/models"
	"monetization-service/internal/services"

	_ "monetization-service/docs"

	"github.com/go-playground/validator"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Wallet struct {
	wallets  *services.WalletService
	logger   *slog.Logger
	validate *validator.Validate
}

func NewWallet(mux *http.ServeMux, wallets *services.WalletService, logger *slog.Logger) *Wallet {
	h := &Wallet{
		wallets:  wallets,
		logger:   logger,
		validate: validator.New(),
	}

	mux.HandleFunc("POST /api/v1/wallet/topup", h.topUp)
	mux.HandleFunc("POST /api/v1/wallet/spend", h.spend)
	mux.HandleFunc("POST /api/v1/wallet/refund", h.refund)
	mux.HandleFunc("GET /api/v1/wallet/{userId}", h.getBalance)
	mux.HandleFunc("GET /api/v1/wallet/{userId}/transactions", h.history)

	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return h
}

func (h *Wallet) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return false
	}
	return true
}

// @Summary Top up a wallet
// @Description Credits the user's wallet and records the matching WALLET_TOPUP ledger transaction
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body models.WalletTopUpRequest true "Top-up Request"
// @Success 200 {object} models.WalletOperationResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallet/topup [post]
func (h *Wallet) topUp(w http.ResponseWriter, r *http.Request) {
	var req models.WalletTopUpRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.wallets.TopUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Spend from a wallet
// @Description Debits the user's wallet; fails if the balance would go negative
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body models.WalletSpendRequest true "Spend Request"
// @Success 200 {object} models.WalletOperationResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallet/spend [post]
func (h *Wallet) spend(w http.ResponseWriter, r *http.Request) {
	var req models.WalletSpendRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.wallets.Spend(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Refund a wallet debit
// @Description Credits back a previously debited amount, at most once per debit
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body models.WalletRefundRequest true "Refund Request"
// @Success 200 {object} models.WalletOperationResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallet/refund [post]
func (h *Wallet) refund(w http.ResponseWriter, r *http.Request) {
	var req models.WalletRefundRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.wallets.Refund(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Get wallet balance
// @Description Returns the user's wallet balance; zero if the wallet has not been used yet
// @Tags wallet
// @Produce json
// @Param userId path string true "User ID (UUIDv4)"
// @Success 200 {object} models.WalletBalanceResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallet/{userId} [get]
func (h *Wallet) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if err := h.validate.Var(userID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	response, err := h.wallets.GetBalance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Get wallet history
// @Description Returns the wallet's transactions in creation order
// @Tags wallet
// @Produce json
// @Param userId path string true "User ID (UUIDv4)"
// @Success 200 {object} models.WalletHistoryResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /wallet/{userId}/transactions [get]
func (h *Wallet) history(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if err := h.validate.Var(userID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	response, err := h.wallets.History(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
