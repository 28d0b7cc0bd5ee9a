package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"monetization-service/internal/services"
	"monetization-service/internal/storage"
)

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(statusCode),
		"message": message,
		"code":    statusCode,
	}

	writeJSON(w, statusCode, errorResponse)
}

// writeServiceError maps service and storage errors onto HTTP statuses.
// Anything unrecognized is a storage failure: logged, surfaced opaque.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrListingNotFound),
		errors.Is(err, storage.ErrEventNotFound),
		errors.Is(err, storage.ErrWalletNotFound),
		errors.Is(err, storage.ErrTransactionNotFound),
		errors.Is(err, storage.ErrWalletTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotListingOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrAlreadyFeatured),
		errors.Is(err, services.ErrAlreadyPartnered),
		errors.Is(err, storage.ErrDuplicateTransaction),
		errors.Is(err, storage.ErrInsufficientBalance),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidAdPeriod),
		errors.Is(err, services.ErrNotRefundable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
