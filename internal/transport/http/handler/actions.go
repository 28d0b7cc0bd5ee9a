package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"monetization-service/internal/models"
	"monetization-service/internal/services"

	"github.com/go-playground/validator"
)

type Actions struct {
	actions  *services.ActionService
	logger   *slog.Logger
	validate *validator.Validate
}

func NewActions(mux *http.ServeMux, actions *services.ActionService, logger *slog.Logger) *Actions {
	h := &Actions{
		actions:  actions,
		logger:   logger,
		validate: validator.New(),
	}

	mux.HandleFunc("POST /api/v1/listings/{listingId}/fees", h.chargeListingFees)
	mux.HandleFunc("POST /api/v1/listings/{listingId}/unlock", h.unlockContact)
	mux.HandleFunc("POST /api/v1/listings/{listingId}/sponsor", h.sponsorListing)
	mux.HandleFunc("POST /api/v1/premium/subscribe", h.subscribePremium)
	mux.HandleFunc("POST /api/v1/business-ads", h.createBusinessAd)
	mux.HandleFunc("POST /api/v1/events/{eventId}/partner", h.partnerEvent)
	mux.HandleFunc("GET /api/v1/transactions/{transactionId}", h.getTransaction)
	mux.HandleFunc("GET /api/v1/users/{userId}/transactions", h.listUserTransactions)

	return h
}

func (h *Actions) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
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

// @Summary Charge listing fees
// @Description Applies the listing fee, service-marketplace fee and high-value commission for a listing
// @Tags listings
// @Accept json
// @Produce json
// @Param listingId path string true "Listing ID (UUIDv4)"
// @Param request body models.ListingFeesRequest true "Fee Request"
// @Success 200 {object} models.ListingFeesResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /listings/{listingId}/fees [post]
func (h *Actions) chargeListingFees(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("listingId")
	if err := h.validate.Var(listingID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid listing ID format")
		return
	}

	var req models.ListingFeesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.actions.ChargeListingFees(r.Context(), listingID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Unlock contact info
// @Description Charges the contact-unlock fee once and returns the listing owner's contact info
// @Tags listings
// @Accept json
// @Produce json
// @Param listingId path string true "Listing ID (UUIDv4)"
// @Param request body models.UnlockContactRequest true "Unlock Request"
// @Success 200 {object} models.UnlockContactResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /listings/{listingId}/unlock [post]
func (h *Actions) unlockContact(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("listingId")
	if err := h.validate.Var(listingID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid listing ID format")
		return
	}

	var req models.UnlockContactRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.actions.UnlockContact(r.Context(), listingID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Sponsor a listing
// @Description Charges the boost fee and marks the listing as featured
// @Tags listings
// @Accept json
// @Produce json
// @Param listingId path string true "Listing ID (UUIDv4)"
// @Param request body models.SponsorListingRequest true "Sponsor Request"
// @Success 200 {object} models.SponsorListingResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /listings/{listingId}/sponsor [post]
func (h *Actions) sponsorListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("listingId")
	if err := h.validate.Var(listingID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid listing ID format")
		return
	}

	var req models.SponsorListingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.actions.SponsorListing(r.Context(), listingID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Subscribe to premium
// @Description Charges the subscription fee and grants premium for one month
// @Tags premium
// @Accept json
// @Produce json
// @Param request body models.SubscribePremiumRequest true "Subscribe Request"
// @Success 200 {object} models.SubscribePremiumResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /premium/subscribe [post]
func (h *Actions) subscribePremium(w http.ResponseWriter, r *http.Request) {
	var req models.SubscribePremiumRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.actions.SubscribePremium(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Create a business ad
// @Description Stores the ad and charges the flat posting fee
// @Tags business-ads
// @Accept json
// @Produce json
// @Param request body models.CreateBusinessAdRequest true "Ad Request"
// @Success 201 {object} models.CreateBusinessAdResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /business-ads [post]
func (h *Actions) createBusinessAd(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBusinessAdRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.actions.CreateBusinessAd(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// @Summary Partner an event
// @Description Charges the tiered sponsorship fee and marks the event as partnered
// @Tags events
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID (UUIDv4)"
// @Param request body models.PartnerEventRequest true "Partnership Request"
// @Success 200 {object} models.PartnerEventResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /events/{eventId}/partner [post]
func (h *Actions) partnerEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if err := h.validate.Var(eventID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	var req models.PartnerEventRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.actions.PartnerEvent(r.Context(), eventID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param transactionId path string true "Transaction ID (UUIDv4)"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /transactions/{transactionId} [get]
func (h *Actions) getTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := r.PathValue("transactionId")
	if err := h.validate.Var(transactionID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction ID format")
		return
	}

	transaction, err := h.actions.GetTransaction(r.Context(), transactionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// @Summary List a user's transactions
// @Tags transactions
// @Produce json
// @Param userId path string true "User ID (UUIDv4)"
// @Success 200 {object} models.UserTransactionsResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /users/{userId}/transactions [get]
func (h *Actions) listUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if err := h.validate.Var(userID, "required,uuid4"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	response, err := h.actions.ListUserTransactions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
