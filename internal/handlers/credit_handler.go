package handlers

import (
	"net/http"
	"strconv"

	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/services"
)

type CreditHandler struct {
	service   *services.CreditService
	validator *services.ValidationHelper
}

func NewCreditHandler(service *services.CreditService) *CreditHandler {
	return &CreditHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// GetCredits returns the caller's balance
// @Summary Get credits
// @Description Balance, lifetime usage and the most recent credit transactions
// @Tags credits
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of transactions (default 20, max 100)"
// @Success 200 {object} services.CreditSummary
// @Failure 401 {object} services.ErrorResponse
// @Router /credits [get]
func (h *CreditHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	summary, err := h.service.Summary(r.Context(), userID, limit)
	if err != nil {
		writeError(w, "LEDGER", err)
		return
	}
	services.SendJSON(w, http.StatusOK, summary)
}

// ListPackages returns the purchasable credit packages
// @Summary List credit packages
// @Tags credits
// @Produce json
// @Success 200 {array} models.CreditPackage
// @Router /credits/packages [get]
func (h *CreditHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, h.service.Packages())
}

type purchaseRequest struct {
	PackageID string `json:"packageId" validate:"required" example:"basic"`
}

type purchaseResponse struct {
	Transaction *models.CreditTransaction `json:"transaction"`
	Balance     int64                     `json:"balance"`
}

// Purchase credits a package to the caller
// @Summary Purchase credits
// @Description Add a package's credits to the balance as a purchase transaction
// @Tags credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body purchaseRequest true "Package"
// @Success 200 {object} purchaseResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse "Unpaid purchases are disabled"
// @Failure 404 {object} services.ErrorResponse
// @Router /credits/purchase [post]
func (h *CreditHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	tx, acc, err := h.service.Purchase(r.Context(), userID, req.PackageID)
	if err != nil {
		writeError(w, "LEDGER", err)
		return
	}
	services.SendJSON(w, http.StatusOK, purchaseResponse{Transaction: tx, Balance: acc.Balance})
}
