package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/services"
)

type GenerationHandler struct {
	generation *services.GenerationService
	products   *services.ProductService
}

func NewGenerationHandler(generation *services.GenerationService, products *services.ProductService) *GenerationHandler {
	return &GenerationHandler{generation: generation, products: products}
}

// Generate generates listing copy
// @Summary Generate listing copy
// @Description Reserve the type's credit cost, generate copy and charge only on success. Costs: title 1, description 2, bullet 1, tags 1, full 5.
// @Tags generate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Generation type" Enums(title, description, bullet, tags, full)
// @Param request body models.GenerationRequest true "Product facts"
// @Success 200 {object} models.GenerationResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse "Insufficient credits"
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /generate/{type} [post]
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.GenerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	req.Type = models.GenerationType(chi.URLParam(r, "type"))

	result, err := h.generation.Generate(r.Context(), userID, &req)
	if err != nil {
		writeError(w, "GENERATE", err)
		return
	}
	services.SendJSON(w, http.StatusOK, result)
}

type productGenerateRequest struct {
	Tone string `json:"tone" example:"friendly"`
}

// GenerateForProduct generates copy for a stored product and saves it
// @Summary Generate copy for a product
// @Description Generate copy from the stored product's facts and overwrite that kind of generated field. A warning is returned when the paid result could not be saved.
// @Tags generate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param type path string true "Generation type" Enums(title, description, bullet, tags, full)
// @Param request body productGenerateRequest false "Tone"
// @Success 200 {object} services.ProductGeneration
// @Failure 403 {object} services.ErrorResponse "Insufficient credits"
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{productId}/generate/{type} [post]
func (h *GenerationHandler) GenerateForProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req productGenerateRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	out, err := h.products.GenerateForProduct(r.Context(), userID, chi.URLParam(r, "productId"),
		models.GenerationType(chi.URLParam(r, "type")), req.Tone)
	if err != nil {
		writeError(w, "GENERATE", err)
		return
	}
	services.SendJSON(w, http.StatusOK, out)
}
