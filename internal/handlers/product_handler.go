package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/services"
)

type ProductHandler struct {
	service *services.ProductService
}

func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// ListProducts lists the caller's products
// @Summary List products
// @Description List the authenticated user's products, newest first
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of products (default 100)"
// @Success 200 {array} models.Product
// @Failure 401 {object} services.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		writeError(w, "PRODUCT", err)
		return
	}
	services.SendJSON(w, http.StatusOK, products)
}

// CreateProduct creates a draft product
// @Summary Create product
// @Description Create a draft product from the seller's facts
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProductInput true "Product"
// @Success 201 {object} models.Product
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in models.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	p, err := h.service.Create(r.Context(), userID, &in)
	if err != nil {
		writeError(w, "PRODUCT", err)
		return
	}
	services.SendJSON(w, http.StatusCreated, p)
}

// GetProduct returns one product
// @Summary Get product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{productId} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, "PRODUCT", err)
		return
	}
	services.SendJSON(w, http.StatusOK, p)
}

// UpdateProduct applies a partial update
// @Summary Update product
// @Description Partially update a product. Generated fields may be edited by hand.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param request body models.ProductUpdate true "Fields to change"
// @Success 200 {object} models.Product
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{productId} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var upd models.ProductUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	p, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "productId"), &upd)
	if err != nil {
		writeError(w, "PRODUCT", err)
		return
	}
	services.SendJSON(w, http.StatusOK, p)
}

// DeleteProduct deletes a product
// @Summary Delete product
// @Tags products
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{productId} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "productId")); err != nil {
		writeError(w, "PRODUCT", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
