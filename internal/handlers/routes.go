package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kirin765/naver-smartstore/internal/services"
)

// Routes holds every API handler. Register mounts them on a router that is
// already prefixed with the API base path.
type Routes struct {
	Auth        *services.AuthService
	Products    *ProductHandler
	Generation  *GenerationHandler
	Credits     *CreditHandler
	Dashboard   *DashboardHandler
	RequireAuth func(http.Handler) http.Handler
}

func (rt Routes) Register(r chi.Router) {
	// Public endpoints
	r.Post("/auth/signup", rt.Auth.Signup)
	r.Post("/auth/login", rt.Auth.Login)
	r.Post("/auth/logout", rt.Auth.Logout)
	r.Get("/credits/packages", rt.Credits.ListPackages)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(rt.RequireAuth)

		r.Get("/auth/me", rt.Auth.Me)

		r.Get("/products", rt.Products.ListProducts)
		r.Post("/products", rt.Products.CreateProduct)
		r.Get("/products/{productId}", rt.Products.GetProduct)
		r.Put("/products/{productId}", rt.Products.UpdateProduct)
		r.Delete("/products/{productId}", rt.Products.DeleteProduct)
		r.Post("/products/{productId}/generate/{type}", rt.Generation.GenerateForProduct)

		r.Post("/generate/{type}", rt.Generation.Generate)

		r.Get("/credits", rt.Credits.GetCredits)
		r.Post("/credits/purchase", rt.Credits.Purchase)

		r.Get("/dashboard", rt.Dashboard.GetDashboard)
	})
}
