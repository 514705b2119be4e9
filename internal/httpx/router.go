package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ac2302/3d-ecommerce-backend/internal/httpx/middlewares"
	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
)

// NewRouter mounts the full API surface. Routes marked auth-only sit
// behind the bearer-token middleware and can rely on a resolved principal.
func NewRouter(handler *Handler, users identity.UserRepository) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Trace)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authOnly := middlewares.AuthOnly(users)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", handler.ListItems)
		r.With(authOnly).Post("/", handler.CreateItem)
		r.With(authOnly).Get("/owned", handler.ListOwnedItems)
		r.Get("/{id}", handler.GetItem)
		r.With(authOnly).Post("/{id}/order", handler.CreateOrder)
		r.With(authOnly).Post("/{id}/verify", handler.VerifyPayment)
		r.With(authOnly).Post("/{id}/buy", handler.DirectBuy)
	})

	r.Route("/payouts", func(r chi.Router) {
		r.Use(authOnly)
		r.Get("/due", handler.GetDue)
		r.Post("/withdraw", handler.Withdraw)
	})

	r.Route("/printjobs", func(r chi.Router) {
		r.Get("/", handler.ListPrintJobs)
		r.With(authOnly).Post("/", handler.CreatePrintJob)
	})

	return r
}
