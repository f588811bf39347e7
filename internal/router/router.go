package router

import (
	"github.com/labstack/echo/v4"

	"github.com/betterwealth/workshop-booking/internal/handler"
	"github.com/betterwealth/workshop-booking/internal/middleware"
)

// Handlers groups everything the public API serves.
type Handlers struct {
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Booking  *handler.BookingHandler
	Calendar *handler.CalendarHandler
	Forms    *handler.FormsHandler
	Catalog  *handler.CatalogHandler
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterPublic registers the booking API under /api.  cache wraps the
// catalog list only; seat counts on the per-workshop dates route must be
// live.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	g := e.Group("/api")

	g.POST("/create-checkout-session", h.Checkout.CreateSession)
	g.POST("/stripe/webhook", h.Webhook.Stripe)
	g.GET("/booking-details", h.Booking.Details)

	g.GET("/calendar", h.Calendar.ICS)
	g.GET("/calendar/links", h.Calendar.Links)

	g.POST("/newsletter", h.Forms.Newsletter)
	g.POST("/contact", h.Forms.Contact)

	g.GET("/workshops", h.Catalog.ListWorkshops, cache)
	g.GET("/workshops/:slug/dates", h.Catalog.ListDates)
}

// RegisterAdmin registers provisioning routes under /v1/admin.  Login is
// open; everything else needs an ADMIN token.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	e.POST("/v1/admin/login", h.Login)

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)
	g.POST("/workshops", h.CreateWorkshop)
	g.POST("/workshops/:id/dates", h.CreateDate)
	g.GET("/dates/:id/bookings", h.ListBookings)
	g.GET("/customers", h.GetCustomer)
}
