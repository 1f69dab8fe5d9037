package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/internal/policy"
	"github.com/diewo77/go-rentals/internal/services"
	"gorm.io/gorm"
)

// RouterConfig holds the handlers and authorization of the API.
type RouterConfig struct {
	Gate     *policy.Gate
	Notifier *services.HomesNotifier

	AuthHandler    *AuthHandler
	HomeHandler    *HomeHandler
	RoomHandler    *RoomHandler
	CatalogHandler *CatalogHandler
	InvoiceHandler *InvoiceHandler

	HomeService *services.HomeService
}

// NewRouterConfig wires services and handlers on top of db.
func NewRouterConfig(db *gorm.DB, notifier *services.HomesNotifier) *RouterConfig {
	homes := services.NewHomeService(db, notifier)
	catalog := services.NewCatalogService(db)
	invoices := services.NewInvoiceService(db, catalog)
	reports := services.NewReportService(db)

	return &RouterConfig{
		Gate:           policy.NewHomeGate(),
		Notifier:       notifier,
		AuthHandler:    NewAuthHandler(db),
		HomeHandler:    NewHomeHandler(homes, notifier),
		RoomHandler:    NewRoomHandler(services.NewRoomService(db)),
		CatalogHandler: NewCatalogHandler(catalog),
		InvoiceHandler: NewInvoiceHandler(invoices, reports),
		HomeService:    homes,
	}
}

// Register mounts every API route on mux. The mux expects auth.Middleware
// to run first.
func (c *RouterConfig) Register(mux *http.ServeMux) {
	ah := c.AuthHandler
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)
	mux.Handle("GET /me", auth.RequireAuth(http.HandlerFunc(ah.Me)))

	hh := c.HomeHandler
	mux.Handle("GET /homes", auth.RequireAuth(http.HandlerFunc(hh.List)))
	mux.Handle("POST /homes", auth.RequireAuth(http.HandlerFunc(hh.Create)))
	mux.Handle("GET /homes/events", auth.RequireAuth(http.HandlerFunc(hh.Events)))

	home := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth.RequireAuth(policy.RequireHome(c.Gate, c.HomeService.Get)(h)))
	}
	home("GET /homes/{homeID}", hh.Get)
	home("PUT /homes/{homeID}", hh.Update)
	home("DELETE /homes/{homeID}", hh.Delete)

	rh := c.RoomHandler
	home("GET /homes/{homeID}/rooms", rh.List)
	home("POST /homes/{homeID}/rooms", rh.Create)
	home("GET /homes/{homeID}/rooms/{roomID}", rh.Get)
	home("PUT /homes/{homeID}/rooms/{roomID}", rh.Update)
	home("DELETE /homes/{homeID}/rooms/{roomID}", rh.Delete)

	ch := c.CatalogHandler
	home("GET /homes/{homeID}/settings", ch.Settings)
	home("PUT /homes/{homeID}/settings", ch.UpdateSettings)
	home("GET /homes/{homeID}/services", ch.Services)
	home("POST /homes/{homeID}/services", ch.CreateService)
	home("PUT /homes/{homeID}/services/{serviceID}", ch.UpdateService)
	home("DELETE /homes/{homeID}/services/{serviceID}", ch.DeleteService)

	ih := c.InvoiceHandler
	home("GET /homes/{homeID}/invoices", ih.List)
	home("POST /homes/{homeID}/invoices", ih.Create)
	home("GET /homes/{homeID}/invoices/new", ih.New)
	home("POST /homes/{homeID}/invoices/preview", ih.Preview)
	home("GET /homes/{homeID}/invoices/export.xlsx", ih.Export)
	home("GET /homes/{homeID}/invoices/{invoiceID}", ih.Get)
	home("DELETE /homes/{homeID}/invoices/{invoiceID}", ih.Delete)
	home("GET /homes/{homeID}/reports/revenue", ih.Revenue)
}
