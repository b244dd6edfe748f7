package routes

import (
	"github.com/gofiber/fiber/v2"

	"clv-tracking-service/internal/controller"
)

// RegisterAPI attaches the customer API routes to the Fiber app.
func RegisterAPI(app *fiber.App, customers controller.CustomerController) {
	api := app.Group("/api")

	api.Get("/health", customers.Health)

	api.Get("/customers", customers.ListCustomers)
	api.Post("/customers", customers.CreateCustomer)
	api.Put("/customers/:id", customers.UpdateCustomer)
	api.Delete("/customers/:id", customers.DeleteCustomer)

	api.Get("/analytics", customers.GetAnalytics)
	api.Get("/user-analytics", customers.GetUserAnalytics)

	api.Post("/activities", customers.ArchiveActivities)
}

// RegisterTracker attaches the tracker ingest routes to the Fiber app.
func RegisterTracker(app *fiber.App, tracker controller.TrackerController) {
	api := app.Group("/api")

	api.Post("/track", tracker.Track)
	api.Get("/session", tracker.Session)
	api.Get("/sync/status", tracker.SyncStatus)
	api.Post("/sync/force", tracker.ForceSync)
}
