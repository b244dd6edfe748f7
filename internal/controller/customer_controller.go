package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/repository"
	"clv-tracking-service/internal/service"
)

type CustomerController interface {
	Health(c *fiber.Ctx) error
	ListCustomers(c *fiber.Ctx) error
	CreateCustomer(c *fiber.Ctx) error
	UpdateCustomer(c *fiber.Ctx) error
	DeleteCustomer(c *fiber.Ctx) error
	GetAnalytics(c *fiber.Ctx) error
	GetUserAnalytics(c *fiber.Ctx) error
	ArchiveActivities(c *fiber.Ctx) error
}

type customerController struct {
	customerService service.CustomerService
	dbPing          func() error
}

// NewCustomerController builds a CustomerController. dbPing probes the
// database for the health endpoint and may be nil.
func NewCustomerController(svc service.CustomerService, dbPing func() error) CustomerController {
	return &customerController{customerService: svc, dbPing: dbPing}
}

// Health reports service and database status.
func (h *customerController) Health(c *fiber.Ctx) error {
	database := "connected"
	if h.dbPing == nil || h.dbPing() != nil {
		database = "disconnected"
	}

	return c.JSON(model.HealthResponse{
		Status:    "ok",
		Database:  database,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCustomers returns a page of customers.
func (h *customerController) ListCustomers(c *fiber.Ctx) error {
	filter := model.CustomerFilter{
		UserID: utils.Trim(c.Query("userId"), ' '),
		Limit:  c.QueryInt("limit", 50),
		Page:   c.QueryInt("page", 1),
	}

	customers, pagination, err := h.customerService.ListCustomers(c.Context(), filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch customers")
	}

	return c.JSON(model.CustomerListResponse{
		Status:     "success",
		Customers:  customers,
		Pagination: pagination,
	})
}

// CreateCustomer stores a new customer record.
func (h *customerController) CreateCustomer(c *fiber.Ctx) error {
	var record model.CustomerValueRecord
	if err := c.BodyParser(&record); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	created, err := h.customerService.CreateCustomer(c.Context(), record)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":   "success",
		"customer": created,
	})
}

// UpdateCustomer applies a partial update to an existing record.
func (h *customerController) UpdateCustomer(c *fiber.Ctx) error {
	var update model.CustomerValueRecord
	if err := c.BodyParser(&update); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	updated, err := h.customerService.UpdateCustomer(c.Context(), c.Params("id"), update)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"status":   "success",
		"customer": updated,
	})
}

// DeleteCustomer removes a customer.
func (h *customerController) DeleteCustomer(c *fiber.Ctx) error {
	if err := h.customerService.DeleteCustomer(c.Context(), c.Params("id")); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "customer deleted",
	})
}

// GetAnalytics returns aggregated CLV analytics.
func (h *customerController) GetAnalytics(c *fiber.Ctx) error {
	analytics, err := h.customerService.GetAnalytics(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch analytics")
	}

	return c.JSON(fiber.Map{
		"status":    "success",
		"analytics": analytics,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetUserAnalytics returns one user's CLV totals.
func (h *customerController) GetUserAnalytics(c *fiber.Ctx) error {
	analytics, err := h.customerService.GetUserAnalytics(c.Context(), utils.Trim(c.Query("userId"), ' '))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"status":    "success",
		"analytics": analytics,
	})
}

// ArchiveActivities accepts an uploaded activity batch for archival.
func (h *customerController) ArchiveActivities(c *fiber.Ctx) error {
	var req model.ActivityBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	accepted, err := h.customerService.ArchiveActivities(req)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":   "accepted",
		"accepted": accepted,
	})
}

func mapServiceError(err error) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCustomerExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrCustomerNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
