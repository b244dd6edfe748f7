package service

import (
	"context"
	"errors"
	"math"
	"time"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/repository"
)

// ErrCustomerExists is returned when creating a customer whose id is taken.
var ErrCustomerExists = errors.New("customer already exists")

// ValidationError represents user input issues.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CustomerService wires business logic for customer records and analytics.
type CustomerService interface {
	CreateCustomer(ctx context.Context, record model.CustomerValueRecord) (model.CustomerValueRecord, error)
	UpdateCustomer(ctx context.Context, id string, update model.CustomerValueRecord) (model.CustomerValueRecord, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context, filter model.CustomerFilter) ([]model.CustomerValueRecord, model.Pagination, error)
	GetAnalytics(ctx context.Context) (model.AnalyticsSummary, error)
	GetUserAnalytics(ctx context.Context, userID string) (model.UserAnalytics, error)
	ArchiveActivities(req model.ActivityBatchRequest) (int, error)
}

type customerService struct {
	repo   repository.CustomerRepository
	worker ActivityWorker
	now    func() time.Time
}

// NewCustomerService constructs a customerService.
func NewCustomerService(repo repository.CustomerRepository, worker ActivityWorker) CustomerService {
	return &customerService{
		repo:   repo,
		worker: worker,
		now:    time.Now,
	}
}

// CreateCustomer validates and stores a new customer record. CLV is
// recomputed from the three factors regardless of what the caller sent.
func (s *customerService) CreateCustomer(ctx context.Context, record model.CustomerValueRecord) (model.CustomerValueRecord, error) {
	if err := validateRecord(record); err != nil {
		return model.CustomerValueRecord{}, err
	}

	if _, err := s.repo.GetByID(ctx, record.ID); err == nil {
		return model.CustomerValueRecord{}, ErrCustomerExists
	} else if !errors.Is(err, repository.ErrCustomerNotFound) {
		return model.CustomerValueRecord{}, err
	}

	record = s.finalize(record)
	if err := s.repo.Upsert(ctx, record); err != nil {
		return model.CustomerValueRecord{}, err
	}
	return record, nil
}

// UpdateCustomer applies non-zero fields of update onto the stored record.
func (s *customerService) UpdateCustomer(ctx context.Context, id string, update model.CustomerValueRecord) (model.CustomerValueRecord, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.CustomerValueRecord{}, err
	}

	if update.Name != "" {
		existing.Name = update.Name
	}
	if update.Email != "" {
		existing.Email = update.Email
	}
	if update.AveragePurchaseValue > 0 {
		existing.AveragePurchaseValue = update.AveragePurchaseValue
	}
	if update.PurchaseFrequency > 0 {
		existing.PurchaseFrequency = update.PurchaseFrequency
	}
	if update.CustomerLifespan > 0 {
		existing.CustomerLifespan = update.CustomerLifespan
	}
	if update.EngagementScore > 0 {
		existing.EngagementScore = update.EngagementScore
	}
	if update.TotalActivities > 0 {
		existing.TotalActivities = update.TotalActivities
	}
	if update.Source != "" {
		existing.Source = update.Source
	}
	if update.UserID != "" {
		existing.UserID = update.UserID
	}

	existing = s.finalize(existing)
	if err := s.repo.Upsert(ctx, existing); err != nil {
		return model.CustomerValueRecord{}, err
	}
	return existing, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, filter model.CustomerFilter) ([]model.CustomerValueRecord, model.Pagination, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	pagination := model.Pagination{
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Pages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	return customers, pagination, nil
}

func (s *customerService) GetAnalytics(ctx context.Context) (model.AnalyticsSummary, error) {
	return s.repo.FetchAnalytics(ctx)
}

// GetUserAnalytics reduces one user's customers into CLV totals.
func (s *customerService) GetUserAnalytics(ctx context.Context, userID string) (model.UserAnalytics, error) {
	if userID == "" {
		return model.UserAnalytics{}, &ValidationError{Message: "userId is required"}
	}

	customers, _, err := s.repo.List(ctx, model.CustomerFilter{UserID: userID, Limit: 1000, Page: 1})
	if err != nil {
		return model.UserAnalytics{}, err
	}

	analytics := model.UserAnalytics{
		TotalCustomers: len(customers),
		Customers:      customers,
	}
	for _, customer := range customers {
		analytics.TotalCLV += customer.CLV
	}
	if len(customers) > 0 {
		analytics.AverageCLV = analytics.TotalCLV / float64(len(customers))
	}
	return analytics, nil
}

// ArchiveActivities enqueues an uploaded batch for background archival
// and reports how many rows were accepted.
func (s *customerService) ArchiveActivities(req model.ActivityBatchRequest) (int, error) {
	if len(req.Activities) == 0 {
		return 0, &ValidationError{Message: "activities must not be empty"}
	}

	for _, event := range req.Activities {
		if event.SessionID == "" {
			event.SessionID = req.SessionID
		}
		s.worker.Enqueue(model.ArchiveRow{UserID: req.UserID, Event: event})
	}
	return len(req.Activities), nil
}

// finalize stamps derived fields. The stored clv is always the product
// of the three factors, never the caller-provided value.
func (s *customerService) finalize(record model.CustomerValueRecord) model.CustomerValueRecord {
	record.CLV = record.ComputeCLV()
	record.LastUpdated = s.now().UTC()
	if record.Source == "" {
		record.Source = "web_app"
	}
	return record
}

func validateRecord(record model.CustomerValueRecord) error {
	if record.ID == "" {
		return &ValidationError{Message: "id is required"}
	}
	if record.Name == "" {
		return &ValidationError{Message: "name is required"}
	}
	if record.AveragePurchaseValue < 0 || record.PurchaseFrequency < 0 || record.CustomerLifespan < 0 {
		return &ValidationError{Message: "value factors must be non-negative"}
	}
	return nil
}
