package mockcustomerservice

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/service"
)

type Service struct {
	mock.Mock
}

// Interface compliance check
var _ service.CustomerService = &Service{}

func (m *Service) CreateCustomer(ctx context.Context, record model.CustomerValueRecord) (model.CustomerValueRecord, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(model.CustomerValueRecord), args.Error(1)
}

func (m *Service) UpdateCustomer(ctx context.Context, id string, update model.CustomerValueRecord) (model.CustomerValueRecord, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(model.CustomerValueRecord), args.Error(1)
}

func (m *Service) DeleteCustomer(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Service) ListCustomers(ctx context.Context, filter model.CustomerFilter) ([]model.CustomerValueRecord, model.Pagination, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.CustomerValueRecord), args.Get(1).(model.Pagination), args.Error(2)
}

func (m *Service) GetAnalytics(ctx context.Context) (model.AnalyticsSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.AnalyticsSummary), args.Error(1)
}

func (m *Service) GetUserAnalytics(ctx context.Context, userID string) (model.UserAnalytics, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserAnalytics), args.Error(1)
}

func (m *Service) ArchiveActivities(req model.ActivityBatchRequest) (int, error) {
	args := m.Called(req)
	return args.Int(0), args.Error(1)
}
