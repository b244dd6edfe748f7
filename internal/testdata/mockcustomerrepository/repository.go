package mockcustomerrepository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/repository"
)

type Repository struct {
	mock.Mock
}

// Interface compliance check
var _ repository.CustomerRepository = &Repository{}

func (m *Repository) Upsert(ctx context.Context, record model.CustomerValueRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *Repository) GetByID(ctx context.Context, id string) (model.CustomerValueRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.CustomerValueRecord), args.Error(1)
}

func (m *Repository) List(ctx context.Context, filter model.CustomerFilter) ([]model.CustomerValueRecord, uint64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.CustomerValueRecord), args.Get(1).(uint64), args.Error(2)
}

func (m *Repository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Repository) FetchAnalytics(ctx context.Context) (model.AnalyticsSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.AnalyticsSummary), args.Error(1)
}
