package mockcustomerapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/syncer"
)

type API struct {
	mock.Mock
}

// Interface compliance check
var _ syncer.CustomerAPI = &API{}

func (m *API) GetCustomer(ctx context.Context, id string) (model.CustomerValueRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.CustomerValueRecord), args.Error(1)
}

func (m *API) AddCustomer(ctx context.Context, record model.CustomerValueRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *API) UpdateCustomer(ctx context.Context, record model.CustomerValueRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *API) SendActivities(ctx context.Context, req model.ActivityBatchRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
