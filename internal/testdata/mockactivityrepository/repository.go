package mockactivityrepository

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
var _ repository.ActivityRepository = &Repository{}

func (m *Repository) CreateBatch(ctx context.Context, rows []model.ArchiveRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}
