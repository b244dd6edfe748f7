package mockworker

import (
	"github.com/stretchr/testify/mock"

	"clv-tracking-service/internal/model"
)

type Worker struct {
	mock.Mock
}

func (m *Worker) Enqueue(row model.ArchiveRow) {
	m.Called(row)
}

func (m *Worker) Shutdown() {
	m.Called()
}
