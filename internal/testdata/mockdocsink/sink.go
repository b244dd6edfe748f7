package mockdocsink

import (
	"github.com/stretchr/testify/mock"

	"clv-tracking-service/internal/syncer"
)

type Sink struct {
	mock.Mock
}

// Interface compliance check
var _ syncer.DocumentSink = &Sink{}

func (m *Sink) Upsert(collection, key string, fields map[string]any) error {
	args := m.Called(collection, key, fields)
	return args.Error(0)
}
