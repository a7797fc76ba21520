package testutil

import (
	"github.com/haatos/casetrack/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) ParseResultBundle(
	blobs []service.ResultBlob,
) ([]service.UpsertParams, error) {
	args := m.Called(blobs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.UpsertParams), args.Error(1)
}
