package testutil

import (
	"github.com/haatos/casetrack/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockExcelService struct {
	mock.Mock
}

func (m *MockExcelService) RenderReport(report *service.TestCaseReport) ([]byte, error) {
	args := m.Called(report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExcelService) RenderSnapshot(
	snapshot *service.RegressionSnapshot,
) ([]byte, error) {
	args := m.Called(snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
