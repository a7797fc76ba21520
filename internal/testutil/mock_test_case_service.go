package testutil

import (
	"context"

	"github.com/haatos/casetrack/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockTestCaseService struct {
	mock.Mock
}

func (m *MockTestCaseService) UpsertBatch(
	ctx context.Context,
	runDate string,
	params []service.UpsertParams,
) error {
	args := m.Called(ctx, runDate, params)
	return args.Error(0)
}

func (m *MockTestCaseService) ImportBatch(
	ctx context.Context,
	runDate string,
	params []service.UpsertParams,
) error {
	args := m.Called(ctx, runDate, params)
	return args.Error(0)
}

func (m *MockTestCaseService) GetReport(
	ctx context.Context,
) (*service.TestCaseReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TestCaseReport), args.Error(1)
}

func (m *MockTestCaseService) DeleteTestCase(ctx context.Context, testID string) error {
	args := m.Called(ctx, testID)
	return args.Error(0)
}

func (m *MockTestCaseService) ResetRuns(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
