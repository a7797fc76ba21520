package testutil

import (
	"context"

	"github.com/haatos/casetrack/internal/service"
	"github.com/haatos/casetrack/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockRegressionService struct {
	mock.Mock
}

func (m *MockRegressionService) Start(
	ctx context.Context,
	releaseName string,
) (*store.Regression, error) {
	args := m.Called(ctx, releaseName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Regression), args.Error(1)
}

func (m *MockRegressionService) Stop(
	ctx context.Context,
	results map[string]string,
) (*store.Regression, error) {
	args := m.Called(ctx, results)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Regression), args.Error(1)
}

func (m *MockRegressionService) Cancel(ctx context.Context) (*service.RegressionState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegressionState), args.Error(1)
}

func (m *MockRegressionService) GetState(ctx context.Context) (*service.RegressionState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegressionState), args.Error(1)
}

func (m *MockRegressionService) ListRegressions(
	ctx context.Context,
) ([]store.Regression, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Regression), args.Error(1)
}

func (m *MockRegressionService) GetRegression(
	ctx context.Context,
	id string,
) (*store.Regression, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Regression), args.Error(1)
}

func (m *MockRegressionService) GetSnapshot(
	ctx context.Context,
	id string,
) (*service.RegressionSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegressionSnapshot), args.Error(1)
}
