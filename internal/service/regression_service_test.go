package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/haatos/casetrack/internal"
	"github.com/haatos/casetrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRegressionStore struct {
	mock.Mock
}

func (m *MockRegressionStore) CreateRegression(
	ctx context.Context,
	id, date, releaseName string,
) (*store.Regression, error) {
	args := m.Called(ctx, id, date, releaseName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Regression), args.Error(1)
}

func (m *MockRegressionStore) ReadRegressionByID(
	ctx context.Context,
	id string,
) (*store.Regression, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Regression), args.Error(1)
}

func (m *MockRegressionStore) ReadRegressionByDate(
	ctx context.Context,
	date string,
) (*store.Regression, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Regression), args.Error(1)
}

func (m *MockRegressionStore) UpdateRegressionRunning(
	ctx context.Context,
	id, releaseName string,
) error {
	args := m.Called(ctx, id, releaseName)
	return args.Error(0)
}

func (m *MockRegressionStore) CompleteRegression(
	ctx context.Context,
	id, payload string,
	results map[string]store.RunResult,
	completedOn *time.Time,
) error {
	args := m.Called(ctx, id, payload, results, completedOn)
	return args.Error(0)
}

func (m *MockRegressionStore) DeleteRegression(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRegressionStore) ListRegressions(ctx context.Context) ([]store.Regression, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Regression), args.Error(1)
}

func (m *MockRegressionStore) DeleteStaleRunning(
	ctx context.Context,
	beforeDate string,
) (int64, error) {
	args := m.Called(ctx, beforeDate)
	return args.Get(0).(int64), args.Error(1)
}

func runningRegression(id string) *store.Regression {
	return &store.Regression{
		RegressionID:   id,
		RegressionDate: time.Now().UTC().Format(internal.DBDateLayout),
		ReleaseName:    "v2.4.0",
		Status:         store.RegressionRunning,
	}
}

func TestRegressionService_Start(t *testing.T) {
	t.Run("failure - release name required", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		_, err := svc.Start(context.Background(), "  ")

		// assert
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, "releaseName", ve.Field)
	})

	t.Run("success - creates a new window for the day", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(nil, sql.ErrNoRows)
		regStore.On(
			"CreateRegression", mock.Anything, mock.Anything, mock.Anything, "v2.4.0",
		).Return(runningRegression("reg-1"), nil)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		r, err := svc.Start(context.Background(), "v2.4.0")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionRunning, r.Status)
		regStore.AssertExpectations(t)
	})

	t.Run("success - re-opens an existing window", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		existing := runningRegression("reg-1")
		existing.Status = store.RegressionCompleted
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(existing, nil)
		regStore.On("UpdateRegressionRunning", mock.Anything, "reg-1", "v2.4.1").
			Return(nil)
		regStore.On("ReadRegressionByID", mock.Anything, "reg-1").
			Return(runningRegression("reg-1"), nil)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		r, err := svc.Start(context.Background(), "v2.4.1")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionRunning, r.Status)
		regStore.AssertNotCalled(
			t, "CreateRegression",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRegressionService_Stop(t *testing.T) {
	t.Run("failure - nothing running today", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(nil, sql.ErrNoRows)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		_, err := svc.Stop(context.Background(), map[string]string{})

		// assert
		var pe *PreconditionError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("failure - invalid outcome names the test case", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(runningRegression("reg-1"), nil)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		_, err := svc.Stop(context.Background(), map[string]string{"45-1": "MAYBE"})

		// assert
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, "45-1", ve.Field)
	})

	t.Run("failure - missing outcomes keep the window running", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(runningRegression("reg-1"), nil)
		tcStore := new(MockTestCaseStore)
		tcStore.On("ListTestCases", mock.Anything).Return([]store.TestCase{
			{TestID: "45-1"}, {TestID: "46"},
		}, nil)
		svc := NewRegressionService(regStore, tcStore)

		// act
		_, err := svc.Stop(context.Background(), map[string]string{"45-1": "PASSED"})

		// assert
		var pe *PreconditionError
		assert.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Error(), "46")
		regStore.AssertNotCalled(
			t, "CompleteRegression",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success - snapshot frozen with every outcome", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		running := runningRegression("reg-1")
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(running, nil)
		regStore.On(
			"CompleteRegression",
			mock.Anything, "reg-1", mock.Anything, mock.Anything, mock.Anything,
		).Return(nil)
		completed := runningRegression("reg-1")
		completed.Status = store.RegressionCompleted
		regStore.On("ReadRegressionByID", mock.Anything, "reg-1").
			Return(completed, nil)
		tcStore := new(MockTestCaseStore)
		tcStore.On("ListTestCases", mock.Anything).Return([]store.TestCase{
			{TestID: "45-1", Category: "checkout", ReadyDate: "2025-03-01"},
			{TestID: "46", Category: "checkout", ReadyDate: "2025-03-01"},
		}, nil)
		svc := NewRegressionService(regStore, tcStore)

		// act
		r, err := svc.Stop(context.Background(), map[string]string{
			"45-1": "passed",
			"46":   "FAILED",
		})

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionCompleted, r.Status)

		var payload string
		for _, call := range regStore.Calls {
			if call.Method == "CompleteRegression" {
				payload = call.Arguments.String(2)
			}
		}
		snapshot := RegressionSnapshot{}
		assert.NoError(t, json.Unmarshal([]byte(payload), &snapshot))
		assert.Equal(t, running.ReleaseName, snapshot.ReleaseName)
		assert.Len(t, snapshot.Entries, 2)
		assert.Equal(t, "45-1", snapshot.Entries[0].TestID)
		assert.Equal(t, store.RunPassed, snapshot.Entries[0].Outcome)
		assert.Equal(t, store.RunFailed, snapshot.Entries[1].Outcome)
	})
}

func TestRegressionService_Cancel(t *testing.T) {
	t.Run("success - no window today stays idle", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(nil, sql.ErrNoRows)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		state, err := svc.Cancel(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionIdle, state.Status)
	})

	t.Run("success - window without snapshot is discarded", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(runningRegression("reg-1"), nil)
		regStore.On("DeleteRegression", mock.Anything, "reg-1").Return(nil)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		state, err := svc.Cancel(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionIdle, state.Status)
		regStore.AssertExpectations(t)
	})

	t.Run("success - frozen snapshot survives cancel", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		payload := `{"entries":[]}`
		r := runningRegression("reg-1")
		r.Payload = &payload
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(r, nil)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		state, err := svc.Cancel(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionCompleted, state.Status)
		regStore.AssertNotCalled(t, "DeleteRegression", mock.Anything, mock.Anything)
	})
}

func TestRegressionService_GetState(t *testing.T) {
	t.Run("success - running state carries live outcomes", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByDate", mock.Anything, mock.Anything).
			Return(runningRegression("reg-1"), nil)
		passed := store.RunPassed
		tcStore := new(MockTestCaseStore)
		tcStore.On("ListTestCases", mock.Anything).Return([]store.TestCase{
			{TestID: "45-1", RegressionResult: &passed},
			{TestID: "46"},
		}, nil)
		svc := NewRegressionService(regStore, tcStore)

		// act
		state, err := svc.GetState(context.Background())

		// assert
		assert.NoError(t, err)
		assert.Equal(t, store.RegressionRunning, state.Status)
		assert.Equal(t, map[string]store.RunResult{"45-1": store.RunPassed}, state.Results)
	})
}

func TestRegressionService_GetSnapshot(t *testing.T) {
	t.Run("failure - no snapshot frozen", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByID", mock.Anything, "reg-1").
			Return(runningRegression("reg-1"), nil)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		_, err := svc.GetSnapshot(context.Background(), "reg-1")

		// assert
		var nfe *NotFoundError
		assert.ErrorAs(t, err, &nfe)
	})

	t.Run("failure - unknown regression", func(t *testing.T) {
		// arrange
		regStore := new(MockRegressionStore)
		regStore.On("ReadRegressionByID", mock.Anything, "nope").
			Return(nil, sql.ErrNoRows)
		svc := NewRegressionService(regStore, new(MockTestCaseStore))

		// act
		_, err := svc.GetSnapshot(context.Background(), "nope")

		// assert
		var nfe *NotFoundError
		assert.ErrorAs(t, err, &nfe)
	})
}
