package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/haatos/casetrack/internal"
	"github.com/haatos/casetrack/internal/store"
)

type RegressionState struct {
	Status         store.RegressionStatus     `json:"status"`
	RegressionDate string                     `json:"regression_date"`
	ReleaseName    string                     `json:"release_name,omitempty"`
	Results        map[string]store.RunResult `json:"results,omitempty"`
}

type SnapshotEntry struct {
	TestID        string              `json:"test_id"`
	Category      string              `json:"category"`
	ShortTitle    string              `json:"short_title"`
	Scenario      string              `json:"scenario"`
	GeneralStatus store.GeneralStatus `json:"general_status"`
	Priority      *store.Priority     `json:"priority,omitempty"`
	IssueLink     *string             `json:"issue_link,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
	ReadyDate     string              `json:"ready_date"`
	Outcome       store.RunResult     `json:"outcome"`
}

// RegressionSnapshot is the payload frozen when a regression completes. It is
// written exactly once and never mutated afterwards.
type RegressionSnapshot struct {
	RegressionDate string          `json:"regression_date"`
	ReleaseName    string          `json:"release_name"`
	CompletedOn    string          `json:"completed_on"`
	Entries        []SnapshotEntry `json:"entries"`
}

type RegressionServicer interface {
	Start(ctx context.Context, releaseName string) (*store.Regression, error)
	Stop(ctx context.Context, results map[string]string) (*store.Regression, error)
	Cancel(ctx context.Context) (*RegressionState, error)
	GetState(ctx context.Context) (*RegressionState, error)
	ListRegressions(ctx context.Context) ([]store.Regression, error)
	GetRegression(ctx context.Context, id string) (*store.Regression, error)
	GetSnapshot(ctx context.Context, id string) (*RegressionSnapshot, error)
}

type RegressionService struct {
	regressionStore store.RegressionStore
	testCaseStore   store.TestCaseStore
}

func NewRegressionService(
	regressionStore store.RegressionStore,
	testCaseStore store.TestCaseStore,
) *RegressionService {
	return &RegressionService{
		regressionStore: regressionStore,
		testCaseStore:   testCaseStore,
	}
}

func today() string {
	return time.Now().UTC().Format(internal.DBDateLayout)
}

// Start opens today's regression window, or forces an existing record back to
// RUNNING. Live regression results are cleared so the window starts empty. A
// previously frozen payload is left in place until a later Stop produces a
// new one.
func (s *RegressionService) Start(
	ctx context.Context,
	releaseName string,
) (*store.Regression, error) {
	releaseName = strings.TrimSpace(releaseName)
	if releaseName == "" {
		return nil, NewValidationError("releaseName", "releaseName is required")
	}

	date := today()
	r, err := s.regressionStore.ReadRegressionByDate(ctx, date)
	if errors.Is(err, sql.ErrNoRows) {
		created, createErr := s.regressionStore.CreateRegression(
			ctx, uuid.NewString(), date, releaseName)
		if createErr == nil {
			return created, nil
		}
		if !isUniqueConstraintError(createErr) {
			return nil, createErr
		}
		// lost the race against a concurrent Start, fall through to re-open
		r, err = s.regressionStore.ReadRegressionByDate(ctx, date)
	}
	if err != nil {
		return nil, err
	}

	if err := s.regressionStore.UpdateRegressionRunning(ctx, r.RegressionID, releaseName); err != nil {
		return nil, err
	}
	return s.regressionStore.ReadRegressionByID(ctx, r.RegressionID)
}

// Stop validates the submitted outcomes, requires one for every stored test
// case and freezes the snapshot. On any failure the record stays RUNNING with
// no payload written.
func (s *RegressionService) Stop(
	ctx context.Context,
	results map[string]string,
) (*store.Regression, error) {
	date := today()
	r, err := s.regressionStore.ReadRegressionByDate(ctx, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewPreconditionError("no regression is running for %s", date)
	}
	if err != nil {
		return nil, err
	}
	if r.Status != store.RegressionRunning {
		return nil, NewPreconditionError("regression for %s is not running", date)
	}

	outcomes := make(map[string]store.RunResult, len(results))
	for testID, raw := range results {
		outcome, parseErr := store.ParseRunResult(raw)
		if parseErr != nil {
			return nil, NewValidationError(
				testID, "invalid result %q for test case %s", raw, testID)
		}
		outcomes[strings.TrimSpace(testID)] = outcome
	}

	tcs, err := s.testCaseStore.ListTestCases(ctx)
	if err != nil {
		return nil, err
	}
	missing := make([]string, 0)
	for _, tc := range tcs {
		if _, ok := outcomes[tc.TestID]; !ok {
			missing = append(missing, tc.TestID)
		}
	}
	if len(missing) > 0 {
		return nil, NewPreconditionError(
			"results are required for all test cases; missing: %s",
			strings.Join(missing, ", "),
		)
	}

	now := time.Now().UTC()
	snapshot := RegressionSnapshot{
		RegressionDate: r.RegressionDate,
		ReleaseName:    r.ReleaseName,
		CompletedOn:    now.Format(internal.DBTimestampLayout),
		Entries:        make([]SnapshotEntry, 0, len(tcs)),
	}
	applied := make(map[string]store.RunResult, len(tcs))
	for _, tc := range tcs {
		outcome := outcomes[tc.TestID]
		applied[tc.TestID] = outcome
		snapshot.Entries = append(snapshot.Entries, SnapshotEntry{
			TestID:        tc.TestID,
			Category:      tc.Category,
			ShortTitle:    tc.ShortTitle,
			Scenario:      tc.Scenario,
			GeneralStatus: tc.GeneralStatus,
			Priority:      tc.Priority,
			IssueLink:     tc.IssueLink,
			Notes:         tc.Notes,
			ReadyDate:     tc.ReadyDate,
			Outcome:       outcome,
		})
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	err = s.regressionStore.CompleteRegression(
		ctx, r.RegressionID, string(payload), applied, &now)
	if err != nil {
		return nil, err
	}
	return s.regressionStore.ReadRegressionByID(ctx, r.RegressionID)
}

// Cancel discards today's window when no snapshot was ever frozen. A record
// that already has a payload is left COMPLETED instead of deleted.
func (s *RegressionService) Cancel(ctx context.Context) (*RegressionState, error) {
	date := today()
	r, err := s.regressionStore.ReadRegressionByDate(ctx, date)
	if errors.Is(err, sql.ErrNoRows) {
		return &RegressionState{Status: store.RegressionIdle, RegressionDate: date}, nil
	}
	if err != nil {
		return nil, err
	}

	if r.Payload == nil {
		if err := s.regressionStore.DeleteRegression(ctx, r.RegressionID); err != nil {
			return nil, err
		}
		return &RegressionState{Status: store.RegressionIdle, RegressionDate: date}, nil
	}

	return &RegressionState{
		Status:         store.RegressionCompleted,
		RegressionDate: date,
		ReleaseName:    r.ReleaseName,
	}, nil
}

// GetState reports today's window. While RUNNING the collected outcomes are
// read back from the live test case set, so they always reflect current data.
func (s *RegressionService) GetState(ctx context.Context) (*RegressionState, error) {
	date := today()
	r, err := s.regressionStore.ReadRegressionByDate(ctx, date)
	if errors.Is(err, sql.ErrNoRows) {
		return &RegressionState{Status: store.RegressionIdle, RegressionDate: date}, nil
	}
	if err != nil {
		return nil, err
	}

	state := &RegressionState{
		Status:         r.Status,
		RegressionDate: r.RegressionDate,
		ReleaseName:    r.ReleaseName,
	}
	if r.Status == store.RegressionRunning {
		tcs, err := s.testCaseStore.ListTestCases(ctx)
		if err != nil {
			return nil, err
		}
		state.Results = make(map[string]store.RunResult)
		for _, tc := range tcs {
			if tc.RegressionResult != nil {
				state.Results[tc.TestID] = *tc.RegressionResult
			}
		}
	}
	return state, nil
}

func (s *RegressionService) ListRegressions(ctx context.Context) ([]store.Regression, error) {
	return s.regressionStore.ListRegressions(ctx)
}

func (s *RegressionService) GetRegression(
	ctx context.Context,
	id string,
) (*store.Regression, error) {
	r, err := s.regressionStore.ReadRegressionByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("regression %s was not found", id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RegressionService) GetSnapshot(
	ctx context.Context,
	id string,
) (*RegressionSnapshot, error) {
	r, err := s.GetRegression(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Payload == nil {
		return nil, NewNotFoundError("regression %s has no snapshot", id)
	}

	snapshot := &RegressionSnapshot{}
	if err := json.Unmarshal([]byte(*r.Payload), snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ScheduleStaleSweep removes abandoned RUNNING windows from previous days
// once a day. Completed records are never touched.
func (s *RegressionService) ScheduleStaleSweep(scheduler gocron.Scheduler) {
	if _, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 30, 0))),
		gocron.NewTask(func() {
			deleted, err := s.regressionStore.DeleteStaleRunning(
				context.Background(), today())
			if err != nil {
				log.Println("err sweeping stale regressions:", err)
				return
			}
			if deleted > 0 {
				log.Printf("swept %d stale regression window(s)\n", deleted)
			}
		}),
	); err != nil {
		log.Fatal(err)
	}
}
