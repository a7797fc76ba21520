package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/haatos/casetrack/internal"
	"github.com/haatos/casetrack/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UpsertParams is one raw batch entry as submitted by a client or produced by
// result ingestion. Blank strings mean "not provided".
type UpsertParams struct {
	TestID        string `json:"test_id"`
	Category      string `json:"category"`
	ShortTitle    string `json:"short_title"`
	Scenario      string `json:"scenario"`
	GeneralStatus string `json:"general_status"`
	IssueLink     string `json:"issue_link"`
	Notes         string `json:"notes"`
	Priority      string `json:"priority"`
	ReadyDate     string `json:"ready_date"`
	RunResult     string `json:"run_result"`
	ClearRun      bool   `json:"clear_run"`
}

type TestCaseReport struct {
	TestCases []store.TestCase       `json:"test_cases"`
	RunDates  []*string              `json:"run_dates"`
	Columns   *internal.ColumnConfig `json:"columns"`
}

type TestCaseServicer interface {
	UpsertBatch(ctx context.Context, runDate string, params []UpsertParams) error
	ImportBatch(ctx context.Context, runDate string, params []UpsertParams) error
	GetReport(ctx context.Context) (*TestCaseReport, error)
	DeleteTestCase(ctx context.Context, testID string) error
	ResetRuns(ctx context.Context) error
}

type TestCaseService struct {
	testCaseStore store.TestCaseStore
	slotStore     store.RunSlotStore
}

func NewTestCaseService(
	testCaseStore store.TestCaseStore,
	slotStore store.RunSlotStore,
) *TestCaseService {
	return &TestCaseService{testCaseStore: testCaseStore, slotStore: slotStore}
}

// UpsertBatch validates and normalizes every item before a single write is
// issued, then applies the whole batch in one store transaction. A failing
// item therefore never leaves earlier items committed.
func (s *TestCaseService) UpsertBatch(
	ctx context.Context,
	runDate string,
	params []UpsertParams,
) error {
	return s.applyBatch(ctx, runDate, params, false)
}

// ImportBatch applies a batch produced by result ingestion. The result
// documents carry no general status, so newly created test cases default to
// READY; existing test cases keep their curated status.
func (s *TestCaseService) ImportBatch(
	ctx context.Context,
	runDate string,
	params []UpsertParams,
) error {
	return s.applyBatch(ctx, runDate, params, true)
}

func (s *TestCaseService) applyBatch(
	ctx context.Context,
	runDate string,
	params []UpsertParams,
	defaultCreateStatus bool,
) error {
	if len(params) == 0 {
		return nil
	}

	existingIDs, err := s.testCaseStore.ListTestIDs(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	items := make([]store.UpsertItem, 0, len(params))
	createdInBatch := make(map[string]struct{})
	touchesRun := false
	for _, p := range params {
		item, err := normalizeItem(p)
		if err != nil {
			return err
		}

		_, exists := existing[item.TestID]
		if !exists {
			if _, dup := createdInBatch[item.TestID]; dup {
				return NewConflictError(
					"test case %s appears more than once in the batch", item.TestID)
			}
			if defaultCreateStatus && item.GeneralStatus == nil {
				status := store.StatusReady
				item.GeneralStatus = &status
			}
			if err := validateCreate(item); err != nil {
				return err
			}
			if item.ReadyDate == nil {
				d := time.Now().UTC().Format(internal.DBDateLayout)
				item.ReadyDate = &d
			}
			item.Create = true
			createdInBatch[item.TestID] = struct{}{}
		}
		if item.RunResult != nil || item.ClearRun {
			touchesRun = true
		}
		items = append(items, item)
	}

	var runDatePtr *string
	if touchesRun {
		normalized, err := normalizeRunDate(runDate)
		if err != nil {
			return err
		}
		runDatePtr = &normalized
	}

	if err := s.testCaseStore.ApplyBatch(ctx, items, runDatePtr); err != nil {
		return mapBatchError(err)
	}
	return nil
}

func normalizeItem(p UpsertParams) (store.UpsertItem, error) {
	item := store.UpsertItem{TestID: strings.TrimSpace(p.TestID)}
	if item.TestID == "" {
		return item, NewValidationError("testId", "testId is required")
	}

	item.Category = trimmedOrNil(p.Category)
	item.ShortTitle = trimmedOrNil(p.ShortTitle)
	item.Scenario = trimmedOrNil(p.Scenario)
	item.IssueLink = trimmedOrNil(p.IssueLink)
	item.Notes = trimmedOrNil(p.Notes)
	item.ClearRun = p.ClearRun

	if strings.TrimSpace(p.GeneralStatus) != "" {
		gs, err := store.ParseGeneralStatus(p.GeneralStatus)
		if err != nil {
			return item, NewValidationError("generalStatus", "%s", err.Error())
		}
		item.GeneralStatus = &gs
	}
	if strings.TrimSpace(p.Priority) != "" {
		priority, err := store.ParsePriority(p.Priority)
		if err != nil {
			return item, NewValidationError("priority", "%s", err.Error())
		}
		item.Priority = &priority
	}
	if strings.TrimSpace(p.ReadyDate) != "" {
		readyDate := strings.TrimSpace(p.ReadyDate)
		if _, err := time.Parse(internal.DBDateLayout, readyDate); err != nil {
			return item, NewValidationError("readyDate", "invalid ready date %q", readyDate)
		}
		item.ReadyDate = &readyDate
	}
	if strings.TrimSpace(p.RunResult) != "" {
		result, err := store.ParseRunResult(p.RunResult)
		if err != nil {
			return item, NewValidationError("runStatus", "%s", err.Error())
		}
		item.RunResult = &result
	}

	return item, nil
}

func validateCreate(item store.UpsertItem) error {
	switch {
	case item.Category == nil:
		return NewValidationError(
			"category", "category is required to create test case %s", item.TestID)
	case item.ShortTitle == nil:
		return NewValidationError(
			"shortTitle", "shortTitle is required to create test case %s", item.TestID)
	case item.Scenario == nil:
		return NewValidationError(
			"scenario", "scenario is required to create test case %s", item.TestID)
	case item.GeneralStatus == nil:
		return NewValidationError(
			"generalStatus", "generalStatus is required to create test case %s", item.TestID)
	}
	return nil
}

func normalizeRunDate(runDate string) (string, error) {
	runDate = strings.TrimSpace(runDate)
	if runDate == "" {
		return time.Now().UTC().Format(internal.DBDateLayout), nil
	}
	if _, err := time.Parse(internal.DBDateLayout, runDate); err != nil {
		return "", NewValidationError("runDate", "invalid run date %q", runDate)
	}
	return runDate, nil
}

func mapBatchError(err error) error {
	if errors.Is(err, store.ErrNoFreeRunSlot) {
		return NewCapacityError(
			"all %d run columns are bound to other dates; reset runs first",
			internal.RunSlotCount,
		)
	}
	if isUniqueConstraintError(err) {
		return NewConflictError("a test case in the batch already exists")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NewConflictError("a test case in the batch was removed concurrently")
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *TestCaseService) GetReport(ctx context.Context) (*TestCaseReport, error) {
	tcs, err := s.testCaseStore.ListTestCases(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slotStore.ListSlots(ctx)
	if err != nil {
		return nil, err
	}

	runDates := make([]*string, len(slots))
	for i, slot := range slots {
		runDates[i] = slot.RunDate
	}

	return &TestCaseReport{
		TestCases: tcs,
		RunDates:  runDates,
		Columns:   internal.Columns,
	}, nil
}

func (s *TestCaseService) DeleteTestCase(ctx context.Context, testID string) error {
	testID = strings.TrimSpace(testID)
	if testID == "" {
		return NewValidationError("testId", "testId is required")
	}
	if err := s.testCaseStore.DeleteTestCase(ctx, testID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFoundError("test case %s was not found", testID)
		}
		return err
	}
	return nil
}

func (s *TestCaseService) ResetRuns(ctx context.Context) error {
	return s.slotStore.ResetRuns(ctx)
}
