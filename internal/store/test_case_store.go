package store

import (
	"context"
)

// UpsertItem is a single pre-validated batch entry. Nil optional fields mean
// "not provided": on update they leave the stored value alone, on create the
// required ones have already been checked by the caller. Create marks whether
// the identifier was unseen when the batch was validated.
type UpsertItem struct {
	TestID        string
	Create        bool
	Category      *string
	ShortTitle    *string
	Scenario      *string
	GeneralStatus *GeneralStatus
	IssueLink     *string
	Notes         *string
	Priority      *Priority
	ReadyDate     *string
	RunResult     *RunResult
	ClearRun      bool
}

func (item *UpsertItem) touchesRun() bool {
	return item.RunResult != nil || item.ClearRun
}

type TestCaseStore interface {
	ApplyBatch(ctx context.Context, items []UpsertItem, runDate *string) error
	ReadTestCaseByID(ctx context.Context, testID string) (*TestCase, error)
	ListTestCases(ctx context.Context) ([]TestCase, error)
	ListTestIDs(ctx context.Context) ([]string, error)
	DeleteTestCase(ctx context.Context, testID string) error
}
