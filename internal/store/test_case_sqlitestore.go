package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/haatos/casetrack/internal"
	"github.com/haatos/casetrack/internal/util"
)

type TestCaseSQLiteStore struct {
	rdb, rwdb *sql.DB

	slots *RunSlotSQLiteStore
}

func NewTestCaseSQLiteStore(rdb, rwdb *sql.DB, slots *RunSlotSQLiteStore) *TestCaseSQLiteStore {
	return &TestCaseSQLiteStore{rdb: rdb, rwdb: rwdb, slots: slots}
}

// ApplyBatch writes a pre-validated batch in a single transaction. When the
// batch carries run outcomes, the target slot is resolved (and bound if new)
// inside the same transaction, so no partially applied batch can leak a slot
// binding. Any error rolls back every item.
func (store *TestCaseSQLiteStore) ApplyBatch(
	ctx context.Context,
	items []UpsertItem,
	runDate *string,
) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := store.rwdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	slotColumn := ""
	if runDate != nil && slices.ContainsFunc(items, func(item UpsertItem) bool {
		return item.touchesRun()
	}) {
		slotIndex, err := store.slots.resolveSlot(ctx, tx, *runDate)
		if err != nil {
			return err
		}
		slotColumn = fmt.Sprintf("run_status_%d", slotIndex)
	}

	now := time.Now().UTC().Format(internal.DBTimestampLayout)
	for _, item := range items {
		if item.Create {
			err = store.createTestCase(ctx, tx, item, now)
		} else {
			err = store.updateTestCase(ctx, tx, item, now)
		}
		if err != nil {
			return err
		}

		if slotColumn != "" && item.touchesRun() {
			if err := store.writeRunStatus(ctx, tx, slotColumn, item); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (store *TestCaseSQLiteStore) createTestCase(
	ctx context.Context,
	tx *sql.Tx,
	item UpsertItem,
	now string,
) error {
	query := `insert into test_cases (
		test_id,
		category,
		short_title,
		scenario,
		general_status,
		issue_link,
		notes,
		priority,
		ready_date,
		updated_at
	)
	values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := tx.ExecContext(
		ctx, query,
		item.TestID,
		item.Category,
		item.ShortTitle,
		item.Scenario,
		item.GeneralStatus,
		item.IssueLink,
		item.Notes,
		item.Priority,
		item.ReadyDate,
		now,
	)
	return err
}

func (store *TestCaseSQLiteStore) updateTestCase(
	ctx context.Context,
	tx *sql.Tx,
	item UpsertItem,
	now string,
) error {
	// ready_date is deliberately absent: it is write-once at creation.
	query := `update test_cases
	set category = coalesce($1, category),
		short_title = coalesce($2, short_title),
		scenario = coalesce($3, scenario),
		general_status = coalesce($4, general_status),
		issue_link = coalesce($5, issue_link),
		notes = coalesce($6, notes),
		priority = coalesce($7, priority),
		updated_at = $8
	where test_id = $9`
	res, err := tx.ExecContext(
		ctx, query,
		item.Category,
		item.ShortTitle,
		item.Scenario,
		item.GeneralStatus,
		item.IssueLink,
		item.Notes,
		item.Priority,
		now,
		item.TestID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (store *TestCaseSQLiteStore) writeRunStatus(
	ctx context.Context,
	tx *sql.Tx,
	slotColumn string,
	item UpsertItem,
) error {
	// slotColumn comes from resolveSlot, never from input.
	query := fmt.Sprintf(
		"update test_cases set %s = $1, regression_result = $1 where test_id = $2",
		slotColumn,
	)
	_, err := tx.ExecContext(ctx, query, item.RunResult, item.TestID)
	return err
}

func (store *TestCaseSQLiteStore) ReadTestCaseByID(
	ctx context.Context,
	testID string,
) (*TestCase, error) {
	tc := &TestCase{}
	query := "select * from test_cases where test_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, tc, query, testID); err != nil {
		return nil, err
	}
	return tc, nil
}

// ListTestCases returns every test case in canonical report order.
func (store *TestCaseSQLiteStore) ListTestCases(ctx context.Context) ([]TestCase, error) {
	query := "select * from test_cases"
	tcs := make([]TestCase, 0)
	if err := sqlscan.Select(ctx, store.rdb, &tcs, query); err != nil {
		return nil, err
	}
	slices.SortFunc(tcs, func(a, b TestCase) int {
		return util.CompareTestIDs(a.TestID, b.TestID)
	})
	return tcs, nil
}

func (store *TestCaseSQLiteStore) ListTestIDs(ctx context.Context) ([]string, error) {
	query := "select test_id from test_cases"
	ids := make([]string, 0)
	err := sqlscan.Select(ctx, store.rdb, &ids, query)
	return ids, err
}

func (store *TestCaseSQLiteStore) DeleteTestCase(ctx context.Context, testID string) error {
	query := "delete from test_cases where test_id = $1"
	res, err := store.rwdb.ExecContext(ctx, query, testID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
