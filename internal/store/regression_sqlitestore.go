package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/haatos/casetrack/internal"
)

type RegressionSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewRegressionSQLiteStore(rdb, rwdb *sql.DB) *RegressionSQLiteStore {
	return &RegressionSQLiteStore{rdb, rwdb}
}

// CreateRegression opens a new window. Every test case's live regression
// result is cleared in the same transaction so the window starts empty.
func (store *RegressionSQLiteStore) CreateRegression(
	ctx context.Context,
	id, date, releaseName string,
) (*Regression, error) {
	r := &Regression{
		RegressionID:   id,
		RegressionDate: date,
		ReleaseName:    releaseName,
		Status:         RegressionRunning,
	}

	tx, err := store.rwdb.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `insert into regressions (
		regression_id,
		regression_date,
		release_name,
		status
	)
	values ($1, $2, $3, $4)
	returning regression_id, created_on`
	err = sqlscan.Get(
		ctx, tx, r, query,
		r.RegressionID, r.RegressionDate, r.ReleaseName, r.Status,
	)
	if err != nil {
		return nil, err
	}
	if err := clearRegressionResults(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *RegressionSQLiteStore) ReadRegressionByID(
	ctx context.Context,
	id string,
) (*Regression, error) {
	r := &Regression{}
	query := "select * from regressions where regression_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, r, query, id); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *RegressionSQLiteStore) ReadRegressionByDate(
	ctx context.Context,
	date string,
) (*Regression, error) {
	r := &Regression{}
	query := "select * from regressions where regression_date = $1"
	if err := sqlscan.Get(ctx, store.rdb, r, query, date); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateRegressionRunning forces an existing record back to RUNNING without
// touching a previously stored payload. Live regression results are cleared
// in the same transaction so the reopened window starts empty.
func (store *RegressionSQLiteStore) UpdateRegressionRunning(
	ctx context.Context,
	id, releaseName string,
) error {
	tx, err := store.rwdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `update regressions
	set status = $1,
		release_name = $2,
		completed_on = null
	where regression_id = $3`
	if _, err := tx.ExecContext(ctx, query, RegressionRunning, releaseName, id); err != nil {
		return err
	}
	if err := clearRegressionResults(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearRegressionResults(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "update test_cases set regression_result = null")
	return err
}

// CompleteRegression freezes the snapshot payload, marks the record COMPLETED
// and refreshes every test case's live regression result with its submitted
// outcome, all in one transaction.
func (store *RegressionSQLiteStore) CompleteRegression(
	ctx context.Context,
	id, payload string,
	results map[string]RunResult,
	completedOn *time.Time,
) error {
	tx, err := store.rwdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `update regressions
	set status = $1,
		payload = $2,
		completed_on = $3
	where regression_id = $4`
	res, err := tx.ExecContext(
		ctx, query,
		RegressionCompleted,
		payload,
		completedOn.Format(internal.DBTimestampLayout),
		id,
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

	resultQuery := "update test_cases set regression_result = $1 where test_id = $2"
	for testID, outcome := range results {
		if _, err := tx.ExecContext(ctx, resultQuery, outcome, testID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (store *RegressionSQLiteStore) DeleteRegression(ctx context.Context, id string) error {
	query := "delete from regressions where regression_id = $1"
	res, err := store.rwdb.ExecContext(ctx, query, id)
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

func (store *RegressionSQLiteStore) ListRegressions(ctx context.Context) ([]Regression, error) {
	query := `select
		regression_id,
		regression_date,
		release_name,
		status,
		created_on,
		completed_on
	from regressions
	order by regression_date desc`
	regressions := make([]Regression, 0)
	err := sqlscan.Select(ctx, store.rdb, &regressions, query)
	return regressions, err
}

// DeleteStaleRunning removes abandoned windows: records from earlier days
// still RUNNING that never produced a payload.
func (store *RegressionSQLiteStore) DeleteStaleRunning(
	ctx context.Context,
	beforeDate string,
) (int64, error) {
	query := `delete from regressions
	where status = $1
		and payload is null
		and regression_date < $2`
	res, err := store.rwdb.ExecContext(ctx, query, RegressionRunning, beforeDate)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
