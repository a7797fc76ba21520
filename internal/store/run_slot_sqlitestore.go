package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgysavva/scany/v2/sqlscan"
)

type RunSlotSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewRunSlotSQLiteStore(rdb, rwdb *sql.DB) *RunSlotSQLiteStore {
	return &RunSlotSQLiteStore{rdb, rwdb}
}

func (store *RunSlotSQLiteStore) ListSlots(ctx context.Context) ([]RunSlot, error) {
	query := "select * from run_slots order by slot_index"
	slots := make([]RunSlot, 0)
	err := sqlscan.Select(ctx, store.rdb, &slots, query)
	return slots, err
}

// resolveSlot returns the slot bound to runDate, binding the first free slot
// when the date is new. It runs inside the caller's transaction so that a
// batch and its slot binding commit or roll back together.
func (store *RunSlotSQLiteStore) resolveSlot(
	ctx context.Context,
	tx *sql.Tx,
	runDate string,
) (int64, error) {
	var slotIndex int64
	query := "select slot_index from run_slots where run_date = $1"
	err := sqlscan.Get(ctx, tx, &slotIndex, query, runDate)
	if err == nil {
		return slotIndex, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	query = `select slot_index from run_slots
	where run_date is null
	order by slot_index limit 1`
	err = sqlscan.Get(ctx, tx, &slotIndex, query)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoFreeRunSlot
	}
	if err != nil {
		return 0, err
	}

	bindQuery := "update run_slots set run_date = $1 where slot_index = $2"
	if _, err := tx.ExecContext(ctx, bindQuery, runDate, slotIndex); err != nil {
		return 0, err
	}
	return slotIndex, nil
}

func (store *RunSlotSQLiteStore) ResetRuns(ctx context.Context) error {
	tx, err := store.rwdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "update run_slots set run_date = null"); err != nil {
		return err
	}

	clearQuery := `update test_cases
	set run_status_1 = null,
		run_status_2 = null,
		run_status_3 = null,
		run_status_4 = null,
		run_status_5 = null`
	if _, err := tx.ExecContext(ctx, clearQuery); err != nil {
		return err
	}

	return tx.Commit()
}
