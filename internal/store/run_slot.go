package store

// RunSlot is one of the fixed run columns. The date binding is shared across
// all test cases; per-test values live in the test_cases run status columns.
type RunSlot struct {
	SlotIndex int64   `json:"slot_index"`
	RunDate   *string `json:"run_date"`
}
