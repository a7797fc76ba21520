package store

import (
	"fmt"
	"strings"
	"time"
)

type GeneralStatus string

const (
	StatusReady      GeneralStatus = "READY"
	StatusInProgress GeneralStatus = "IN_PROGRESS"
	StatusBlocked    GeneralStatus = "BLOCKED"
	StatusObsolete   GeneralStatus = "OBSOLETE"
)

func ParseGeneralStatus(s string) (GeneralStatus, error) {
	gs := GeneralStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch gs {
	case StatusReady, StatusInProgress, StatusBlocked, StatusObsolete:
		return gs, nil
	}
	return "", fmt.Errorf("invalid general status %q", s)
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

type RunResult string

const (
	RunPassed RunResult = "PASSED"
	RunFailed RunResult = "FAILED"
	RunNotRun RunResult = "NOT_RUN"
)

func ParseRunResult(s string) (RunResult, error) {
	r := RunResult(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RunPassed, RunFailed, RunNotRun:
		return r, nil
	}
	return "", fmt.Errorf("invalid run result %q", s)
}

type TestCase struct {
	TestID           string        `json:"test_id"`
	Category         string        `json:"category"`
	ShortTitle       string        `json:"short_title"`
	Scenario         string        `json:"scenario"`
	GeneralStatus    GeneralStatus `json:"general_status"`
	IssueLink        *string       `json:"issue_link"`
	Notes            *string       `json:"notes"`
	Priority         *Priority     `json:"priority"`
	ReadyDate        string        `json:"ready_date"`
	RegressionResult *RunResult    `json:"regression_result"`
	RunStatus1       *RunResult    `db:"run_status_1" json:"run_status_1"`
	RunStatus2       *RunResult    `db:"run_status_2" json:"run_status_2"`
	RunStatus3       *RunResult    `db:"run_status_3" json:"run_status_3"`
	RunStatus4       *RunResult    `db:"run_status_4" json:"run_status_4"`
	RunStatus5       *RunResult    `db:"run_status_5" json:"run_status_5"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// RunStatuses returns the per-slot run results in slot order.
func (tc *TestCase) RunStatuses() []*RunResult {
	return []*RunResult{
		tc.RunStatus1,
		tc.RunStatus2,
		tc.RunStatus3,
		tc.RunStatus4,
		tc.RunStatus5,
	}
}
